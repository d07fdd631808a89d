package launcher

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"javabox/internal/config"
	"javabox/internal/dist"
	"javabox/internal/launch"
	"javabox/internal/logx"
	"javabox/internal/paths"
)

// Version is stamped at build time with -ldflags "-X javabox/internal/launcher.Version=...".
var Version = "dev"

// Env is the process-wide state every identity starts from.
type Env struct {
	Settings config.Settings
	Logger   *logx.Logger
	Home     string
	WorkDir  string

	closers []io.Closer
}

// Setup loads settings, opens the loggers and locates the user home.
func Setup(stderr io.Writer) (*Env, error) {
	settingsPath, err := config.SettingsPath()
	if err != nil {
		return nil, err
	}
	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		return nil, err
	}

	level, levelErr := logx.ParseLevel(settings.LogLevel)
	env := &Env{Settings: settings, Logger: logx.New(stderr, level)}
	if levelErr != nil {
		env.Logger.Warnf("%v, using %s", levelErr, level)
	}

	if settings.LogFile {
		dir, err := paths.GlobalLogsDir()
		if err == nil {
			var fileLogger *logx.Logger
			var closer io.Closer
			fileLogger, closer, err = logx.NewFile(dir, logx.LevelDebug)
			if err == nil {
				env.Logger = logx.Join(env.Logger, fileLogger)
				env.closers = append(env.closers, closer)
			}
		}
		if err != nil {
			env.Logger.Warnf("file logging disabled: %v", err)
		}
	}

	if env.Home, err = os.UserHomeDir(); err != nil {
		return nil, fmt.Errorf("detect user home: %w", err)
	}
	if env.WorkDir, err = os.Getwd(); err != nil {
		return nil, fmt.Errorf("detect working directory: %w", err)
	}
	return env, nil
}

// Close releases the log file, if any.
func (e *Env) Close() error {
	var errs []error
	for _, c := range e.closers {
		errs = append(errs, c.Close())
	}
	e.closers = nil
	return errors.Join(errs...)
}

// FeedManager returns a manager tuned for small metadata downloads.
func (e *Env) FeedManager() *dist.Manager {
	return dist.NewManager(dist.Options{
		Client:    &http.Client{Timeout: e.Settings.HTTPTimeout},
		Logger:    e.Logger,
		UserAgent: "javabox/" + Version,
	})
}

// ArchiveManager returns a manager for distribution archives reporting
// through reporter.
func (e *Env) ArchiveManager(reporter dist.Reporter) *dist.Manager {
	return dist.NewManager(dist.Options{
		Client:        &http.Client{Timeout: e.Settings.DownloadTimeout},
		Logger:        e.Logger,
		Reporter:      reporter,
		UserAgent:     "javabox/" + Version,
		VerifySidecar: e.Settings.VerifyChecksums,
	})
}

// Launcher assembles a Launcher from the environment.
func (e *Env) Launcher(reporter dist.Reporter, runner launch.Runner) *Launcher {
	if runner == nil {
		runner = launch.ExecRunner{}
	}
	return &Launcher{
		Home:     e.Home,
		WorkDir:  e.WorkDir,
		Feeds:    e.FeedManager(),
		Archives: e.ArchiveManager(reporter),
		Runner:   runner,
		MaxAge:   e.Settings.MetadataMaxAge,
		Logger:   e.Logger,
	}
}
