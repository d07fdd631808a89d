package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"javabox/internal/paths"
)

// EnvPrefix is prepended to every setting read from the environment,
// e.g. JAVABOX_LOG_LEVEL.
const EnvPrefix = "JAVABOX"

// Setting keys, shared by the config file and the environment.
const (
	KeyLogLevel        = "log_level"
	KeyLogFile         = "log_file"
	KeyMetadataMaxAge  = "metadata_max_age"
	KeyHTTPTimeout     = "http_timeout"
	KeyDownloadTimeout = "download_timeout"
	KeyVerifyChecksums = "verify_checksums"
	KeyNoProgress      = "no_progress"
)

// Settings captures the user-level configuration for every javabox identity.
type Settings struct {
	LogLevel string
	// LogFile also writes a timestamped log under ~/.javabox/logs.
	LogFile         bool
	MetadataMaxAge  time.Duration
	HTTPTimeout     time.Duration
	DownloadTimeout time.Duration
	VerifyChecksums bool
	NoProgress      bool
}

// Default returns the baseline settings.
func Default() Settings {
	return Settings{
		LogLevel:        "warn",
		MetadataMaxAge:  24 * time.Hour,
		HTTPTimeout:     30 * time.Second,
		DownloadTimeout: 10 * time.Minute,
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyLogFile, d.LogFile)
	v.SetDefault(KeyMetadataMaxAge, d.MetadataMaxAge)
	v.SetDefault(KeyHTTPTimeout, d.HTTPTimeout)
	v.SetDefault(KeyDownloadTimeout, d.DownloadTimeout)
	v.SetDefault(KeyVerifyChecksums, d.VerifyChecksums)
	v.SetDefault(KeyNoProgress, d.NoProgress)
}

// SettingsPath returns ~/.javabox/config.yaml.
func SettingsPath() (string, error) {
	dir, err := paths.GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadSettings reads the settings file at path, then applies JAVABOX_*
// environment overrides. A missing file yields the defaults.
func LoadSettings(path string) (Settings, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
			return Settings{}, fmt.Errorf("read settings: %w", err)
		}
	}

	s := Settings{
		LogLevel:        v.GetString(KeyLogLevel),
		LogFile:         v.GetBool(KeyLogFile),
		MetadataMaxAge:  v.GetDuration(KeyMetadataMaxAge),
		HTTPTimeout:     v.GetDuration(KeyHTTPTimeout),
		DownloadTimeout: v.GetDuration(KeyDownloadTimeout),
		VerifyChecksums: v.GetBool(KeyVerifyChecksums),
		NoProgress:      v.GetBool(KeyNoProgress),
	}
	s.ApplyDefaults()
	return s, nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

// ApplyDefaults replaces non-positive durations with the defaults.
func (s *Settings) ApplyDefaults() {
	d := Default()
	if s.LogLevel == "" {
		s.LogLevel = d.LogLevel
	}
	if s.MetadataMaxAge <= 0 {
		s.MetadataMaxAge = d.MetadataMaxAge
	}
	if s.HTTPTimeout <= 0 {
		s.HTTPTimeout = d.HTTPTimeout
	}
	if s.DownloadTimeout <= 0 {
		s.DownloadTimeout = d.DownloadTimeout
	}
}
