package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Level orders log messages by severity.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelOff
)

var levelNames = map[Level]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelOff:   "OFF",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel accepts level names case-insensitively. An empty string means warn.
func ParseLevel(s string) (Level, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return LevelWarn, nil
	}
	for level, name := range levelNames {
		if strings.EqualFold(s, name) {
			return level, nil
		}
	}
	if strings.EqualFold(s, "warning") {
		return LevelWarn, nil
	}
	return LevelWarn, fmt.Errorf("unknown log level %q", s)
}

// Logger writes leveled lines through one or more stdlib *log.Logger sinks.
// A nil *Logger discards everything, so components can hold one
// unconditionally.
type Logger struct {
	sinks []sink
}

type sink struct {
	out   *log.Logger
	level Level
}

// New creates a logger writing to out (typically stderr) at the given level.
func New(out io.Writer, level Level) *Logger {
	return &Logger{sinks: []sink{{
		out:   log.New(out, "javabox: ", log.Lmsgprefix),
		level: level,
	}}}
}

// NewFile creates a logger that writes to a timestamped file inside dir. The
// returned closer should be closed when logging is no longer needed.
func NewFile(dir string, level Level) (*Logger, io.Closer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure logs directory: %w", err)
	}

	filename := time.Now().Format("20060102-150405") + ".log"
	filePath := filepath.Join(dir, filename)
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger := &Logger{sinks: []sink{{
		out:   log.New(file, "", log.LstdFlags|log.Lmicroseconds),
		level: level,
	}}}
	return logger, file, nil
}

// Join returns a logger that writes to the sinks of every non-nil logger,
// each keeping its own level.
func Join(loggers ...*Logger) *Logger {
	joined := &Logger{}
	for _, l := range loggers {
		if l != nil {
			joined.sinks = append(joined.sinks, l.sinks...)
		}
	}
	return joined
}

// Level reports the most verbose level any sink accepts.
func (l *Logger) Level() Level {
	level := LevelOff
	if l == nil {
		return level
	}
	for _, s := range l.sinks {
		if s.level < level {
			level = s.level
		}
	}
	return level
}

// Enabled reports whether messages at level would be written anywhere.
func (l *Logger) Enabled(level Level) bool {
	lowest := l.Level()
	return lowest != LevelOff && level >= lowest
}

func (l *Logger) logf(level Level, format string, v ...any) {
	if !l.Enabled(level) {
		return
	}
	msg := fmt.Sprintf(format, v...)
	for _, s := range l.sinks {
		if s.level != LevelOff && level >= s.level {
			s.out.Printf("[%s] %s", level, msg)
		}
	}
}

func (l *Logger) Tracef(format string, v ...any) { l.logf(LevelTrace, format, v...) }
func (l *Logger) Debugf(format string, v ...any) { l.logf(LevelDebug, format, v...) }
func (l *Logger) Infof(format string, v ...any)  { l.logf(LevelInfo, format, v...) }
func (l *Logger) Warnf(format string, v ...any)  { l.logf(LevelWarn, format, v...) }
func (l *Logger) Errorf(format string, v ...any) { l.logf(LevelError, format, v...) }

// Printf logs at info level.
func (l *Logger) Printf(format string, v ...any) { l.logf(LevelInfo, format, v...) }
