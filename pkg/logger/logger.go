package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"devmatch/config"
)

// Logger is a thin wrapper over slog. The zero value logs through
// slog.Default, which keeps it usable in tests and small tools.
type Logger struct {
	l *slog.Logger
}

func NewLogger(cfg *config.Config) (*Logger, error) {
	return newLogger(os.Stderr, cfg)
}

// NewLoggerTo is NewLogger writing to w.
func NewLoggerTo(w io.Writer, cfg *config.Config) (*Logger, error) {
	return newLogger(w, cfg)
}

func newLogger(w io.Writer, cfg *config.Config) (*Logger, error) {
	level := slog.LevelInfo
	if cfg != nil && cfg.LoggerMode.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LoggerMode.Level))); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.LoggerMode.Level, err)
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg != nil && cfg.LoggerMode.Prod {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return &Logger{l: slog.New(handler)}, nil
}

// FromSlog wraps an existing slog.Logger.
func FromSlog(l *slog.Logger) Logger {
	return Logger{l: l}
}

func (lg Logger) base() *slog.Logger {
	if lg.l == nil {
		return slog.Default()
	}
	return lg.l
}

func (lg Logger) Debug(msg string, args ...any) { lg.base().Debug(msg, args...) }
func (lg Logger) Info(msg string, args ...any)  { lg.base().Info(msg, args...) }
func (lg Logger) Warn(msg string, args ...any)  { lg.base().Warn(msg, args...) }
func (lg Logger) Error(msg string, args ...any) { lg.base().Error(msg, args...) }

func (lg Logger) With(args ...any) Logger {
	return Logger{l: lg.base().With(args...)}
}

// Slog exposes the underlying logger for libraries that want one.
func (lg Logger) Slog() *slog.Logger { return lg.base() }
