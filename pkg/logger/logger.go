// Package logger provides the process-wide structured logger. Records go
// to stderr as JSON, one object per line, so stdout stays free for anything
// the process is piped into.
package logger

import (
	"log/slog"
	"os"
)

// Logger is the logging surface injected into services and handlers.
// Args are alternating key/value pairs, slog-style.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// ParseLevel maps the LOG_LEVEL config string to a slog level.
// Unrecognized values fall back to info rather than erroring: a typo in an
// env var should not take the service down.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type jsonLogger struct {
	l *slog.Logger
}

// New creates a JSON logger filtering below the given level
func New(level string) Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	return &jsonLogger{l: slog.New(handler)}
}

// Default returns an info-level logger, used where no logger was injected
func Default() Logger {
	return New("info")
}

func (j *jsonLogger) Debug(msg string, args ...any) { j.l.Debug(msg, args...) }
func (j *jsonLogger) Info(msg string, args ...any)  { j.l.Info(msg, args...) }
func (j *jsonLogger) Warn(msg string, args ...any)  { j.l.Warn(msg, args...) }
func (j *jsonLogger) Error(msg string, args ...any) { j.l.Error(msg, args...) }

// With returns a logger that attaches the given pairs to every record
func (j *jsonLogger) With(args ...any) Logger {
	return &jsonLogger{l: j.l.With(args...)}
}
