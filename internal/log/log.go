// Package log provides a small structured-logging wrapper around log/slog,
// used throughout webauthncore for the handful of diagnostic messages the
// core is allowed to emit (never the challenge, token secret, or session
// bytes themselves).
package log

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

// LoggerKeyComponentName is the field key used to tag a logger with the
// component that created it.
const LoggerKeyComponentName = "component"

var (
	defaultLogger *Logger
	once          sync.Once
)

// Logger wraps an *slog.Logger with the With(Field...) call shape used
// across the codebase.
type Logger struct {
	inner *slog.Logger
}

// Field is a single structured logging attribute.
type Field = slog.Attr

// String creates a string-valued field.
func String(key, value string) Field {
	return slog.String(key, value)
}

// Bool creates a boolean-valued field.
func Bool(key string, value bool) Field {
	return slog.Bool(key, value)
}

// Int creates an integer-valued field.
func Int(key string, value int) Field {
	return slog.Int(key, value)
}

// Error creates a field carrying an error's message.
func Error(err error) Field {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// GetLogger returns the process-wide default logger, creating it with a
// text handler on first use.
func GetLogger() *Logger {
	once.Do(func() {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
		defaultLogger = &Logger{inner: slog.New(handler)}
	})
	return defaultLogger
}

// With returns a derived logger carrying the given fields on every record.
func (l *Logger) With(fields ...Field) *Logger {
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, f)
	}
	return &Logger{inner: l.inner.With(args...)}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, fields ...Field) {
	l.log(slog.LevelDebug, msg, fields)
}

// Info logs at info level.
func (l *Logger) Info(msg string, fields ...Field) {
	l.log(slog.LevelInfo, msg, fields)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, fields ...Field) {
	l.log(slog.LevelWarn, msg, fields)
}

// Error logs at error level.
func (l *Logger) Error(msg string, fields ...Field) {
	l.log(slog.LevelError, msg, fields)
}

func (l *Logger) log(level slog.Level, msg string, fields []Field) {
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, f)
	}
	l.inner.Log(context.Background(), level, msg, args...)
}
