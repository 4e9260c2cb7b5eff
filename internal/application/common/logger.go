package common

import (
	"context"
	"log/slog"
)

// SessionLogger provides session-scoped logging for handlers. The daemon
// installs one per session so every log line carries the session identity
// without handlers threading it through explicitly.
type SessionLogger interface {
	Log(level slog.Level, message string, args ...any)
}

// Context keys for passing logger through context
type contextKey int

const (
	loggerKey contextKey = iota
)

// WithLogger adds a session logger to the context
func WithLogger(ctx context.Context, logger SessionLogger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext extracts the session logger from context, or returns a
// slog-backed fallback if none is installed
func LoggerFromContext(ctx context.Context) SessionLogger {
	if logger, ok := ctx.Value(loggerKey).(SessionLogger); ok {
		return logger
	}
	return &slogLogger{logger: slog.Default()}
}

// NewSlogSessionLogger wraps a slog.Logger, typically one already carrying
// a session attribute, as a SessionLogger.
func NewSlogSessionLogger(logger *slog.Logger) SessionLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &slogLogger{logger: logger}
}

type slogLogger struct {
	logger *slog.Logger
}

func (l *slogLogger) Log(level slog.Level, message string, args ...any) {
	l.logger.Log(context.Background(), level, message, args...)
}
