// Package logging builds the daemon's slog logger from configuration.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rtsops/reinforce/internal/infrastructure/config"
)

// NewLogger constructs a slog.Logger per the logging config. The caller is
// expected to slog.SetDefault the result so library fallbacks share it.
func NewLogger(cfg *config.LoggingConfig) (*slog.Logger, error) {
	var output io.Writer
	switch cfg.Output {
	case "stdout":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	case "file":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("logging output is file but file_path is empty")
		}
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = f
	default:
		return nil, fmt.Errorf("unsupported logging output: %s", cfg.Output)
	}

	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.IncludeCaller,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler), nil
}

func parseLevel(level string) slog.Level {
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
