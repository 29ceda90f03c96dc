// Package logging builds per-run loggers. Each run gets its own log file so
// parallel runs never collide; console output goes to stderr to keep stdout
// reserved for the single JSON result object.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewRunLogger creates a logger writing to <logDir>/<fileName> and stderr.
// The returned closer releases the log file.
func NewRunLogger(logDir, fileName, level string) (*slog.Logger, func() error, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory %s: %w", logDir, err)
	}
	path := filepath.Join(logDir, fileName)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file %s: %w", path, err)
	}

	handler := slog.NewTextHandler(io.MultiWriter(f, os.Stderr), &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	return slog.New(handler), f.Close, nil
}
