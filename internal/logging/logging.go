// Package logging builds the application's slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/nhle/mailagent/internal/config"
)

// ParseLevel maps debug|info|warn|error to a slog level. Unknown values
// are info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// New returns a tint logger writing to w.
func New(w io.Writer, level slog.Level, color bool) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
		NoColor:    !color,
	}))
}

// Setup opens the configured log file and returns a logger writing to
// it. The caller closes the returned closer on exit. With no file
// configured, logs are discarded: stdout belongs to the UI.
func Setup(cfg config.LogConfig) (*slog.Logger, io.Closer, error) {
	level := ParseLevel(cfg.Level)
	if cfg.File == "" {
		return slog.New(slog.DiscardHandler), io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file %s: %w", cfg.File, err)
	}

	logger := New(f, level, false)
	logger.Info("Logger initialized", "level", level.String())
	return logger, f, nil
}
