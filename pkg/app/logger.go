// Package app wires process-level concerns shared by the commands.
package app

import (
	"io"
	"log/slog"
	"strings"

	"github.com/japaniel/dictload/pkg/config"
)

// NewLogger creates a *slog.Logger writing to w based on cfg and sets it as
// the default logger via slog.SetDefault.
//
// Format "json" produces one JSON object per line; anything else produces
// human-readable text with the source file. Level is one of debug, info,
// warn, error (case-insensitive); unknown values fall back to info.
func NewLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: !strings.EqualFold(cfg.Format, "json"),
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
