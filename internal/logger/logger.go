package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alkime/sonify/internal/config"
)

// SetupLogger configures structured logging for the fixture server based on
// environment.
func SetupLogger(cfg *config.Server) *slog.Logger {
	// Determine log level
	logLevel := ParseLevel(cfg.LogLevel)
	if cfg.Env == config.EnvDevelopment {
		logLevel = slog.LevelDebug
	}

	// Create JSON handler for structured logging
	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	logger := slog.New(handler)

	// Set as default logger
	slog.SetDefault(logger)

	return logger
}

// SetupText installs a text logger writing to w, for CLI output or the TUI
// log file.
func SetupText(w io.Writer, level string) *slog.Logger {
	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

// ParseLevel maps a LOG_LEVEL value to a slog level, defaulting to info.
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
