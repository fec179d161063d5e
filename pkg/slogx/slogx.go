package slogx

import (
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type Config struct {
	Service string
	Version string
	Env     string // e.g. "dev", "prod"
	Level   string // e.g. "debug", "info", "warn", "error"
	Format  string // "json", "text" or empty to pick by terminal
}

// New returns a configured slog.Logger and installs it as the default.
func New(cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: cfg.Env == "dev",
		Level:     parseLevel(cfg.Level),
	}

	var handler slog.Handler
	switch resolveFormat(cfg.Format, os.Stdout.Fd()) {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler).With(
		"service", cfg.Service,
		"version", cfg.Version,
		"env", cfg.Env,
	)

	slog.SetDefault(logger)
	return logger
}

// resolveFormat falls back to text on an interactive terminal and JSON
// everywhere else when no explicit format is configured.
func resolveFormat(format string, fd uintptr) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "" {
		return format
	}
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return "text"
	}
	return "json"
}

func parseLevel(lvl string) slog.Level {
	switch strings.ToLower(lvl) {
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
