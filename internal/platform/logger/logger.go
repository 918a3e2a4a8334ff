package logger

import (
	"io"
	"log/slog"
	"os"

	console "github.com/phsym/console-slog"
)

// New returns a structured logger writing to stdout. format is "json",
// "text", or "console" (colored, for local development).
func New(level, format string) *slog.Logger {
	return NewWithWriter(os.Stdout, level, format)
}

func NewWithWriter(w io.Writer, level, format string) *slog.Logger {
	lvl := ParseLevel(level)
	switch format {
	case "console":
		return slog.New(console.NewHandler(w, &console.HandlerOptions{Level: lvl}))
	case "text":
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
	default:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
	}
}

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
