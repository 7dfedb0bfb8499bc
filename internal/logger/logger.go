// Package logger builds the structured logger used by the CLI.
//
// Library packages never create loggers themselves; they accept an
// optional *slog.Logger and stay silent without one.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Format represents log output formats.
type Format string

const (
	FormatJSON   Format = "json"
	FormatPretty Format = "pretty"
)

// Config holds logging configuration.
type Config struct {
	Level      string // debug, info, warn, error
	Format     Format
	Output     io.Writer
	TimeFormat string
}

// DefaultConfig logs info and above to stderr in pretty format. The CLI
// starts from it and applies the configured level and format.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     FormatPretty,
		Output:     os.Stderr,
		TimeFormat: time.TimeOnly,
	}
}

// New creates a logger. Pretty output uses tint; anything else is JSON.
func New(cfg Config) *slog.Logger {
	level := ParseLevel(cfg.Level)

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	var handler slog.Handler
	if cfg.Format == FormatPretty {
		timeFormat := cfg.TimeFormat
		if timeFormat == "" {
			timeFormat = time.TimeOnly
		}
		handler = tint.NewHandler(output, &tint.Options{
			Level:      level,
			TimeFormat: timeFormat,
			NoColor:    !isTerminal(output),
		})
	} else {
		handler = slog.NewJSONHandler(output, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel converts a level name to slog.Level. Unknown names map to info.
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

// isTerminal reports whether w is an interactive terminal, so colors are
// never written to files, pipes or /dev/null.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
