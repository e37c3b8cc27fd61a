// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// ParseLevel maps a textual level to a slog.Level. Unknown values map to info.
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

// New returns a tint logger writing to f. Colour is only enabled on terminals.
func New(f *os.File, level string) *slog.Logger {
	return NewWithWriter(colorable.NewColorable(f), level, !isatty.IsTerminal(f.Fd()))
}

// NewWithWriter returns a tint logger writing to w.
func NewWithWriter(w io.Writer, level string, noColor bool) *slog.Logger {
	ll := &slog.LevelVar{}
	ll.Set(ParseLevel(level))
	// Skip timestamps when running under systemd (it adds its own).
	underSystemd := os.Getenv("JOURNAL_STREAM") != ""
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000",
		NoColor:    noColor,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if underSystemd && a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			switch v := a.Value.Any().(type) {
			case string:
				if v == "" {
					return slog.Attr{}
				}
			case time.Duration:
				if v == 0 {
					return slog.Attr{}
				}
			case nil:
				return slog.Attr{}
			}
			return a
		},
	}))
}

// Setup installs a logger for f as the slog default and returns it.
func Setup(f *os.File, level string) *slog.Logger {
	logger := New(f, level)
	slog.SetDefault(logger)
	return logger
}
