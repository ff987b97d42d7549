package logging

import (
	"io"
	"log/slog"
	"os"
)

// Format selects the handler used by NewWith.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// New creates the application logger.
// It writes to Stderr so Stdout stays free for plan output and MCP stdio.
func New(level slog.Level) *slog.Logger {
	return NewWith(os.Stderr, level, FormatText)
}

// NewWith creates a logger on w. Attributes named "error" are renamed to "err".
func NewWith(w io.Writer, level slog.Level, format Format) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttr,
	}
	if format == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Key == "error" {
		a.Key = "err"
	}
	return a
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
