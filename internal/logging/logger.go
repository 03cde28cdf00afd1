package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// replaceAttr standardizes common keys (e.g., "error" -> "err").
func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Key == "error" {
		a.Key = "err"
	}
	return a
}

// New creates a configured application logger.
// It writes to Stderr (to keep Stdout for tree output and JSON-RPC).
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttr,
	}))
}

// NewJSON creates a logger emitting JSON lines to Stderr, for server mode.
func NewJSON(level slog.Level) *slog.Logger {
	return NewJSONTo(os.Stderr, level)
}

// NewJSONTo is NewJSON writing to w.
func NewJSONTo(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttr,
	}))
}

// NewFormat picks New or NewJSON by name ("text" or "json").
func NewFormat(format string, level slog.Level) *slog.Logger {
	if strings.EqualFold(format, "json") {
		return NewJSON(level)
	}
	return New(level)
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel parses debug, info, warn or error (case-insensitive).
// An empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
