package log

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger returns a logger writing to w through a SecureHandler.
//
// format "json" selects slog's JSON handler, anything else the text
// handler. Without verbose only warnings and errors are written; the
// commands print their own progress lines to stdout.
func NewLogger(w io.Writer, verbose bool, format string) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(NewSecureHandler(handler))
}
