// Package logger provides the process-wide structured logger.
//
// Output goes to stderr so that generated code written to stdout stays clean.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

var defaultLogger = New(os.Stderr, os.Getenv("DNCL_LOG_FORMAT"), os.Getenv("DNCL_LOG_LEVEL"))

// New builds a logger writing to w. format "json" selects the JSON handler,
// anything else the text handler. level is one of debug, info, warn, error
// and defaults to warn.
func New(w io.Writer, format, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Default returns the default logger instance.
func Default() *slog.Logger {
	return defaultLogger
}

// SetDefault replaces the default logger (the CLI does this for --verbose).
func SetDefault(l *slog.Logger) {
	if l != nil {
		defaultLogger = l
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type loggerKey struct{}

// WithContext stores l in ctx.
func WithContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext returns the logger stored in ctx, or the default one.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return defaultLogger
	}
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return defaultLogger
}
