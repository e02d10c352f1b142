// Package logging sets up the process-wide slog logger.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
)

// Options controls the logger built by New and Setup.
type Options struct {
	// Level is DEBUG, INFO, WARN or ERROR (case-insensitive); anything else is INFO.
	Level string
	// Format is "json" (default) or "text".
	Format string
	// Service is attached to every record as "service".
	Service string
}

// 値をログに出してはいけない属性キー
var redactedKeys = map[string]bool{
	"password":      true,
	"token":         true,
	"session_token": true,
	"authorization": true,
	"cookie":        true,
}

const redacted = "[REDACTED]"

// New builds a logger writing to w. ERROR records carry a stack trace and
// secret-bearing attributes are masked.
func New(w io.Writer, o Options) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       ParseLevel(o.Level),
		AddSource:   true,
		ReplaceAttr: redact,
	}
	var h slog.Handler
	if strings.EqualFold(strings.TrimSpace(o.Format), "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	logger := slog.New(&stackHandler{Handler: h})
	if o.Service != "" {
		logger = logger.With("service", o.Service)
	}
	return logger
}

// Setup installs a stdout logger as the slog default and returns it.
func Setup(o Options) *slog.Logger {
	logger := New(os.Stdout, o)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a LOG_LEVEL string to a slog.Level.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Fatal logs at Error level and exits with code 1.
func Fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if redactedKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, redacted)
	}
	return a
}

// stackHandler appends a stack trace to ERROR records.
type stackHandler struct {
	slog.Handler
}

func (h *stackHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		buf := make([]byte, 4096)
		n := runtime.Stack(buf, false)
		r.AddAttrs(slog.String("stacktrace", string(buf[:n])))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *stackHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &stackHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *stackHandler) WithGroup(name string) slog.Handler {
	return &stackHandler{Handler: h.Handler.WithGroup(name)}
}
