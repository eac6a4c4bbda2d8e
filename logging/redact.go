package logging

import (
	"context"
	"log/slog"
	"strings"
)

const redactedPlaceholder = "[REDACTED]"

// RedactingHandler is a slog.Handler middleware that masks configured secret
// values in log records. Both the record message and string attribute values
// are scanned; occurrences are replaced with "[REDACTED]". Non-string
// attribute kinds pass through untouched.
type RedactingHandler struct {
	inner   slog.Handler
	secrets []string
}

// NewRedactingHandler wraps inner with secret masking. Empty secret strings
// are ignored so an unset credential cannot blank out every record.
func NewRedactingHandler(inner slog.Handler, secrets []string) *RedactingHandler {
	kept := make([]string, 0, len(secrets))
	for _, s := range secrets {
		if s != "" {
			kept = append(kept, s)
		}
	}
	return &RedactingHandler{inner: inner, secrets: kept}
}

// Enabled implements slog.Handler.
func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler. It rebuilds the record with redacted
// message and attributes before delegating.
func (h *RedactingHandler) Handle(ctx context.Context, rec slog.Record) error {
	out := slog.NewRecord(rec.Time, rec.Level, h.redact(rec.Message), rec.PC)
	rec.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.redactAttr(a))
		return true
	})
	return h.inner.Handle(ctx, out)
}

// WithAttrs implements slog.Handler.
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.redactAttr(a)
	}
	return &RedactingHandler{inner: h.inner.WithAttrs(redacted), secrets: h.secrets}
}

// WithGroup implements slog.Handler.
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{inner: h.inner.WithGroup(name), secrets: h.secrets}
}

func (h *RedactingHandler) redactAttr(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, h.redact(a.Value.String()))
	case slog.KindGroup:
		group := a.Value.Group()
		members := make([]any, 0, len(group))
		for _, g := range group {
			members = append(members, h.redactAttr(g))
		}
		return slog.Group(a.Key, members...)
	default:
		return a
	}
}

func (h *RedactingHandler) redact(s string) string {
	for _, secret := range h.secrets {
		s = strings.ReplaceAll(s, secret, redactedPlaceholder)
	}
	return s
}
