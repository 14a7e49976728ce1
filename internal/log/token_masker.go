package log

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

const mask = "***"

// TokenMaskerHandler wraps a slog.Handler and hides sign tokens, oauth codes
// and access tokens in messages and attributes.
type TokenMaskerHandler struct {
	handler slog.Handler
}

// NewTokenMaskerHandler wraps handler.
func NewTokenMaskerHandler(handler slog.Handler) *TokenMaskerHandler {
	return &TokenMaskerHandler{
		handler: handler,
	}
}

// secret query parameters, as they appear in launch links and callback URLs
var secretParamRegex = regexp.MustCompile(`\b((?:wechat_auth_token|access_token|refresh_token|code)=)[^&\s"']+`)

// attribute keys whose whole value is a secret
var secretKeys = map[string]struct{}{
	"token":         {},
	"sign_token":    {},
	"access_token":  {},
	"refresh_token": {},
}

func maskTokens(text string) string {
	return secretParamRegex.ReplaceAllString(text, "${1}"+mask)
}

// Enabled implements slog.Handler.
func (h *TokenMaskerHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *TokenMaskerHandler) Handle(ctx context.Context, record slog.Record) error {
	// Attrs are re-added masked onto a fresh record.
	r := slog.NewRecord(record.Time, record.Level, maskTokens(record.Message), record.PC)
	record.Attrs(func(a slog.Attr) bool {
		r.AddAttrs(maskAttr(a))
		return true
	})
	return h.handler.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h *TokenMaskerHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		masked[i] = maskAttr(attr)
	}
	return &TokenMaskerHandler{
		handler: h.handler.WithAttrs(masked),
	}
}

// WithGroup implements slog.Handler.
func (h *TokenMaskerHandler) WithGroup(name string) slog.Handler {
	return &TokenMaskerHandler{
		handler: h.handler.WithGroup(name),
	}
}

func maskAttr(a slog.Attr) slog.Attr {
	if _, ok := secretKeys[strings.ToLower(a.Key)]; ok && a.Value.Kind() != slog.KindGroup {
		return slog.String(a.Key, mask)
	}
	return slog.Attr{Key: a.Key, Value: maskValue(a.Value)}
}

func maskValue(value slog.Value) slog.Value {
	switch value.Kind() {
	case slog.KindString:
		return slog.StringValue(maskTokens(value.String()))
	case slog.KindAny:
		switch v := value.Any().(type) {
		case error:
			return slog.StringValue(maskTokens(v.Error()))
		case interface{ String() string }:
			return slog.StringValue(maskTokens(v.String()))
		}
		return value
	case slog.KindLogValuer:
		return maskValue(value.Resolve())
	case slog.KindGroup:
		group := value.Group()
		masked := make([]slog.Attr, len(group))
		for i, attr := range group {
			masked[i] = maskAttr(attr)
		}
		return slog.GroupValue(masked...)
	default:
		return value
	}
}

// NewMaskedLogger returns a logger whose output goes through the masker.
func NewMaskedLogger(handler slog.Handler) *slog.Logger {
	return slog.New(NewTokenMaskerHandler(handler))
}

// NewHandler builds the base handler for format ("json" or "text") and level.
func NewHandler(w interface{ Write([]byte) (int, error) }, format, level string) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(format, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// ParseLevel maps debug, info, warn and error to slog levels. Anything else is info.
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
