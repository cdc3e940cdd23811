package requestid

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/nfckiosk/pkg/logger"
)

type contextKey struct{}

func WithContext(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKey{}, requestID)
}

func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	requestID, ok := ctx.Value(contextKey{}).(string)
	if !ok {
		return ""
	}
	return requestID
}

// New generates a fresh request identifier.
func New() string {
	return uuid.New().String()
}

// Ensure returns ctx carrying a request id, generating one when ctx has none.
// Each kiosk operation calls it once so every log line and outbound request of
// that operation share the same id.
func Ensure(ctx context.Context) (context.Context, string) {
	if id := FromContext(ctx); id != "" {
		return ctx, id
	}
	id := New()
	return WithContext(ctx, id), id
}

// LoggerExtractor adds the request id of ctx to log records as "request_id".
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := FromContext(ctx); id != "" {
			return logger.RequestID(id), true
		}
		return slog.Attr{}, false
	}
}
