package common

import (
	"context"
)

// ContextKey represents a context key type
type ContextKey string

// Context keys
const (
	ContextKeyRequestID ContextKey = "request_id"
	ContextKeyCallerKey ContextKey = "caller_key"
)

// WithRequestID adds request ID to context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// GetRequestID extracts request ID from context
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(ContextKeyRequestID).(string)
	return requestID, ok
}

// WithCallerKey adds the rate-limit caller key (client IP) to context
func WithCallerKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, ContextKeyCallerKey, key)
}

// GetCallerKey extracts the rate-limit caller key from context.
// Falls back to "unknown" so a missing middleware never panics a handler;
// all unknown callers then share one throttle bucket.
func GetCallerKey(ctx context.Context) string {
	if key, ok := ctx.Value(ContextKeyCallerKey).(string); ok && key != "" {
		return key
	}
	return "unknown"
}
