package shared

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	// TraceIDContextKey is the context key for the per-request trace ID.
	TraceIDContextKey contextKey = "trace_id"

	// UserIDContextKey is the context key for the requester identity
	// extracted by the identity middleware.
	UserIDContextKey contextKey = "user_id"
)

// SetTraceID stamps a fresh trace ID into the context.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDContextKey, uuid.NewString())
}

// GetTraceID retrieves the trace ID from the context, or "" when absent.
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDContextKey).(string); ok {
		return traceID
	}
	return ""
}

// SetUserID stamps the requester identity into the context.
func SetUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDContextKey, id)
}

// GetUserID retrieves the requester identity from the context. The second
// return value is false when no identity accompanied the request.
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(UserIDContextKey).(uuid.UUID)
	return id, ok
}
