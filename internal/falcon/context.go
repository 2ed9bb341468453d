package falcon

import "context"

// contextKey is a type for context keys to avoid collisions
type contextKey string

// requestIDKey is the context key for the per-invocation request ID
const requestIDKey contextKey = "falcon-request-id"

// WithRequestID tags outbound API calls with a request identifier. The
// client forwards it upstream as the X-Request-Id header so server logs
// and CrowdStrike audit trails can be correlated.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request identifier, or "" when none
// was set.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
