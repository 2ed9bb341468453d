package metrics

import "context"

// contextKey is a type for context keys to avoid collisions
type contextKey string

// metricsManagerKey is the context key for the metrics manager
const metricsManagerKey contextKey = "metrics-manager"

// WithManager adds the metrics manager to the context so tool wrappers
// can record invocations.
func WithManager(ctx context.Context, manager *Manager) context.Context {
	return context.WithValue(ctx, metricsManagerKey, manager)
}

// GetManager retrieves the metrics manager from the context.
// Returns nil if no manager is present, which callers must treat as
// "metrics disabled".
func GetManager(ctx context.Context) *Manager {
	if manager, ok := ctx.Value(metricsManagerKey).(*Manager); ok {
		return manager
	}
	return nil
}
