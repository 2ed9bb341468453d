package tools

import (
	"context"
	"fmt"
	"log/slog"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	// intelClientKey is the context key for storing the IntelClient
	intelClientKey contextKey = "intel-client"
	// loggerKey is the context key for storing the request logger
	loggerKey contextKey = "logger"
)

// WithIntelClient adds an IntelClient to the context. The server
// injects the real Falcon client into every request context; tests
// inject mocks the same way, so handlers never construct clients
// themselves.
func WithIntelClient(ctx context.Context, client IntelClient) context.Context {
	return context.WithValue(ctx, intelClientKey, client)
}

// GetIntelClient retrieves the IntelClient from context.
// This is the shared helper every tool uses to reach the Falcon API.
func GetIntelClient(ctx context.Context) (IntelClient, error) {
	if client, ok := ctx.Value(intelClientKey).(IntelClient); ok && client != nil {
		return client, nil
	}
	return nil, fmt.Errorf("intel client not found in context")
}

// WithLogger adds the server's base logger to the context
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// GetLogger retrieves the logger from context, falling back to
// slog.Default() so callers never get nil.
func GetLogger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}
