package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"
)

// serveHTTP starts the MCP server as a streamable HTTP endpoint.
func (s *Server) serveHTTP(ctx context.Context) error {
	httpServer := server.NewStreamableHTTPServer(
		s.mcpServer,
		server.WithHTTPContextFunc(func(reqCtx context.Context, _ *http.Request) context.Context {
			return s.requestContext(reqCtx)
		}),
	)

	s.logger.Info("Serving via streamable HTTP", "addr", s.config.HTTPAddr)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.Start(s.config.HTTPAddr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or server error
	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server...")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		s.logger.Info("HTTP server stopped gracefully")
		return nil

	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}
