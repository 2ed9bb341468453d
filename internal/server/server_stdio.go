package server

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
)

// serveStdio starts the MCP server on stdin/stdout.
func (s *Server) serveStdio(ctx context.Context) error {
	s.logger.Info("Serving via STDIO")

	// Use WithStdioContextFunc to inject our context values into every
	// request. This is how the intel client, logger, and metrics manager
	// reach tool handlers.
	contextFunc := func(reqCtx context.Context) context.Context {
		return s.requestContext(reqCtx)
	}

	return server.ServeStdio(s.mcpServer, server.WithStdioContextFunc(contextFunc))
}
