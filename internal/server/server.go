package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/server"

	"github.com/carlosmmatos/falcon-mcp-go/internal/config"
	"github.com/carlosmmatos/falcon-mcp-go/internal/falcon"
	"github.com/carlosmmatos/falcon-mcp-go/internal/metrics"
	"github.com/carlosmmatos/falcon-mcp-go/internal/resources"
	"github.com/carlosmmatos/falcon-mcp-go/internal/tools"
)

// parseLogLevel converts a string log level to slog.Level
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Server wraps the MCP server with our configuration
type Server struct {
	mcpServer      *server.MCPServer
	config         *config.Config
	client         *falcon.Client
	metricsManager *metrics.Manager
	logger         *slog.Logger
}

// New creates a new MCP server instance
func New(cfg *config.Config, client *falcon.Client, logger *slog.Logger) (*Server, error) {
	if client == nil {
		return nil, fmt.Errorf("falcon client is required")
	}
	if logger == nil {
		level := parseLogLevel(cfg.LogLevel)
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))
	}

	// Initialize metrics manager for Prometheus exposure
	metricsConfig := metrics.LoadConfig()
	metricsManager, err := metrics.NewManager(metricsConfig, logger)
	if err != nil {
		logger.Warn("Failed to initialize metrics manager", "error", err)
		metricsManager = nil
	}

	// Report upstream API outcomes through the metrics manager
	if metricsManager != nil {
		client.SetRecorder(metricsManager)
	}

	// Create MCP server shared by both serving modes
	mcpServer := server.NewMCPServer(
		"Falcon Intel MCP Server",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s := &Server{
		mcpServer:      mcpServer,
		config:         cfg,
		client:         client,
		metricsManager: metricsManager,
		logger:         logger,
	}

	// Register tools for the selected profile
	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	resources.AddResourcesToServer(mcpServer)

	logger.Info("Falcon Intel MCP server initialized",
		"profile", cfg.Profile,
		"mode", cfg.Mode)

	return s, nil
}

// registerTools registers all tools for the configured profile
func (s *Server) registerTools() error {
	if err := tools.AddToolsToServer(s.mcpServer, s.config.Profile); err != nil {
		return err
	}

	toolNames := tools.GetToolsForProfile(s.config.Profile)
	s.logger.Info("Registered tools", "count", len(toolNames))

	return nil
}

// requestContext injects the values every tool handler pulls back out of
// its request context.
func (s *Server) requestContext(ctx context.Context) context.Context {
	ctx = tools.WithIntelClient(ctx, s.client)
	ctx = tools.WithLogger(ctx, s.logger)
	if s.metricsManager != nil {
		ctx = metrics.WithManager(ctx, s.metricsManager)
	}
	return ctx
}

// Serve starts the server in the configured mode
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("Starting server", "mode", s.config.Mode)

	switch s.config.Mode {
	case "stdio":
		return s.serveStdio(ctx)
	case "http":
		return s.serveHTTP(ctx)
	default:
		return fmt.Errorf("unknown server mode: %s", s.config.Mode)
	}
}

// GetLogger returns the logger
func (s *Server) GetLogger() *slog.Logger {
	return s.logger
}

// Close gracefully shuts down the server and releases resources
func (s *Server) Close() error {
	s.logger.Info("Shutting down server, cleaning up resources...")

	// Close metrics manager
	if s.metricsManager != nil {
		if err := s.metricsManager.Close(); err != nil {
			s.logger.Warn("Failed to close metrics manager", "error", err)
		}
	}

	s.logger.Info("Server shutdown complete")
	return nil
}
