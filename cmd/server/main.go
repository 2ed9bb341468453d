package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/carlosmmatos/falcon-mcp-go/internal/config"
	"github.com/carlosmmatos/falcon-mcp-go/internal/falcon"
	"github.com/carlosmmatos/falcon-mcp-go/internal/server"

	// Import tool packages to trigger init() registration
	_ "github.com/carlosmmatos/falcon-mcp-go/internal/tools/core"
	_ "github.com/carlosmmatos/falcon-mcp-go/internal/tools/intel" // Threat intelligence tools
)

const userAgent = "falcon-mcp-go/1.0.0"

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

func main() {
	// Load configuration first to determine log level
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup logger with configured level
	level := parseLogLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("Starting Falcon Intel MCP Server",
		"mode", cfg.Mode,
		"profile", cfg.Profile)

	// Create the Falcon API client
	client, err := falcon.NewClient(falcon.Config{
		ClientID:     cfg.FalconClientID,
		ClientSecret: cfg.FalconClientSecret,
		BaseURL:      cfg.FalconBaseURL,
		Timeout:      cfg.FalconTimeout,
		UserAgent:    userAgent,
	}, logger)
	if err != nil {
		logger.Error("Failed to create Falcon client", "error", err)
		os.Exit(1)
	}

	// Verify credentials up front so a bad deployment fails at startup
	// rather than on the first tool call
	if err := client.Login(context.Background()); err != nil {
		logger.Error("Falcon API authentication failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Authenticated with the Falcon API", "base_url", client.BaseURL())

	// Create server
	srv, err := server.New(cfg, client, logger)
	if err != nil {
		logger.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	// Ensure cleanup happens on exit
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Error("Error during server cleanup", "error", err)
		}
	}()

	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	// Start server
	logger.Info("Server starting...")
	if err := srv.Serve(ctx); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}

	logger.Info("Server stopped")
}
