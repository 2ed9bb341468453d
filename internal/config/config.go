package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the MCP server
type Config struct {
	// Server configuration
	Mode     string // "stdio" or "http"
	Profile  string // Profile to expose: "core", "intel", "all"
	LogLevel string // "debug", "info", "warn", "error"

	// HTTP server configuration
	HTTPAddr string // Listen address for streamable HTTP mode

	// CrowdStrike Falcon API credentials
	FalconClientID     string
	FalconClientSecret string
	FalconBaseURL      string // Empty selects the default US-1 region
	FalconTimeout      time.Duration
}

// Load loads configuration from environment variables
// Priority: environment variables > .env file > defaults
func Load() (*Config, error) {
	// A .env file in the working directory is applied first. Variables
	// already present in the environment win over the file.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		Mode:     getEnv("MCP_MODE", "stdio"),
		Profile:  getEnv("MCP_PROFILE", "all"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPAddr: getEnv("MCP_HTTP_ADDR", ":8080"),

		FalconClientID:     os.Getenv("FALCON_CLIENT_ID"),
		FalconClientSecret: os.Getenv("FALCON_CLIENT_SECRET"),
		FalconBaseURL:      os.Getenv("FALCON_BASE_URL"),
		FalconTimeout:      getDurationEnv("FALCON_API_TIMEOUT", 30*time.Second),
	}

	// Validate mode
	if cfg.Mode != "stdio" && cfg.Mode != "http" {
		return nil, fmt.Errorf("invalid MCP_MODE: %s (must be 'stdio' or 'http')", cfg.Mode)
	}

	// Tools cannot work without API credentials, so fail at startup
	// rather than on the first call
	if cfg.FalconClientID == "" || cfg.FalconClientSecret == "" {
		return nil, fmt.Errorf("FALCON_CLIENT_ID and FALCON_CLIENT_SECRET environment variables must be set")
	}

	return cfg, nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getDurationEnv gets a duration environment variable
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate profile
	validProfiles := map[string]bool{
		"core":  true,
		"intel": true,
		"all":   true,
	}

	if !validProfiles[c.Profile] {
		return fmt.Errorf("invalid profile: %s", c.Profile)
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	return nil
}
