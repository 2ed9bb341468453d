package metrics

import "os"

// Config holds configuration for Prometheus metrics exposure
type Config struct {
	// Addr is the listen address for the /metrics endpoint.
	// Empty disables the listener; collectors still record in-process.
	Addr string
}

// LoadConfig loads metrics configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Addr: os.Getenv("METRICS_ADDR"),
	}
}
