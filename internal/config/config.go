// Package config provides environment-driven configuration for the service.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// ServerConfig holds the HTTP server and database settings.
type ServerConfig struct {
	Port        int
	DatabaseURL string
}

// NewServerConfig creates server configuration from environment variables.
// It reads DATABASE_URL (required) and PORT (default: 8080).
func NewServerConfig() (*ServerConfig, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set")
	}

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080" // default
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %v", err)
	}

	cfg := &ServerConfig{
		Port:        port,
		DatabaseURL: databaseURL,
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize validates the configuration.
func (c *ServerConfig) normalize() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	return nil
}
