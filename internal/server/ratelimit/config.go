package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific
// endpoint. Paths ending in "/" match by prefix.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int // maximum requests per window
	Window time.Duration
	Burst  int // burst capacity, defaults to Limit
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	enabled := getEnvBool("RATE_LIMIT_ENABLED", true)
	if !enabled {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         enabled,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the endpoint-specific limits. Workflow
// transitions are far stricter than reads since each one is a guarded write.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		{Path: "/applications/save", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/applications/submit", Method: "POST", Limit: 10, Window: time.Minute, Burst: 3},
		{Path: "/applications/withdraw", Method: "POST", Limit: 10, Window: time.Minute, Burst: 3},
		{Path: "/applications/", Method: "PUT", Limit: 60, Window: time.Minute, Burst: 10},

		{Path: "/interviews", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/interviews/", Method: "POST", Limit: 10, Window: time.Minute, Burst: 3},
		{Path: "/interviews/", Method: "PUT", Limit: 60, Window: time.Minute, Burst: 10},
	}
}

// match finds the endpoint configuration for a request. The health check is
// unlimited; unmatched endpoints fall back to the default limit.
func (c *Config) match(path, method string) EndpointConfig {
	if path == "/health" && method == "GET" {
		return EndpointConfig{}
	}

	for _, ec := range c.EndpointConfigs {
		if ec.Path == path && ec.Method == method {
			return ec
		}
	}
	for _, ec := range c.EndpointConfigs {
		if ec.Method == method && strings.HasSuffix(ec.Path, "/") && strings.HasPrefix(path, ec.Path) {
			return ec
		}
	}

	return EndpointConfig{
		Path:   path,
		Method: method,
		Limit:  c.DefaultLimit,
		Window: c.DefaultWindow,
		Burst:  c.DefaultLimit,
	}
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
