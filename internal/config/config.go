package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	API      APIConfig
	Realtime RealtimeConfig
	Storage  StorageConfig
	Order    OrderConfig
	Logger   LoggerConfig
	Identity IdentityConfig
}

// APIConfig holds the order backend REST configuration.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// RealtimeConfig holds the websocket event channel configuration.
type RealtimeConfig struct {
	URL          string
	DialTimeout  time.Duration
	PingInterval time.Duration
}

// StorageConfig holds the local cart persistence configuration.
type StorageConfig struct {
	Path string
}

// OrderConfig holds order lifecycle tuning.
type OrderConfig struct {
	TimeoutWindow time.Duration // server-side acceptance window, mirrored by the local countdown
	GraceDelay    time.Duration // wait before resetting the UI after DELIVERED/CANCELLED
	SupportName   string
	SupportPhone  string
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// IdentityConfig holds the authenticated user identity. The email both
// keys order lookups and names the realtime room.
type IdentityConfig struct {
	Email string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		API: APIConfig{
			BaseURL: getEnv("HAYAS_API_URL", "http://localhost:8080"),
			Timeout: getEnvAsDuration("HAYAS_API_TIMEOUT", 15*time.Second),
		},
		Realtime: RealtimeConfig{
			URL:          getEnv("HAYAS_WS_URL", "ws://localhost:8080/ws"),
			DialTimeout:  getEnvAsDuration("HAYAS_WS_DIAL_TIMEOUT", 10*time.Second),
			PingInterval: getEnvAsDuration("HAYAS_WS_PING_INTERVAL", 30*time.Second),
		},
		Storage: StorageConfig{
			Path: getEnv("HAYAS_STORAGE_PATH", "hayas.db"),
		},
		Order: OrderConfig{
			TimeoutWindow: getEnvAsDuration("HAYAS_ORDER_TIMEOUT", 2*time.Minute),
			GraceDelay:    getEnvAsDuration("HAYAS_GRACE_DELAY", 3*time.Second),
			SupportName:   getEnv("HAYAS_SUPPORT_NAME", "Hayas Support"),
			SupportPhone:  getEnv("HAYAS_SUPPORT_PHONE", "+918220206483"),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Identity: IdentityConfig{
			Email: getEnv("HAYAS_USER_EMAIL", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := url.Parse(c.API.BaseURL); err != nil || c.API.BaseURL == "" {
		return fmt.Errorf("invalid API base URL: %q", c.API.BaseURL)
	}

	u, err := url.Parse(c.Realtime.URL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		return fmt.Errorf("invalid websocket URL: %q (scheme must be ws or wss)", c.Realtime.URL)
	}

	if c.Storage.Path == "" {
		return fmt.Errorf("storage path is required")
	}

	if c.Order.TimeoutWindow <= 0 {
		return fmt.Errorf("order timeout window must be positive")
	}

	if c.Order.GraceDelay < 0 {
		return fmt.Errorf("grace delay cannot be negative")
	}

	if c.Identity.Email == "" {
		return fmt.Errorf("user email is required (set HAYAS_USER_EMAIL)")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	return nil
}

// SupportContactValues returns the configured timeout support contact.
func (c *OrderConfig) SupportContactValues() (name, phone string) {
	return c.SupportName, c.SupportPhone
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a duration or
// returns a default value. Plain integers are read as seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
