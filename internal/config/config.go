// Package config loads server settings from the environment. A .env file in
// the working directory is read first when present.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// MinSecretLength is the shortest accepted JWT secret.
const MinSecretLength = 16

type Config struct {
	// HTTP server
	Port            int           `envconfig:"PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	CORSOrigin      string        `envconfig:"CORS_ALLOWED_ORIGIN" default:"*"`

	// Database
	DBPath string `envconfig:"DB_PATH" default:"./data/familyspend.db"`

	// Sessions
	JWTSecret  string        `envconfig:"JWT_SECRET" required:"true"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"168h"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	// Metrics
	MetricsEnabled bool `envconfig:"METRICS_ENABLED" default:"true"`
}

// Load reads .env (if any) and the environment, then validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if c.Port < 1 || c.Port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.Port))
	}

	if c.DBPath == "" {
		errors = append(errors, "database path cannot be empty")
	}

	if len(c.JWTSecret) < MinSecretLength {
		errors = append(errors, fmt.Sprintf("JWT secret must be at least %d characters", MinSecretLength))
	}

	if c.SessionTTL <= 0 {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be positive", c.SessionTTL))
	}

	if c.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be positive", c.ShutdownTimeout))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}
