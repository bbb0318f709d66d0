// Package config loads server configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the full server configuration. Every field has a usable
// default so `tablero serve` works with an empty environment.
type Config struct {
	// WSAddr is the WebSocket gateway listen address.
	WSAddr string `env:"TABLERO_WS_ADDR" envDefault:":8081"`
	// HTTPAddr is the board API listen address.
	HTTPAddr string `env:"TABLERO_HTTP_ADDR" envDefault:":8080"`

	// Store selects the entity store backend: "memory" or "redis".
	Store string `env:"TABLERO_STORE" envDefault:"memory"`
	// RedisAddr is the Redis endpoint, used when Store is "redis".
	RedisAddr string `env:"TABLERO_REDIS_ADDR" envDefault:"localhost:6379"`
	// RedisNamespace isolates this instance's keys from other tenants
	// sharing the Redis deployment.
	RedisNamespace string `env:"TABLERO_REDIS_NAMESPACE" envDefault:"default"`

	// WireFormat selects the gateway codec: "json" or "cbor".
	WireFormat string `env:"TABLERO_WIRE_FORMAT" envDefault:"json"`
	// LogLevel is the zerolog level name (debug, info, warn, error).
	LogLevel string `env:"TABLERO_LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	switch c.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store)
	}
	switch c.WireFormat {
	case "json", "cbor":
	default:
		return fmt.Errorf("unknown wire format %q", c.WireFormat)
	}
	return nil
}
