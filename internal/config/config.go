package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all service configuration.
type Config struct {
	Server    ServerConfig
	Settings  SettingsConfig
	Inventory InventoryConfig
	Resolver  ResolverConfig
	Confirm   ConfirmConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8090"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// SettingsConfig holds settings-store configuration.
type SettingsConfig struct {
	// Path of the settings JSON file. Empty means a per-user default
	// under os.UserConfigDir.
	Path string `envconfig:"SETTINGS_PATH" default:""`
}

// InventoryConfig holds application-scan configuration.
type InventoryConfig struct {
	// TTL is how long a snapshot counts as fresh.
	TTL time.Duration `envconfig:"INVENTORY_TTL" default:"5m"`
	// Roots are the directories scanned for application bundles. Empty
	// means the platform defaults.
	Roots []string `envconfig:"INVENTORY_ROOTS"`
}

// ResolverConfig holds fuzzy-matching configuration.
type ResolverConfig struct {
	// Threshold is the minimum confidence (0-1) a fuzzy candidate needs
	// to count as a match.
	Threshold float64 `envconfig:"RESOLVER_THRESHOLD" default:"0.6"`
	// MemoSize bounds the memoization cache (entries).
	MemoSize int `envconfig:"RESOLVER_MEMO_SIZE" default:"256"`
}

// ConfirmConfig holds confirmation-dialog configuration.
type ConfirmConfig struct {
	// MaxAttempts is the per-stage retry budget for unrecognized
	// responses.
	MaxAttempts int `envconfig:"CONFIRM_MAX_ATTEMPTS" default:"5"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds API rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"50"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"100"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("VOXLAUNCH", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns defaults.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server:    ServerConfig{Port: "8090", Host: "0.0.0.0"},
		Settings:  SettingsConfig{},
		Inventory: InventoryConfig{TTL: 5 * time.Minute},
		Resolver:  ResolverConfig{Threshold: 0.6, MemoSize: 256},
		Confirm:   ConfirmConfig{MaxAttempts: 5},
		Logging:   LogConfig{Level: "info", Development: false},
		RateLimit: RateLimitConfig{RequestsPerSecond: 50, Burst: 100, Enabled: true},
	}
}
