// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the application configuration from HAASIVU_*
// environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"HAASIVU_DB_PATH" envDefault:"./data/haasivu.db"`
	SessionSecret string `env:"HAASIVU_SESSION_SECRET,required"`
	ServerHost    string `env:"HAASIVU_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"HAASIVU_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"HAASIVU_ENV" envDefault:"development"`
	LogLevel      string `env:"HAASIVU_LOG_LEVEL" envDefault:"info"`
	UploadsDir    string `env:"HAASIVU_UPLOADS_DIR" envDefault:"./uploads"`

	// Cache configuration
	RedisURL     string `env:"HAASIVU_REDIS_URL"`                          // Optional Redis URL for the published-site cache
	CachePrefix  string `env:"HAASIVU_CACHE_PREFIX" envDefault:"haasivu:"` // Redis key prefix
	CacheTTL     int    `env:"HAASIVU_CACHE_TTL" envDefault:"300"`         // Published-site cache TTL in seconds
	CacheMaxSize int    `env:"HAASIVU_CACHE_MAX_SIZE" envDefault:"1000"`   // Max memory cache entries

	// GeoIP configuration
	GeoIPDBPath string `env:"HAASIVU_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file

	// Text suggestion configuration
	OpenAIAPIKey string `env:"HAASIVU_OPENAI_API_KEY"`                        // Optional key for text suggestions
	OpenAIModel  string `env:"HAASIVU_OPENAI_MODEL" envDefault:"gpt-4o-mini"` // Model used for suggestions

	// Retention for event log and visit statistics, in days
	RetentionDays int `env:"HAASIVU_RETENTION_DAYS" envDefault:"90"`

	// Seeding configuration
	DoSeed bool `env:"HAASIVU_DO_SEED" envDefault:"true"` // Enable database seeding
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// GeoIPEnabled returns true if a GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// SuggestionsEnabled returns true if text suggestions are configured.
func (c Config) SuggestionsEnabled() bool {
	return c.OpenAIAPIKey != ""
}

// MinSessionSecretLength is the minimum required length for the session
// secret. AES-256 requires 32 bytes minimum.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("HAASIVU_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("HAASIVU_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("HAASIVU_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character
// classes (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
