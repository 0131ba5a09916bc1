// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// CookieConfig provides settings for the identity cookie.
type CookieConfig interface {
	GetIdentityCookieName() string
	GetIdentityCookieTTL() time.Duration
	GetIdentityCookieSecure() bool
}

// RateLimitConfig provides settings for the create-path rate limiter.
type RateLimitConfig interface {
	GetCreateRateLimit() int
	GetCreateRateWindow() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                  string
	HTTPAddr             string
	DatabaseURL          string
	CORSAllowAll         bool
	CORSOrigins          []string
	CORSAllowCreds       bool
	IdentityCookieName   string
	IdentityCookieTTL    time.Duration
	IdentityCookieSecure bool
	CreateRateLimit      int
	CreateRateWindow     time.Duration
	MigrationsDir        string
}

// Load reads configuration from the environment, with .env as a fallback
// source for local development.
func Load() (*Config, error) {
	// Ignore the error: a missing .env file is fine outside development.
	_ = godotenv.Load()

	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		CORSAllowAll:         getEnvBool("CORS_ALLOW_ALL", true),
		CORSOrigins:          splitCSV(os.Getenv("CORS_ORIGINS")),
		CORSAllowCreds:       getEnvBool("CORS_ALLOW_CREDENTIALS", true),
		IdentityCookieName:   getEnv("IDENTITY_COOKIE_NAME", "user-id"),
		IdentityCookieTTL:    getEnvDuration("IDENTITY_COOKIE_TTL", 30*24*time.Hour),
		IdentityCookieSecure: getEnvBool("IDENTITY_COOKIE_SECURE", false),
		CreateRateLimit:      getEnvInt("CREATE_RATE_LIMIT", 60),
		CreateRateWindow:     getEnvDuration("CREATE_RATE_WINDOW", time.Hour),
		MigrationsDir:        getEnv("MIGRATIONS_DIR", "migrations"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.CreateRateLimit < 1 {
		return nil, fmt.Errorf("CREATE_RATE_LIMIT must be at least 1")
	}

	return cfg, nil
}

// =============================================================================
// Interface implementations
// =============================================================================

func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

func (c *Config) GetIdentityCookieName() string       { return c.IdentityCookieName }
func (c *Config) GetIdentityCookieTTL() time.Duration { return c.IdentityCookieTTL }
func (c *Config) GetIdentityCookieSecure() bool       { return c.IdentityCookieSecure }

func (c *Config) GetCreateRateLimit() int            { return c.CreateRateLimit }
func (c *Config) GetCreateRateWindow() time.Duration { return c.CreateRateWindow }

// =============================================================================
// Helpers
// =============================================================================

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
