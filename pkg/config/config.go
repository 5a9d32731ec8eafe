// Package config provides unified configuration for the pforte gateway.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (PFORTE_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the pforte gateway.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	Auth          AuthConfig          `yaml:"auth"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`          // default: 8080
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"` // default: 30s
}

// StorageConfig holds identity store settings.
type StorageConfig struct {
	Type     string         `yaml:"type"` // "memory" or "postgres", default: "memory"
	Postgres PostgresConfig `yaml:"postgres"`

	// Seed declares accounts and keys for the memory store, so the gateway
	// runs without PostgreSQL in development.
	Seed SeedConfig `yaml:"seed"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"`         // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`        // default: 25
	MigrateOnStart bool   `yaml:"migrate_on_start"` // default: false
}

// SeedConfig declares development identities for the memory store.
type SeedConfig struct {
	Accounts []SeedAccount `yaml:"accounts"`
	Keys     []SeedKey     `yaml:"keys"`
}

// SeedAccount describes a single seeded account.
type SeedAccount struct {
	ID     string `yaml:"id"`
	Email  string `yaml:"email"`
	Name   string `yaml:"name"`
	Active *bool  `yaml:"active"` // default: true
}

// SeedKey describes a single seeded API key. The raw key is hashed at
// startup and never kept in memory.
type SeedKey struct {
	ID          string   `yaml:"id"`
	AccountID   string   `yaml:"account_id"`
	Key         string   `yaml:"key"`
	KeyFile     string   `yaml:"key_file"` // _file variant for key
	Permissions []string `yaml:"permissions"`
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	// TokenSecret is the HMAC secret shared with the session token issuer.
	TokenSecret     string `yaml:"token_secret"`
	TokenSecretFile string `yaml:"token_secret_file"` // _file variant for token_secret

	// TokenIssuer is the expected iss claim. Empty disables issuer checks.
	TokenIssuer string `yaml:"token_issuer"`

	// TokenLeeway tolerates clock skew on expiry checks.
	TokenLeeway time.Duration `yaml:"token_leeway"`

	// BypassEndpoints skip authentication entirely.
	// Default: /healthz, /readyz, /metrics.
	BypassEndpoints []string `yaml:"bypass_endpoints"`
}

// RateLimitConfig holds the post-authentication rate limit hook settings.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`             // default: false
	RequestsPerMinute int  `yaml:"requests_per_minute"` // default: 600
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Type: "memory",
			Postgres: PostgresConfig{
				MaxConns: 25,
			},
		},
		RateLimit: RateLimitConfig{
			Enabled:           false,
			RequestsPerMinute: 600,
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}
