package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, PFORTE_CONFIG env, ./config.yaml, /etc/pforte/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	// Start with defaults.
	cfg := Defaults()

	// Discover and load YAML config file.
	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	// Apply environment variable overrides.
	applyEnvOverrides(&cfg)

	// Resolve _file references.
	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	// Validate.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. PFORTE_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/pforte/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	// Explicit path takes priority.
	if configPath != "" {
		return configPath
	}

	// Check PFORTE_CONFIG env var.
	if envPath := os.Getenv("PFORTE_CONFIG"); envPath != "" {
		return envPath
	}

	// Check common locations.
	candidates := []string{
		"config.yaml",
		"/etc/pforte/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps PFORTE_* environment variables to config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PFORTE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PFORTE_STORAGE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("PFORTE_POSTGRES_DSN"); v != "" {
		cfg.Storage.Postgres.DSN = v
	}
	if v := os.Getenv("PFORTE_TOKEN_SECRET"); v != "" {
		cfg.Auth.TokenSecret = v
	}
	if v := os.Getenv("PFORTE_TOKEN_ISSUER"); v != "" {
		cfg.Auth.TokenIssuer = v
	}
	if v := os.Getenv("PFORTE_TOKEN_LEEWAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Auth.TokenLeeway = d
		}
	}
	if v := os.Getenv("PFORTE_RATELIMIT_RPM"); v != "" {
		if rpm, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit.Enabled = true
			cfg.RateLimit.RequestsPerMinute = rpm
		}
	}
}

// resolveFileReferences loads the contents of _file suffix fields into
// their plain counterparts. The plain field wins when both are set.
func resolveFileReferences(cfg *Config) error {
	if cfg.Auth.TokenSecret == "" && cfg.Auth.TokenSecretFile != "" {
		secret, err := readSecretFile(cfg.Auth.TokenSecretFile)
		if err != nil {
			return fmt.Errorf("auth.token_secret_file: %w", err)
		}
		cfg.Auth.TokenSecret = secret
	}

	if cfg.Storage.Postgres.DSN == "" && cfg.Storage.Postgres.DSNFile != "" {
		dsn, err := readSecretFile(cfg.Storage.Postgres.DSNFile)
		if err != nil {
			return fmt.Errorf("storage.postgres.dsn_file: %w", err)
		}
		cfg.Storage.Postgres.DSN = dsn
	}

	for i := range cfg.Storage.Seed.Keys {
		k := &cfg.Storage.Seed.Keys[i]
		if k.Key == "" && k.KeyFile != "" {
			key, err := readSecretFile(k.KeyFile)
			if err != nil {
				return fmt.Errorf("storage.seed.keys[%d].key_file: %w", i, err)
			}
			k.Key = key
		}
	}

	return nil
}

// readSecretFile reads a file and trims trailing whitespace, so secrets
// written with a trailing newline round-trip cleanly.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
