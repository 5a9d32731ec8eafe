package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	// server.port must be positive.
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	// storage.type must be a known value.
	switch c.Storage.Type {
	case "memory", "postgres":
		// valid
	default:
		errs = append(errs, fmt.Errorf("storage.type must be \"memory\" or \"postgres\", got %q", c.Storage.Type))
	}

	// If storage.type is "postgres", DSN or DSNFile must be set.
	if c.Storage.Type == "postgres" {
		if c.Storage.Postgres.DSN == "" && c.Storage.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("storage.postgres.dsn or storage.postgres.dsn_file is required when storage.type is \"postgres\""))
		}
	}

	// The session token scheme cannot run without a signing secret.
	if c.Auth.TokenSecret == "" && c.Auth.TokenSecretFile == "" {
		errs = append(errs, fmt.Errorf("auth.token_secret or auth.token_secret_file is required"))
	}

	// Seed entries must be complete and reference declared accounts.
	accountIDs := make(map[string]bool, len(c.Storage.Seed.Accounts))
	for i, a := range c.Storage.Seed.Accounts {
		if a.ID == "" {
			errs = append(errs, fmt.Errorf("storage.seed.accounts[%d].id is required", i))
		}
		accountIDs[a.ID] = true
	}
	for i, k := range c.Storage.Seed.Keys {
		if k.Key == "" && k.KeyFile == "" {
			errs = append(errs, fmt.Errorf("storage.seed.keys[%d].key or key_file is required", i))
		}
		if k.AccountID == "" {
			errs = append(errs, fmt.Errorf("storage.seed.keys[%d].account_id is required", i))
		} else if len(accountIDs) > 0 && !accountIDs[k.AccountID] {
			errs = append(errs, fmt.Errorf("storage.seed.keys[%d].account_id %q does not match a seeded account", i, k.AccountID))
		}
	}

	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, fmt.Errorf("rate_limit.requests_per_minute must be > 0 when enabled, got %d", c.RateLimit.RequestsPerMinute))
	}

	if c.Observability.Metrics.Enabled && !strings.HasPrefix(c.Observability.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("observability.metrics.path must start with \"/\", got %q", c.Observability.Metrics.Path))
	}

	return errors.Join(errs...)
}
