package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure. A missing
// signing secret is a startup failure, never a per-request one.
func (c *Config) Validate() error {
	var errs []error

	if c.Auth.SigningSecret == "" {
		errs = append(errs, fmt.Errorf("auth.signing_secret is required (set JWT_SIGNING_SECRET or auth.signing_secret_file)"))
	}

	if c.Auth.Issuer == "" {
		errs = append(errs, fmt.Errorf("auth.issuer is required"))
	}

	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("auth.token_ttl must be > 0, got %v", c.Auth.TokenTTL))
	}

	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	switch c.Storage.Type {
	case "memory", "postgres":
		// valid
	default:
		errs = append(errs, fmt.Errorf("storage.type must be \"memory\" or \"postgres\", got %q", c.Storage.Type))
	}

	if c.Storage.Type == "postgres" {
		if c.Storage.Postgres.DSN == "" && c.Storage.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("storage.postgres.dsn or storage.postgres.dsn_file is required when storage.type is \"postgres\""))
		}
	}

	return errors.Join(errs...)
}
