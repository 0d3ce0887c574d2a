// Package config provides unified configuration for the gigbuddy server.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (GIGBUDDY_ prefix, plus the legacy
//     JWT_SIGNING_SECRET and DATABASE_* names)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the gigbuddy server.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Auth          AuthConfig          `yaml:"auth"`
	Storage       StorageConfig       `yaml:"storage"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`          // default: 8080
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout"` // default: 30s
}

// AuthConfig holds the token issuance settings. The signing secret has no
// default: startup fails without one.
type AuthConfig struct {
	SigningSecret     string        `yaml:"signing_secret"`
	SigningSecretFile string        `yaml:"signing_secret_file"` // _file variant for signing_secret
	Issuer            string        `yaml:"issuer"`              // default: "gigbuddy-server"
	TokenTTL          time.Duration `yaml:"token_ttl"`           // default: 50s
	BcryptCost        int           `yaml:"bcrypt_cost"`         // default: 12
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	Type     string         `yaml:"type"` // "memory" or "postgres", default: "memory"
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"` // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`
	MigrateOnStart bool   `yaml:"migrate_on_start"`
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
//
// The default token TTL is deliberately short since there is no refresh
// mechanism; operators are expected to tune auth.token_ttl for their
// deployment rather than rely on the default.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Auth: AuthConfig{
			Issuer:     "gigbuddy-server",
			TokenTTL:   50 * time.Second,
			BcryptCost: 12,
		},
		Storage: StorageConfig{
			Type: "memory",
			Postgres: PostgresConfig{
				MaxConns: 25,
			},
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}
