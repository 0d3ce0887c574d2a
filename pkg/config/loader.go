package config

import (
	"fmt"
	"net/url"
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
//  2. YAML config file (explicit path, GIGBUDDY_CONFIG env, ./config.yaml, /etc/gigbuddy/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. GIGBUDDY_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/gigbuddy/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("GIGBUDDY_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"config.yaml",
		"/etc/gigbuddy/config.yaml",
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

// applyEnvOverrides maps environment variables to config fields. The
// JWT_SIGNING_SECRET and DATABASE_* names are kept for compatibility
// with existing deployments.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("JWT_SIGNING_SECRET"); v != "" {
		cfg.Auth.SigningSecret = v
	}
	if v := os.Getenv("GIGBUDDY_ISSUER"); v != "" {
		cfg.Auth.Issuer = v
	}
	if v := os.Getenv("GIGBUDDY_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Auth.TokenTTL = d
		}
	}
	if v := os.Getenv("GIGBUDDY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("GIGBUDDY_STORAGE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("GIGBUDDY_DATABASE_DSN"); v != "" {
		cfg.Storage.Type = "postgres"
		cfg.Storage.Postgres.DSN = v
	}

	// Legacy discrete DATABASE_* variables compose into a DSN.
	if dsn := dsnFromDatabaseEnv(); dsn != "" {
		cfg.Storage.Type = "postgres"
		cfg.Storage.Postgres.DSN = dsn
	}
}

// dsnFromDatabaseEnv builds a postgres DSN from the legacy DATABASE_*
// variables. Returns empty string unless username, password, and name
// are all present.
func dsnFromDatabaseEnv() string {
	user := os.Getenv("DATABASE_USERNAME")
	pass := os.Getenv("DATABASE_PASSWORD")
	name := os.Getenv("DATABASE_NAME")
	if user == "" || pass == "" || name == "" {
		return ""
	}

	host := os.Getenv("DATABASE_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("DATABASE_PORT")
	if port == "" {
		port = "5432"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		url.QueryEscape(user), url.QueryEscape(pass), host, port, name)
}

// resolveFileReferences loads *_file fields into their plain counterparts.
// The plain value wins if both are set.
func resolveFileReferences(cfg *Config) error {
	if cfg.Auth.SigningSecret == "" && cfg.Auth.SigningSecretFile != "" {
		v, err := readSecretFile(cfg.Auth.SigningSecretFile)
		if err != nil {
			return fmt.Errorf("auth.signing_secret_file: %w", err)
		}
		cfg.Auth.SigningSecret = v
	}

	if cfg.Storage.Postgres.DSN == "" && cfg.Storage.Postgres.DSNFile != "" {
		v, err := readSecretFile(cfg.Storage.Postgres.DSNFile)
		if err != nil {
			return fmt.Errorf("storage.postgres.dsn_file: %w", err)
		}
		cfg.Storage.Postgres.DSN = v
	}

	return nil
}

// readSecretFile reads a file and trims trailing whitespace, so files
// with a trailing newline work as expected.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
