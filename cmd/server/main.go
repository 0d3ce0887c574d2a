// Command server runs the gigbuddy authentication service.
//
// Configuration is layered: built-in defaults, an optional YAML file
// (-config flag, GIGBUDDY_CONFIG, ./config.yaml, /etc/gigbuddy/config.yaml),
// then environment variables. JWT_SIGNING_SECRET (or its _file variant)
// is required; startup fails without it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gigbuddy/gigbuddy/pkg/auth"
	"github.com/gigbuddy/gigbuddy/pkg/auth/basic"
	"github.com/gigbuddy/gigbuddy/pkg/auth/bearer"
	"github.com/gigbuddy/gigbuddy/pkg/config"
	"github.com/gigbuddy/gigbuddy/pkg/observability"
	"github.com/gigbuddy/gigbuddy/pkg/password"
	"github.com/gigbuddy/gigbuddy/pkg/session"
	"github.com/gigbuddy/gigbuddy/pkg/storage"
	"github.com/gigbuddy/gigbuddy/pkg/storage/memory"
	"github.com/gigbuddy/gigbuddy/pkg/storage/postgres"
	"github.com/gigbuddy/gigbuddy/pkg/token"
	"github.com/gigbuddy/gigbuddy/pkg/transport"
	transporthttp "github.com/gigbuddy/gigbuddy/pkg/transport/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage backend.
	var users storage.UserStore
	var counters storage.CounterStore
	switch cfg.Storage.Type {
	case "postgres":
		store, err := postgres.New(ctx, postgres.Config{
			DSN:            cfg.Storage.Postgres.DSN,
			MaxConns:       cfg.Storage.Postgres.MaxConns,
			MigrateOnStart: cfg.Storage.Postgres.MigrateOnStart,
		})
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		defer store.Close()
		users, counters = store, store
		logger.Info("storage enabled", "type", "postgres")
	default:
		store := memory.New()
		users, counters = store, store
		logger.Info("storage enabled", "type", "memory")
	}

	// Credential and token plumbing.
	hasher := password.New(cfg.Auth.BcryptCost)

	codec, err := token.NewCodec([]byte(cfg.Auth.SigningSecret), cfg.Auth.Issuer)
	if err != nil {
		return fmt.Errorf("creating token codec: %w", err)
	}

	issuer, err := session.New(users, hasher, codec, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating session issuer: %w", err)
	}

	// Basic credentials run before bearer tokens; the first match wins.
	chain := &auth.Chain{
		Strategies: []auth.Authenticator{
			basic.New(users, hasher),
			bearer.New(users, codec),
		},
		Logger: logger,
	}

	adapterCfg := transporthttp.DefaultConfig()
	if !cfg.Observability.Metrics.Enabled {
		adapterCfg.MetricsPath = ""
	} else if cfg.Observability.Metrics.Path != "" {
		adapterCfg.MetricsPath = cfg.Observability.Metrics.Path
	}
	adapter := transporthttp.NewAdapter(users, hasher, issuer, chain, adapterCfg)

	handler := transport.Chain(
		transport.Recovery,
		transport.RequestID,
		transport.Logging(logger),
		observability.MetricsMiddleware,
		observability.CountRequests(counters, logger),
	)(adapter.Handler())

	serverCfg := transporthttp.DefaultServerConfig()
	serverCfg.Port = cfg.Server.Port
	serverCfg.ReadTimeout = cfg.Server.ReadTimeout
	serverCfg.WriteTimeout = cfg.Server.WriteTimeout

	srv := transporthttp.NewServer(serverCfg, handler, logger)

	logger.Info("gigbuddy server starting",
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Type,
		"token_ttl", cfg.Auth.TokenTTL,
	)
	return srv.Start(ctx, 10*time.Second)
}
