// Package postgres provides PostgreSQL implementations of storage.UserStore
// and storage.CounterStore using pgx/v5 connection pooling.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigbuddy/gigbuddy/pkg/api"
	"github.com/gigbuddy/gigbuddy/pkg/storage"
)

// Store is a PostgreSQL-backed UserStore and CounterStore.
type Store struct {
	pool *pgxpool.Pool
}

// Compile-time interface checks.
var (
	_ storage.UserStore    = (*Store)(nil)
	_ storage.CounterStore = (*Store)(nil)
)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// FindByEmail returns the user whose email matches case-insensitively.
func (s *Store) FindByEmail(ctx context.Context, email string) (*api.User, error) {
	return s.findUser(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE LOWER(email) = LOWER($1)`,
		email)
}

// FindByID returns the user with the given ID.
func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*api.User, error) {
	return s.findUser(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE id = $1`,
		id)
}

func (s *Store) findUser(ctx context.Context, query string, arg any) (*api.User, error) {
	var u api.User
	err := s.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &u, nil
}

// Save persists a new user. The unique index on LOWER(email) enforces
// case-insensitive uniqueness; a violation maps to ErrConflict.
func (s *Store) Save(ctx context.Context, user *api.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		user.ID, user.Email, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// Increment atomically adds one to the named counter and returns the new value.
func (s *Store) Increment(ctx context.Context, key string) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO request_counts (key, count) VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET count = request_counts.count + 1
		RETURNING count
	`, key).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("incrementing counter: %w", err)
	}
	return count, nil
}

// isUniqueViolation checks for a PostgreSQL unique violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
