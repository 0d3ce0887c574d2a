package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/gigbuddy/gigbuddy/pkg/api"
)

// UserStore is the credential store consumed by the authenticators and
// the session issuer. Email lookups are case-insensitive; emails are
// unique under that comparison.
type UserStore interface {
	// FindByEmail returns the user whose email matches case-insensitively,
	// or ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*api.User, error)

	// FindByID returns the user with the given ID, or ErrNotFound.
	FindByID(ctx context.Context, id uuid.UUID) (*api.User, error)

	// Save persists a new user. Returns ErrConflict when the email is
	// already taken (case-insensitively).
	Save(ctx context.Context, user *api.User) error
}

// CounterStore backs the request-counting middleware. Increment adds one
// to the named counter and returns the new value.
type CounterStore interface {
	Increment(ctx context.Context, key string) (int64, error)
}
