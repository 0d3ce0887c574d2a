// Package session issues signed session tokens after password
// verification. It is the only place a token is ever minted.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gigbuddy/gigbuddy/pkg/observability"
	"github.com/gigbuddy/gigbuddy/pkg/password"
	"github.com/gigbuddy/gigbuddy/pkg/storage"
	"github.com/gigbuddy/gigbuddy/pkg/token"
)

// ErrInvalidCredentials is returned for both an unknown email and a wrong
// password. Collapsing the two prevents callers from probing which
// accounts exist.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Issuer verifies login credentials and mints session tokens.
type Issuer struct {
	users  storage.UserStore
	hasher *password.Hasher
	codec  *token.Codec
	ttl    time.Duration
	now    func() time.Time
}

// New creates an Issuer. ttl is the validity window of issued tokens.
func New(users storage.UserStore, hasher *password.Hasher, codec *token.Codec, ttl time.Duration) (*Issuer, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %v", ttl)
	}
	return &Issuer{
		users:  users,
		hasher: hasher,
		codec:  codec,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Login verifies the email and password and returns a freshly signed
// token. Unknown email and wrong password both return
// ErrInvalidCredentials; the unknown-email path burns a dummy bcrypt
// comparison so the two are indistinguishable by timing as well.
func (i *Issuer) Login(ctx context.Context, email, plaintext string) (string, error) {
	user, err := i.users.FindByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		i.hasher.DummyCompare(plaintext)
		observability.LoginsTotal.WithLabelValues("rejected").Inc()
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("looking up account: %w", err)
	}

	if !i.hasher.Verify(plaintext, user.PasswordHash) {
		observability.LoginsTotal.WithLabelValues("rejected").Inc()
		return "", ErrInvalidCredentials
	}

	claims := i.codec.NewClaims(user.ID, user.Email, i.now(), i.ttl)
	signed, err := i.codec.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("issuing session token: %w", err)
	}

	observability.LoginsTotal.WithLabelValues("issued").Inc()
	return signed, nil
}
