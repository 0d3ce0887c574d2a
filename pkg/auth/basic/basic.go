// Package basic provides the password strategy: it authenticates HTTP
// Basic credentials against the user store with a bcrypt comparison.
//
// Outcomes:
//   - NoMatch: no Basic credentials, unknown email, or wrong password.
//     All three look identical to the caller; the unknown-email path
//     burns a dummy bcrypt comparison so it costs the same as a
//     mismatch.
//   - Failed: the user store errored for a reason other than not-found.
package basic

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gigbuddy/gigbuddy/pkg/auth"
	"github.com/gigbuddy/gigbuddy/pkg/observability"
	"github.com/gigbuddy/gigbuddy/pkg/password"
	"github.com/gigbuddy/gigbuddy/pkg/storage"
)

// Authenticator validates HTTP Basic credentials.
type Authenticator struct {
	users  storage.UserStore
	hasher *password.Hasher
}

// New creates a Basic authenticator backed by the given store and hasher.
func New(users storage.UserStore, hasher *password.Hasher) *Authenticator {
	return &Authenticator{users: users, hasher: hasher}
}

// Authenticate extracts Basic credentials, looks the account up by email
// (case-insensitively), and verifies the password.
func (a *Authenticator) Authenticate(ctx context.Context, r *http.Request) auth.Result {
	email, pass, ok := r.BasicAuth()
	if !ok {
		return auth.Result{Decision: auth.NoMatch}
	}

	user, err := a.users.FindByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		a.hasher.DummyCompare(pass)
		observability.AuthAttemptsTotal.WithLabelValues("basic", "no_match").Inc()
		return auth.Result{Decision: auth.NoMatch}
	}
	if err != nil {
		observability.AuthAttemptsTotal.WithLabelValues("basic", "error").Inc()
		return auth.Result{Decision: auth.Failed, Err: fmt.Errorf("looking up %q: %w", email, err)}
	}

	if !a.hasher.Verify(pass, user.PasswordHash) {
		observability.AuthAttemptsTotal.WithLabelValues("basic", "no_match").Inc()
		return auth.Result{Decision: auth.NoMatch}
	}

	observability.AuthAttemptsTotal.WithLabelValues("basic", "match").Inc()
	return auth.Result{Decision: auth.Match, Principal: user}
}
