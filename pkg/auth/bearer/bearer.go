// Package bearer provides the token strategy: it verifies a signed
// bearer token and resolves the principal by the token's uid claim.
//
// The principal lookup uses the uid (stable identifier), not the sub
// (email): an account whose email changed after issuance still resolves,
// and a stale sub can never be used to impersonate another account.
package bearer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gigbuddy/gigbuddy/pkg/auth"
	"github.com/gigbuddy/gigbuddy/pkg/observability"
	"github.com/gigbuddy/gigbuddy/pkg/storage"
	"github.com/gigbuddy/gigbuddy/pkg/token"
)

// Authenticator validates signed bearer tokens.
type Authenticator struct {
	users storage.UserStore
	codec *token.Codec
}

// New creates a bearer authenticator backed by the given store and codec.
func New(users storage.UserStore, codec *token.Codec) *Authenticator {
	return &Authenticator{users: users, codec: codec}
}

// Authenticate extracts the bearer token from the Authorization header,
// verifies it, and looks up the principal by the uid claim. Any
// verification failure, including an expired or foreign-key token, is a
// silent NoMatch; the caller cannot distinguish why.
func (a *Authenticator) Authenticate(ctx context.Context, r *http.Request) auth.Result {
	header := r.Header.Get("Authorization")
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || raw == "" {
		return auth.Result{Decision: auth.NoMatch}
	}

	claims, err := a.codec.Verify(raw)
	if err != nil {
		observability.AuthAttemptsTotal.WithLabelValues("bearer", "no_match").Inc()
		return auth.Result{Decision: auth.NoMatch}
	}

	user, err := a.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		observability.AuthAttemptsTotal.WithLabelValues("bearer", "no_match").Inc()
		return auth.Result{Decision: auth.NoMatch}
	}
	if err != nil {
		observability.AuthAttemptsTotal.WithLabelValues("bearer", "error").Inc()
		return auth.Result{Decision: auth.Failed, Err: fmt.Errorf("looking up uid %s: %w", claims.UserID, err)}
	}

	observability.AuthAttemptsTotal.WithLabelValues("bearer", "match").Inc()
	return auth.Result{Decision: auth.Match, Principal: user}
}
