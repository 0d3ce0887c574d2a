package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gigbuddy/gigbuddy/pkg/api"
)

// Decision represents the three possible outcomes of one strategy.
type Decision int

const (
	// Match means the strategy established a principal. The chain stops.
	Match Decision = iota

	// NoMatch means the strategy could not establish a principal, whether
	// because the credentials were absent, unknown, or invalid. The chain
	// continues; no error reaches the caller.
	NoMatch

	// Failed means the strategy hit an internal error (for example the
	// credential store was unreachable). The chain logs it and continues;
	// a failure never authenticates and never rejects on its own.
	Failed
)

// Result carries the outcome of an authentication attempt.
type Result struct {
	Decision  Decision
	Principal *api.User // populated only when Decision == Match
	Err       error     // populated only when Decision == Failed
}

// ErrUnauthenticated is returned by Require when no strategy established
// a principal.
var ErrUnauthenticated = errors.New("authentication required")

// Authenticator examines request credentials and attempts to establish
// a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, r *http.Request) Result
}

// Chain evaluates authenticators in registration order and stops at the
// first Match. A Match is final: later strategies never run, so they can
// never overwrite an established principal. The chain itself never
// errors; it either produces a principal or stays empty.
type Chain struct {
	// Strategies are evaluated left to right.
	Strategies []Authenticator

	// Logger receives diagnostics for Failed outcomes. Defaults to
	// slog.Default.
	Logger *slog.Logger
}

// Authenticate runs the chain.
func (c *Chain) Authenticate(ctx context.Context, r *http.Request) Result {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	for _, strategy := range c.Strategies {
		result := strategy.Authenticate(ctx, r)
		switch result.Decision {
		case Match:
			if result.Principal == nil {
				logger.Error("authenticator reported a match without a principal")
				continue
			}
			return result
		case Failed:
			logger.Warn("authentication strategy failed",
				"path", r.URL.Path,
				"error", result.Err,
			)
		}
	}

	return Result{Decision: NoMatch}
}

// Require is the guard: it returns the principal established for this
// request, or ErrUnauthenticated when the chain produced none. It is
// pure and performs no I/O.
func Require(ctx context.Context) (*api.User, error) {
	p := PrincipalFromContext(ctx)
	if p == nil {
		return nil, ErrUnauthenticated
	}
	return p, nil
}
