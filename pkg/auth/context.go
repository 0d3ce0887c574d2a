package auth

import (
	"context"

	"github.com/gigbuddy/gigbuddy/pkg/api"
)

// principalKey is a private type for the principal context key.
type principalKey struct{}

// WithPrincipal stores the authenticated principal in the context.
func WithPrincipal(ctx context.Context, p *api.User) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext retrieves the authenticated principal.
// Returns nil if no strategy established one.
func PrincipalFromContext(ctx context.Context) *api.User {
	if v, ok := ctx.Value(principalKey{}).(*api.User); ok {
		return v
	}
	return nil
}
