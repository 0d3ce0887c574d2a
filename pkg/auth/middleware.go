package auth

import (
	"log/slog"
	"net/http"

	"github.com/gigbuddy/gigbuddy/pkg/observability"
)

// Middleware runs the chain and injects the principal into the request
// context when a strategy succeeds. It never rejects a request: handlers
// that need a principal sit behind Guard.
func Middleware(chain *Chain) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result := chain.Authenticate(r.Context(), r)

			if result.Decision == Match {
				slog.Debug("authentication succeeded",
					"subject", result.Principal.Email,
					"path", r.URL.Path,
				)
				r = r.WithContext(WithPrincipal(r.Context(), result.Principal))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Guard rejects requests that carry no authenticated principal with a
// 401 response. Handlers behind it can call Require without checking
// for an error.
func Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := Require(r.Context()); err != nil {
			observability.AuthRejectedTotal.Inc()
			slog.Warn("unauthenticated request rejected",
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"type":"unauthorized","message":"unauthorized"}}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
