package transport

import (
	"log/slog"
	"net/http"

	"github.com/gigbuddy/gigbuddy/pkg/api"
)

// Recovery catches panics in downstream handlers and converts them to
// 500 responses. The server continues to accept new requests after a
// panic is recovered.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered",
					"path", r.URL.Path,
					"panic", rec,
				)
				WriteErrorResponse(w, api.NewServerError("internal server error"), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
