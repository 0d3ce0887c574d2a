package observability

import (
	"log/slog"
	"net/http"

	"github.com/gigbuddy/gigbuddy/pkg/storage"
)

// CountRequests increments the external per-path counter on every request
// and logs the resulting count. Counter failures are logged and otherwise
// ignored: the counter must never block the main pipeline.
func CountRequests(counters storage.CounterStore, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "request:" + r.URL.Path

			count, err := counters.Increment(r.Context(), key)
			if err != nil {
				logger.Warn("incrementing request counter", "key", key, "error", err)
			} else {
				logger.Debug("request counted", "key", key, "count", count)
			}

			PathRequestsTotal.WithLabelValues(r.URL.Path).Inc()

			next.ServeHTTP(w, r)
		})
	}
}
