// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the gigbuddy server, including the per-path request
// counter backed by external storage.
package observability

import "github.com/prometheus/client_golang/prometheus"

// HTTPBuckets defines histogram buckets suited for an auth API,
// ranging from 1ms to 5s (bcrypt verification dominates the tail).
var HTTPBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gigbuddy_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gigbuddy_request_duration_seconds",
			Help:    "Request duration",
			Buckets: HTTPBuckets,
		},
		[]string{"method"},
	)

	// AuthAttemptsTotal counts strategy outcomes by strategy and result.
	AuthAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gigbuddy_auth_attempts_total",
			Help: "Authentication strategy outcomes",
		},
		[]string{"strategy", "outcome"},
	)

	// AuthRejectedTotal counts requests the guard rejected.
	AuthRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gigbuddy_auth_rejected_total",
			Help: "Requests rejected by the auth guard",
		},
	)

	// LoginsTotal counts login attempts by outcome (issued/rejected).
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gigbuddy_logins_total",
			Help: "Login attempts",
		},
		[]string{"outcome"},
	)

	// PathRequestsTotal mirrors the external per-path request counter.
	PathRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gigbuddy_path_requests_total",
			Help: "Requests per path",
		},
		[]string{"path"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		AuthAttemptsTotal,
		AuthRejectedTotal,
		LoginsTotal,
		PathRequestsTotal,
	)
}
