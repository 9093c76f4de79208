// Package metrics defines the Prometheus collectors for the authentication kernel. Collectors register with
// the default registry at init via promauto; Handler serves them.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "marketplace_auth"

// LoginsTotal counts login attempts by outcome.
// Labels:
//   - portal: admin, customer, supplier, fieldflow
//   - outcome: "success" or the failure reason (e.g. "DEVICE_MISMATCH")
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by portal and outcome.",
	},
	[]string{"portal", "outcome"},
)

// RefreshesTotal counts refresh calls by outcome ("success" or an error kind).
var RefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refreshes_total",
		Help:      "Total number of token refresh calls, by portal and outcome.",
	},
	[]string{"portal", "outcome"},
)

// SessionsInvalidatedTotal counts sessions flipped inactive, by reason (NEW_LOGIN, LOGOUT, ...).
var SessionsInvalidatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_invalidated_total",
		Help:      "Total number of sessions invalidated, by portal and reason.",
	},
	[]string{"portal", "reason"},
)

// AuthenticationsTotal counts session validation calls from request authentication.
// Label result is "ok" or "unauthenticated".
var AuthenticationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authentications_total",
		Help:      "Total number of request authentications, by portal and result.",
	},
	[]string{"portal", "result"},
)

// LoginDuration measures login latency end to end, including rejected attempts.
var LoginDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "login_duration_seconds",
		Help:      "Duration of login calls.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"portal"},
)

// RPCsTotal counts handled gRPC calls by method and status code.
var RPCsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "grpc_requests_total",
		Help:      "Total number of gRPC requests, by method and code.",
	},
	[]string{"method", "code"},
)

// ObserveLogin records one login outcome and its duration.
func ObserveLogin(portal, outcome string, started time.Time) {
	LoginsTotal.WithLabelValues(portal, outcome).Inc()
	LoginDuration.WithLabelValues(portal).Observe(time.Since(started).Seconds())
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// NewServer returns an HTTP server exposing /metrics on addr.
func NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
