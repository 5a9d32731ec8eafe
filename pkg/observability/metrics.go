// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the pforte gateway.
package observability

import "github.com/prometheus/client_golang/prometheus"

// AuthBuckets defines histogram buckets suited for authentication latencies,
// ranging from 1ms to 5s (a single store lookup per request).
var AuthBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5}

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pforte_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pforte_request_duration_seconds",
			Help:    "Request duration",
			Buckets: AuthBuckets,
		},
		[]string{"method"},
	)

	// AuthSuccessTotal counts requests that passed authentication.
	AuthSuccessTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pforte_auth_success_total",
			Help: "Successful authentications",
		},
	)

	// AuthRejectionsTotal counts pipeline rejections by stable code.
	AuthRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pforte_auth_rejections_total",
			Help: "Authentication rejections",
		},
		[]string{"code"},
	)

	// PermissionDeniedTotal counts permission gate denials by capability.
	PermissionDeniedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pforte_permission_denied_total",
			Help: "Permission gate denials",
		},
		[]string{"permission"},
	)

	// KeyTouchFailuresTotal counts failed last-used timestamp updates.
	// These are best-effort writes; failures never affect the request.
	KeyTouchFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pforte_key_touch_failures_total",
			Help: "Failed API key last-used updates",
		},
	)

	// RateLimitRejectedTotal counts requests rejected by the rate limiter.
	RateLimitRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pforte_ratelimit_rejected_total",
			Help: "Rate limit rejections",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		AuthSuccessTotal,
		AuthRejectionsTotal,
		PermissionDeniedTotal,
		KeyTouchFailuresTotal,
		RateLimitRejectedTotal,
	)
}
