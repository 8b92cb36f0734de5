// Package metrics holds every Prometheus collector exported by the API under
// the blogsphere namespace. Collectors register on the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "blogsphere"

// Circuit breaker states as reported by CircuitBreakerState.
const (
	BreakerClosed   = 0
	BreakerOpen     = 1
	BreakerHalfOpen = 2
)

var (
	RateLimitBlocked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_blocked_total",
			Help:      "Requests rejected with 429, by route and limiter",
		},
		[]string{"path", "limiter"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Breaker state per guarded dependency (0=closed, 1=open, 2=half-open)",
		},
		[]string{"breaker"},
	)

	CircuitBreakerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_failures_total",
			Help:      "Failures counted against a breaker, excluding ignored errors",
		},
		[]string{"breaker"},
	)

	DomainErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "domain_errors_total",
			Help:      "Domain errors returned to clients, by category and code",
		},
		[]string{"category", "code", "status"},
	)

	HTTPErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Error responses written by the error handler, by status",
		},
		[]string{"status", "path", "method"},
	)
)
