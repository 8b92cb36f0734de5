package httpmetrics

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/blogsphere/backend/internal/observability/metrics"
)

type Collector struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func New() *Collector {
	return &Collector{}
}

// Wrap records request count, in-flight gauge and latency. The path label is
// the matched ServeMux pattern when the request reached a route, otherwise the
// normalized URL path.
func (c *Collector) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.APIRequestsInFlight.Inc()
		defer metrics.APIRequestsInFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := routeLabel(r)
		statusClass := fmt.Sprintf("%dxx", rec.status/100)
		metrics.APIRequestsTotal.WithLabelValues(r.Method, path).Inc()
		metrics.APIRequestDurationSeconds.WithLabelValues(r.Method, path, statusClass).Observe(time.Since(start).Seconds())
	})
}

func routeLabel(r *http.Request) string {
	if r.Pattern == "" {
		return NormalizePath(r.URL.Path)
	}
	// "GET /blog/{id}" -> "/blog/{id}"
	if _, path, ok := strings.Cut(r.Pattern, " "); ok {
		return path
	}
	return r.Pattern
}
