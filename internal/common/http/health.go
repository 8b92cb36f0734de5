package http

import (
	"context"
	"net/http"
	"time"

	"github.com/blogsphere/backend/internal/common/logger"
)

type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

const healthCheckTimeout = 2 * time.Second

func HealthHandler(log *logger.Logger, checks ...HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			WriteErrorEnvelope(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed", nil, "")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		status := map[string]string{"status": "ok"}
		code := http.StatusOK
		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				log.Warnf("health check %s failed: %v", c.Name, err)
				status[c.Name] = "unavailable"
				status["status"] = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			status[c.Name] = "ok"
		}

		WriteJSON(w, code, status)
	}
}
