package http

import (
	"net/http"

	"github.com/blogsphere/backend/internal/common/httpmetrics"
	"github.com/blogsphere/backend/internal/common/logger"
)

// BuildBaseHandler wraps handler with the shared middleware chain.
// Request size is capped at maxRequestSize bytes; zero selects the default.
func BuildBaseHandler(log *logger.Logger, maxRequestSize int64, handler http.Handler) http.Handler {
	collector := httpmetrics.New()
	recovery := RecoveryMiddleware(log)
	maxSize := MaxRequestSizeMiddleware(maxRequestSize)
	csp := ContentSecurityPolicyMiddleware("")

	return SecurityHeadersMiddleware(csp(TraceIDMiddleware(recovery(maxSize(collector.Wrap(handler))))))
}
