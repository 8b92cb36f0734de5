package http

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/blogsphere/backend/internal/common/logger"
)

// RecoveryMiddleware turns a handler panic into a 500 envelope. http.ErrAbortHandler
// is re-raised so the server can abort the connection as intended.
func RecoveryMiddleware(log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				log.WithFields(r.Context(), logger.Fields{
					"action": "panic_recovered",
					"method": r.Method,
					"path":   r.URL.Path,
				}).Criticalf("panic recovered: %v\n%s", rec, debug.Stack())
				WriteErrorEnvelope(w, http.StatusInternalServerError, CodeInternal, "internal server error", nil, TraceIDFromContext(r.Context()))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
