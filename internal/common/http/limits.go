package http

import (
	"errors"
	"net/http"

	"github.com/blogsphere/backend/internal/common/constants"
)

// MaxRequestSizeMiddleware rejects declared oversize bodies up front and caps
// the rest with http.MaxBytesReader. The limit has to leave room for a base64
// photo, which is about a third larger than the decoded image.
func MaxRequestSizeMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = constants.DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				WriteErrorEnvelope(w, http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "request body too large", nil, TraceIDFromContext(r.Context()))
				return
			}

			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IsBodyTooLarge reports whether err came from a body capped by MaxRequestSizeMiddleware.
func IsBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
