package jwtverify

import (
	"context"
	"net/http"
	"strings"

	"github.com/blogsphere/backend/internal/common/constants"
	commonhttp "github.com/blogsphere/backend/internal/common/http"
	"github.com/blogsphere/backend/internal/common/logger"
)

type Verifier interface {
	VerifySession(ctx context.Context, accessToken string) (string, error)
}

// Middleware authenticates the request from the accessToken cookie, falling
// back to an Authorization: Bearer header. The user id is put in the context.
func Middleware(verifier Verifier, log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := commonhttp.TraceIDFromContext(r.Context())

			tokenString := tokenFromRequest(r)
			if tokenString == "" {
				log.Warnf("jwt auth failed path=%s: missing access token", r.URL.Path)
				commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingAuthorization, "unauthorized", nil, traceID)
				return
			}

			userID, err := verifier.VerifySession(r.Context(), tokenString)
			if err != nil {
				log.Warnf("jwt auth failed path=%s: %v", r.URL.Path, err)
				commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeInvalidToken, "unauthorized", nil, traceID)
				return
			}

			ctx := commonhttp.WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func FromContext(ctx context.Context) (string, bool) {
	return commonhttp.UserIDFromContext(ctx)
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(constants.AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	raw := r.Header.Get("Authorization")
	if strings.HasPrefix(raw, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
	}
	return ""
}
