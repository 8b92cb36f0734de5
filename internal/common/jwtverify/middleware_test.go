package jwtverify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogsphere/backend/internal/common/constants"
	commonhttp "github.com/blogsphere/backend/internal/common/http"
	"github.com/blogsphere/backend/internal/common/logger"
)

type verifierFunc func(ctx context.Context, accessToken string) (string, error)

func (f verifierFunc) VerifySession(ctx context.Context, accessToken string) (string, error) {
	return f(ctx, accessToken)
}

func newProtected(t *testing.T, verifier Verifier) http.Handler {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := FromContext(r.Context())
		if !ok {
			t.Error("expected user id in context")
		}
		w.Write([]byte(userID))
	})
	return Middleware(verifier, logger.NewDiscard())(next)
}

func acceptOnly(valid string) verifierFunc {
	return func(ctx context.Context, accessToken string) (string, error) {
		if accessToken != valid {
			return "", errors.New("invalid token")
		}
		return "user-1", nil
	}
}

func TestMiddleware_Cookie(t *testing.T) {
	h := newProtected(t, acceptOnly("good"))

	req := httptest.NewRequest(http.MethodGet, "/blog/all", nil)
	req.AddCookie(&http.Cookie{Name: constants.AccessTokenCookie, Value: "good"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())
}

func TestMiddleware_BearerFallback(t *testing.T) {
	h := newProtected(t, acceptOnly("good"))

	req := httptest.NewRequest(http.MethodGet, "/blog/all", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddleware_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		prepare  func(r *http.Request)
		wantCode string
	}{
		{
			name:     "missing",
			prepare:  func(r *http.Request) {},
			wantCode: commonhttp.CodeMissingAuthorization,
		},
		{
			name: "invalid cookie",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: constants.AccessTokenCookie, Value: "bad"})
			},
			wantCode: commonhttp.CodeInvalidToken,
		},
		{
			name:     "basic auth",
			prepare:  func(r *http.Request) { r.Header.Set("Authorization", "Basic Zm9vOmJhcg==") },
			wantCode: commonhttp.CodeMissingAuthorization,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Middleware(acceptOnly("good"), logger.NewDiscard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("next handler must not run")
			}))

			req := httptest.NewRequest(http.MethodGet, "/blog/all", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			var env commonhttp.ErrorEnvelope
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
			assert.Equal(t, tt.wantCode, env.Code)
			assert.Equal(t, "unauthorized", env.Message)
		})
	}
}
