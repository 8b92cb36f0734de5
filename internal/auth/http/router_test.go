package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authdomain "github.com/blogsphere/backend/internal/auth/domain"
	"github.com/blogsphere/backend/internal/auth/service"
	"github.com/blogsphere/backend/internal/common/constants"
	"github.com/blogsphere/backend/internal/common/dto"
	commonerrors "github.com/blogsphere/backend/internal/common/errors"
	commonhttp "github.com/blogsphere/backend/internal/common/http"
	"github.com/blogsphere/backend/internal/common/logger"
	userdomain "github.com/blogsphere/backend/internal/user/domain"
)

type mockSessions struct {
	registerFunc func(ctx context.Context, input service.RegisterInput) (service.AuthResult, error)
	loginFunc    func(ctx context.Context, input service.LoginInput) (service.AuthResult, error)
	refreshFunc  func(ctx context.Context, refreshToken string) (service.AuthResult, error)
	logoutFunc   func(ctx context.Context, refreshToken string) error
}

func (m *mockSessions) Register(ctx context.Context, input service.RegisterInput) (service.AuthResult, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, input)
	}
	return testResult(), nil
}

func (m *mockSessions) Login(ctx context.Context, input service.LoginInput) (service.AuthResult, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, input)
	}
	return testResult(), nil
}

func (m *mockSessions) Refresh(ctx context.Context, refreshToken string) (service.AuthResult, error) {
	if m.refreshFunc != nil {
		return m.refreshFunc(ctx, refreshToken)
	}
	return testResult(), nil
}

func (m *mockSessions) Logout(ctx context.Context, refreshToken string) error {
	if m.logoutFunc != nil {
		return m.logoutFunc(ctx, refreshToken)
	}
	return nil
}

func testResult() service.AuthResult {
	return service.AuthResult{
		User: userdomain.Summary{
			ID:       "7f9c1d7e-4b1a-4c56-9a0e-3f0e8f1a2b3c",
			Username: "alice1",
			Name:     "Alice",
			Email:    "alice@example.com",
		},
		Session: authdomain.Session{
			UserID:       "7f9c1d7e-4b1a-4c56-9a0e-3f0e8f1a2b3c",
			AccessToken:  "access-token",
			RefreshToken: "refresh-token",
		},
	}
}

func passAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(commonhttp.WithUserID(r.Context(), "7f9c1d7e-4b1a-4c56-9a0e-3f0e8f1a2b3c")))
	})
}

func newTestMux(sessions Sessions) *http.ServeMux {
	mux := http.NewServeMux()
	NewHandler(Deps{
		Sessions:    sessions,
		RequireAuth: passAuth,
		Log:         logger.NewDiscard(),
	}, Config{
		CookieMaxAge:   24 * time.Hour,
		RequestTimeout: time.Second,
	}).Routes(mux)
	return mux
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestRegister_Created(t *testing.T) {
	var got service.RegisterInput
	mux := newTestMux(&mockSessions{
		registerFunc: func(ctx context.Context, input service.RegisterInput) (service.AuthResult, error) {
			got = input
			return testResult(), nil
		},
	})

	body := `{"username":"alice1","name":"Alice","email":"alice@example.com","password":"Passw0rd","confirmPassword":"Passw0rd"}`
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Passw0rd", got.ConfirmPassword)

	var resp dto.AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Auth)
	require.NotNil(t, resp.User)
	assert.Equal(t, "alice1", resp.User.Username)

	access := cookieByName(rec, constants.AccessTokenCookie)
	require.NotNil(t, access)
	assert.Equal(t, "access-token", access.Value)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, access.SameSite)
	assert.Equal(t, 86400, access.MaxAge)

	refresh := cookieByName(rec, constants.RefreshTokenCookie)
	require.NotNil(t, refresh)
	assert.Equal(t, "refresh-token", refresh.Value)
}

func TestRegister_Conflict(t *testing.T) {
	mux := newTestMux(&mockSessions{
		registerFunc: func(ctx context.Context, input service.RegisterInput) (service.AuthResult, error) {
			return service.AuthResult{}, service.ErrEmailTaken
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{"username":"alice1"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	var env commonhttp.ErrorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, "EMAIL_TAKEN", env.Code)
	assert.Nil(t, cookieByName(rec, constants.AccessTokenCookie))
}

func TestRegister_InvalidJSON(t *testing.T) {
	mux := newTestMux(&mockSessions{
		registerFunc: func(ctx context.Context, input service.RegisterInput) (service.AuthResult, error) {
			t.Error("service must not be called")
			return service.AuthResult{}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	mux := newTestMux(&mockSessions{
		loginFunc: func(ctx context.Context, input service.LoginInput) (service.AuthResult, error) {
			return service.AuthResult{}, service.ErrInvalidCredentials
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"alice@example.com","password":"Wrong1234"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_Validation(t *testing.T) {
	mux := newTestMux(&mockSessions{
		loginFunc: func(ctx context.Context, input service.LoginInput) (service.AuthResult, error) {
			return service.AuthResult{}, commonerrors.ErrValidation.WithDetails(map[string]any{"email": "is required"})
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var env commonhttp.ErrorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, "is required", env.Details["email"])
}

func TestLogin_MethodNotAllowed(t *testing.T) {
	mux := newTestMux(&mockSessions{})

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRefresh_ReadsCookie(t *testing.T) {
	var got string
	mux := newTestMux(&mockSessions{
		refreshFunc: func(ctx context.Context, refreshToken string) (service.AuthResult, error) {
			got = refreshToken
			return testResult(), nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/refresh", nil)
	req.AddCookie(&http.Cookie{Name: constants.RefreshTokenCookie, Value: "old-refresh"})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "old-refresh", got)
	assert.Equal(t, "refresh-token", cookieByName(rec, constants.RefreshTokenCookie).Value)
}

func TestRefresh_MissingCookie(t *testing.T) {
	mux := newTestMux(&mockSessions{})

	req := httptest.NewRequest(http.MethodGet, "/refresh", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var env commonhttp.ErrorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, commonhttp.CodeMissingRefreshToken, env.Code)
}

func TestRefresh_Rejected(t *testing.T) {
	mux := newTestMux(&mockSessions{
		refreshFunc: func(ctx context.Context, refreshToken string) (service.AuthResult, error) {
			return service.AuthResult{}, service.ErrInvalidRefreshToken
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/refresh", nil)
	req.AddCookie(&http.Cookie{Name: constants.RefreshTokenCookie, Value: "stale"})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout_ClearsCookies(t *testing.T) {
	var got string
	mux := newTestMux(&mockSessions{
		logoutFunc: func(ctx context.Context, refreshToken string) error {
			got = refreshToken
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: constants.RefreshTokenCookie, Value: "current"})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "current", got)

	var resp dto.AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Auth)
	assert.Nil(t, resp.User)

	for _, name := range []string{constants.AccessTokenCookie, constants.RefreshTokenCookie} {
		c := cookieByName(rec, name)
		require.NotNil(t, c, name)
		assert.Empty(t, c.Value)
		assert.Less(t, c.MaxAge, 0)
	}
}

func TestLogout_RequiresAuth(t *testing.T) {
	mux := http.NewServeMux()
	NewHandler(Deps{
		Sessions: &mockSessions{},
		RequireAuth: func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			})
		},
		Log: logger.NewDiscard(),
	}, Config{}).Routes(mux)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
