package http

import (
	"context"
	"net/http"
	"time"

	"github.com/blogsphere/backend/internal/auth/service"
	"github.com/blogsphere/backend/internal/common/constants"
	"github.com/blogsphere/backend/internal/common/dto"
	commonhttp "github.com/blogsphere/backend/internal/common/http"
	"github.com/blogsphere/backend/internal/common/logger"
	"github.com/blogsphere/backend/internal/common/mapper"
)

type Sessions interface {
	Register(ctx context.Context, input service.RegisterInput) (service.AuthResult, error)
	Login(ctx context.Context, input service.LoginInput) (service.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (service.AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
}

type Middleware = func(http.Handler) http.Handler

type Deps struct {
	Sessions    Sessions
	RequireAuth Middleware
	// RateLimit returns the limiter for a route path; nil disables per-route limits.
	RateLimit func(path string) Middleware
	Log       *logger.Logger
}

type Config struct {
	CookieMaxAge   time.Duration
	CookieSecure   bool
	RequestTimeout time.Duration
}

type Handler struct {
	sessions     Sessions
	requireAuth  Middleware
	rateLimit    func(path string) Middleware
	log          *logger.Logger
	errorHandler *commonhttp.ErrorHandler
	config       Config
}

func NewHandler(deps Deps, config Config) *Handler {
	if config.CookieMaxAge <= 0 {
		config.CookieMaxAge = constants.DefaultCookieMaxAge
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = constants.DefaultRequestTimeout
	}
	return &Handler{
		sessions:     deps.Sessions,
		requireAuth:  deps.RequireAuth,
		rateLimit:    deps.RateLimit,
		log:          deps.Log,
		errorHandler: commonhttp.NewErrorHandler(deps.Log),
		config:       config,
	}
}

// Routes mounts the auth endpoints on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	withTimeout := commonhttp.WithTimeout(h.config.RequestTimeout)

	mux.Handle("POST /register", h.limited("/register", withTimeout(h.register)))
	mux.Handle("POST /login", h.limited("/login", withTimeout(h.login)))
	mux.Handle("GET /refresh", h.limited("/refresh", withTimeout(h.refresh)))

	var logout http.Handler = withTimeout(h.logout)
	if h.requireAuth != nil {
		logout = h.requireAuth(logout)
	}
	mux.Handle("POST /logout", h.limited("/logout", logout))
}

func (h *Handler) limited(path string, next http.Handler) http.Handler {
	if h.rateLimit == nil {
		return next
	}
	return h.rateLimit(path)(next)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if err := commonhttp.DecodeJSON(r, &input); err != nil {
		h.log.Warnf("register failed: invalid json: %v", err)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.sessions.Register(r.Context(), input)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.setSessionCookies(w, r, result)
	commonhttp.WriteJSON(w, http.StatusCreated, authResponse(result))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if err := commonhttp.DecodeJSON(r, &input); err != nil {
		h.log.Warnf("login failed: invalid json: %v", err)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.sessions.Login(r.Context(), input)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.setSessionCookies(w, r, result)
	commonhttp.WriteJSON(w, http.StatusOK, authResponse(result))
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(constants.RefreshTokenCookie)
	if err != nil || cookie.Value == "" {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingRefreshToken,
			"unauthorized", nil, commonhttp.TraceIDFromContext(r.Context()))
		return
	}

	result, err := h.sessions.Refresh(r.Context(), cookie.Value)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.setSessionCookies(w, r, result)
	commonhttp.WriteJSON(w, http.StatusOK, authResponse(result))
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	var refreshToken string
	if cookie, err := r.Cookie(constants.RefreshTokenCookie); err == nil {
		refreshToken = cookie.Value
	}

	if err := h.sessions.Logout(r.Context(), refreshToken); err != nil {
		h.log.Errorf("logout failed: %v", err)
	}

	h.clearSessionCookies(w, r)
	commonhttp.WriteJSON(w, http.StatusOK, dto.AuthResponse{User: nil, Auth: false})
}

func authResponse(result service.AuthResult) dto.AuthResponse {
	user := mapper.UserSummaryToDTO(result.User)
	return dto.AuthResponse{User: &user, Auth: true}
}

func (h *Handler) setSessionCookies(w http.ResponseWriter, r *http.Request, result service.AuthResult) {
	h.setCookie(w, r, constants.AccessTokenCookie, result.AccessToken, int(h.config.CookieMaxAge.Seconds()))
	h.setCookie(w, r, constants.RefreshTokenCookie, result.RefreshToken, int(h.config.CookieMaxAge.Seconds()))
}

func (h *Handler) clearSessionCookies(w http.ResponseWriter, r *http.Request) {
	h.setCookie(w, r, constants.AccessTokenCookie, "", -1)
	h.setCookie(w, r, constants.RefreshTokenCookie, "", -1)
}

func (h *Handler) setCookie(w http.ResponseWriter, r *http.Request, name, value string, maxAge int) {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.config.CookieSecure || r.TLS != nil,
	}
	if maxAge < 0 {
		cookie.Expires = time.Unix(0, 0)
	}

	http.SetCookie(w, cookie)
}
