package http

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/blogsphere/backend/internal/common/constants"
	"github.com/blogsphere/backend/internal/common/httpmetrics"
	"github.com/blogsphere/backend/internal/observability/metrics"
)

type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
	cleanup  *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
}

func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
		cleanup:  time.NewTicker(constants.RateLimitCleanupInterval),
		done:     make(chan struct{}),
	}

	go rl.cleanupLimiters()

	return rl
}

// cleanupLimiters drops limiters whose bucket has refilled, i.e. idle clients.
func (rl *RateLimiter) cleanupLimiters() {
	for {
		select {
		case <-rl.done:
			return
		case <-rl.cleanup.C:
			rl.mu.Lock()
			for key, limiter := range rl.limiters {
				if limiter.Tokens() >= float64(rl.burst) {
					delete(rl.limiters, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		rl.cleanup.Stop()
		close(rl.done)
	})
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.RLock()
	limiter, exists := rl.limiters[key]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		limiter, exists = rl.limiters[key]
		if !exists {
			limiter = rate.NewLimiter(rl.rate, rl.burst)
			rl.limiters[key] = limiter
		}
		rl.mu.Unlock()
	}

	return limiter
}

func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return rl.middleware("general")
}

func (rl *RateLimiter) middleware(limiterType string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.Allow(getClientKey(r)) {
				metrics.RateLimitBlocked.WithLabelValues(httpmetrics.NormalizePath(r.URL.Path), limiterType).Inc()
				WriteErrorEnvelope(w, http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded", nil, TraceIDFromContext(r.Context()))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientKey prefers the authenticated user id and falls back to the client address.
func getClientKey(r *http.Request) string {
	if userID, ok := UserIDFromContext(r.Context()); ok {
		return "user:" + userID
	}
	return "ip:" + GetClientIP(r)
}

type StrictRateLimiter struct {
	loginLimiter    *RateLimiter
	registerLimiter *RateLimiter
	refreshLimiter  *RateLimiter
	logoutLimiter   *RateLimiter
	generalLimiter  *RateLimiter
}

func NewStrictRateLimiter() *StrictRateLimiter {
	return &StrictRateLimiter{
		loginLimiter:    NewRateLimiter(constants.RateLimitLoginRequestsPerSecond, constants.RateLimitLoginBurst),
		registerLimiter: NewRateLimiter(constants.RateLimitRegisterRequestsPerSecond, constants.RateLimitRegisterBurst),
		refreshLimiter:  NewRateLimiter(constants.RateLimitRefreshRequestsPerSecond, constants.RateLimitRefreshBurst),
		logoutLimiter:   NewRateLimiter(constants.RateLimitLogoutRequestsPerSecond, constants.RateLimitLogoutBurst),
		generalLimiter:  NewRateLimiter(constants.RateLimitGeneralRequestsPerSecond, constants.RateLimitGeneralBurst),
	}
}

func (srl *StrictRateLimiter) MiddlewareForPath(path string) func(http.Handler) http.Handler {
	switch path {
	case "/login":
		return srl.loginLimiter.middleware("login")
	case "/register":
		return srl.registerLimiter.middleware("register")
	case "/refresh":
		return srl.refreshLimiter.middleware("refresh")
	case "/logout":
		return srl.logoutLimiter.middleware("logout")
	default:
		return srl.generalLimiter.middleware("general")
	}
}

func (srl *StrictRateLimiter) Stop() {
	srl.loginLimiter.Stop()
	srl.registerLimiter.Stop()
	srl.refreshLimiter.Stop()
	srl.logoutLimiter.Stop()
	srl.generalLimiter.Stop()
}
