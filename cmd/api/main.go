package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	authcleanup "github.com/blogsphere/backend/internal/auth/cleanup"
	authhttp "github.com/blogsphere/backend/internal/auth/http"
	"github.com/blogsphere/backend/internal/auth/service"
	"github.com/blogsphere/backend/internal/auth/token"
	bloghttp "github.com/blogsphere/backend/internal/blog/http"
	blogrepo "github.com/blogsphere/backend/internal/blog/repository"
	blogservice "github.com/blogsphere/backend/internal/blog/service"
	"github.com/blogsphere/backend/internal/common/bootstrap"
	"github.com/blogsphere/backend/internal/common/constants"
	commoncrypto "github.com/blogsphere/backend/internal/common/crypto"
	"github.com/blogsphere/backend/internal/common/db"
	commonhttp "github.com/blogsphere/backend/internal/common/http"
	"github.com/blogsphere/backend/internal/common/jwtverify"
	srv "github.com/blogsphere/backend/internal/common/server"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.NewAPIApp(ctx)
	if err != nil {
		os.Stderr.WriteString(fmt.Sprintf("failed to start api: %v\n", err))
		os.Exit(1)
	}
	cfg := app.Config
	log := app.Log

	codec := token.NewCodec(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, app.Clock)
	sessionManager := service.NewSessionManager(service.SessionManagerDeps{
		Users:        app.UserRepo,
		RefreshStore: app.RefreshStore,
		Hasher:       commoncrypto.NewBcryptHasher(cfg.BcryptCost),
		Codec:        codec,
		Clock:        app.Clock,
		Log:          log,
	}, service.SessionManagerConfig{
		AccessTokenTTL:          cfg.AccessTokenTTL,
		RefreshTokenTTL:         cfg.RefreshTokenTTL,
		CircuitBreakerThreshold: cfg.CircuitBreaker.Threshold,
		CircuitBreakerTimeout:   cfg.CircuitBreaker.Timeout,
		CircuitBreakerReset:     cfg.CircuitBreaker.ResetTimeout,
	})

	go authcleanup.StartRefreshTokenCleanup(ctx, app.RefreshStore, cfg.CleanupInterval, log)

	requireAuth := jwtverify.Middleware(sessionManager, log)
	rateLimiter := commonhttp.NewStrictRateLimiter()

	mux := http.NewServeMux()
	mux.Handle("GET /health", commonhttp.HealthHandler(log, app.HealthChecks...))
	mux.Handle("GET /metrics", promhttp.Handler())

	authhttp.NewHandler(authhttp.Deps{
		Sessions:    sessionManager,
		RequireAuth: requireAuth,
		RateLimit: func(path string) authhttp.Middleware {
			return rateLimiter.MiddlewareForPath(path)
		},
		Log: log,
	}, authhttp.Config{
		CookieMaxAge:   cfg.CookieMaxAge,
		CookieSecure:   cfg.CookieSecure,
		RequestTimeout: cfg.RequestTimeout,
	}).Routes(mux)

	blogService := blogservice.NewService(blogservice.Deps{
		Repo:        blogrepo.NewPgRepository(app.Pool, db.NewPgxTxManager(app.Pool, log)),
		Photos:      app.Photos,
		IDGenerator: commoncrypto.NewUUIDGenerator(),
		Clock:       app.Clock,
		Log:         log,
	}, cfg.MaxPhotoBytes)

	bloghttp.NewHandler(bloghttp.Deps{
		Blogs:       blogService,
		RequireAuth: requireAuth,
		StorageDir:  app.StorageDir,
		Log:         log,
	}, cfg.RequestTimeout).Routes(mux)

	generalLimited := rateLimiter.MiddlewareForPath("")(mux)
	limited := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health", "/metrics", "/login", "/register", "/refresh", "/logout":
			mux.ServeHTTP(w, r)
		default:
			generalLimited.ServeHTTP(w, r)
		}
	})

	// a base64 photo is ~4/3 of its decoded size, plus the other JSON fields
	maxRequestSize := max(constants.DefaultMaxRequestSize, cfg.MaxPhotoBytes*4/3+64<<10)
	baseHandler := commonhttp.BuildBaseHandler(log, maxRequestSize, limited)
	server := srv.NewServer(srv.DefaultServerConfig(cfg.HTTPPort, cfg.RequestTimeout), baseHandler)

	shutdownHooks := []srv.ShutdownHook{
		func(context.Context) error {
			log.Infof("api service: stopping background workers")
			cancel()
			rateLimiter.Stop()
			return nil
		},
		func(ctx context.Context) error {
			app.Close(ctx)
			return nil
		},
	}

	srv.StartWithGracefulShutdownAndHooks(server, log, "api", shutdownHooks)
}
