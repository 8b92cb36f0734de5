package constants

import "time"

const (
	UsernameMinLength  = 5
	UsernameMaxLength  = 30
	NameMaxLength      = 30
	PasswordMinLength  = 8
	PasswordMaxLength  = 25
	JWTSecretMinLength = 32
	RefreshTokenIDSize = 16

	DefaultBcryptCost = 10
	MinBcryptCost     = 4
	MaxBcryptCost     = 31

	DefaultMaxRequestSize = 10 << 20
	DefaultMaxPhotoBytes  = 5 << 20

	DBPoolMaxConns        = 25
	DBPoolMinConns        = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = 1 * time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = 1 * time.Second
	DBPoolMetricsInterval = 30 * time.Second
	DBQueryTimeout        = 30 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second
	ServerWriteGrace        = 5 * time.Second
	ServerMaxHeaderBytes    = 1 << 20

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultHTTPPort = "5000"

	DefaultCircuitBreakerThreshold = 50
	DefaultCircuitBreakerTimeout   = 5 * time.Second
	DefaultCircuitBreakerReset     = 10 * time.Second

	DefaultRequestTimeout  = 5 * time.Second
	DefaultAccessTokenTTL  = 30 * time.Minute
	DefaultRefreshTokenTTL = 60 * time.Minute
	DefaultCookieMaxAge    = 24 * time.Hour
	DefaultCleanupInterval = 1 * time.Hour

	DefaultRefreshStoreDriver = "postgres"
	DefaultPhotoStorageDriver = "disk"
	DefaultStorageDir         = "storage"
	DefaultBackendServerPath  = "http://localhost:5000"
	DefaultMongoDatabase      = "blog"
	DefaultSQLitePath         = "refresh_tokens.db"

	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"

	RateLimitCleanupInterval = 5 * time.Minute

	RateLimitLoginRequestsPerSecond    = 1.0
	RateLimitLoginBurst                = 5
	RateLimitRegisterRequestsPerSecond = 0.2
	RateLimitRegisterBurst             = 3
	RateLimitRefreshRequestsPerSecond  = 2.0
	RateLimitRefreshBurst              = 10
	RateLimitLogoutRequestsPerSecond   = 2.0
	RateLimitLogoutBurst               = 10
	RateLimitGeneralRequestsPerSecond  = 20.0
	RateLimitGeneralBurst              = 40

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const (
	TraceIDKey TraceIDKeyType = "trace_id"
	UserIDKey  TraceIDKeyType = "user_id"
)
