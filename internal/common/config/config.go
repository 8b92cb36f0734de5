package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/blogsphere/backend/internal/common/constants"
)

var (
	ErrMissingRequiredEnv = errors.New("missing required environment variable")
	ErrInvalidJWTSecret   = errors.New("token secret must be at least 32 bytes")
	ErrSharedJWTSecret    = errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	ErrUnknownDriver      = errors.New("unknown driver")
)

const (
	RefreshStorePostgres = "postgres"
	RefreshStoreMongo    = "mongo"
	RefreshStoreSQLite   = "sqlite"

	PhotoStorageDisk = "disk"
	PhotoStorageS3   = "s3"
)

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string
	UsePathStyle    bool
}

type CircuitBreakerConfig struct {
	Threshold    int
	Timeout      time.Duration
	ResetTimeout time.Duration
}

type APIConfig struct {
	HTTPPort           string
	DatabaseURL        string
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	BcryptCost         int
	CookieMaxAge       time.Duration
	CookieSecure       bool
	RequestTimeout     time.Duration
	LogDir             string
	LogLevel           string

	RefreshStoreDriver string
	MongoURI           string
	MongoDatabase      string
	SQLitePath         string

	PhotoStorageDriver string
	StorageDir         string
	BackendServerPath  string
	MaxPhotoBytes      int64
	S3                 S3Config

	CleanupInterval time.Duration
	CircuitBreaker  CircuitBreakerConfig
}

// LoadAPIConfig reads the environment, after merging an optional .env file.
// Variables already set in the process environment take precedence.
func LoadAPIConfig() (APIConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return APIConfig{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return loadFromEnv()
}

func loadFromEnv() (APIConfig, error) {
	accessSecret, err := mustEnv("ACCESS_TOKEN_SECRET")
	if err != nil {
		return APIConfig{}, err
	}
	refreshSecret, err := mustEnv("REFRESH_TOKEN_SECRET")
	if err != nil {
		return APIConfig{}, err
	}
	if err := validateJWTSecret(accessSecret); err != nil {
		return APIConfig{}, fmt.Errorf("ACCESS_TOKEN_SECRET: %w", err)
	}
	if err := validateJWTSecret(refreshSecret); err != nil {
		return APIConfig{}, fmt.Errorf("REFRESH_TOKEN_SECRET: %w", err)
	}
	if accessSecret == refreshSecret {
		return APIConfig{}, ErrSharedJWTSecret
	}

	databaseURL, err := mustEnv("DATABASE_URL")
	if err != nil {
		return APIConfig{}, err
	}

	cfg := APIConfig{
		HTTPPort:           getEnv("HTTP_PORT", constants.DefaultHTTPPort),
		DatabaseURL:        databaseURL,
		AccessTokenSecret:  accessSecret,
		RefreshTokenSecret: refreshSecret,
		AccessTokenTTL:     getDurationEnv("ACCESS_TOKEN_TTL", constants.DefaultAccessTokenTTL),
		RefreshTokenTTL:    getDurationEnv("REFRESH_TOKEN_TTL", constants.DefaultRefreshTokenTTL),
		BcryptCost:         getIntEnv("BCRYPT_COST", constants.DefaultBcryptCost),
		CookieMaxAge:       getDurationEnv("COOKIE_MAX_AGE", constants.DefaultCookieMaxAge),
		CookieSecure:       getBoolEnv("COOKIE_SECURE", false),
		RequestTimeout:     getDurationEnv("REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
		LogDir:             getEnv("LOG_DIR", ""),
		LogLevel:           getEnv("LOG_LEVEL", "INFO"),

		RefreshStoreDriver: strings.ToLower(getEnv("REFRESH_STORE_DRIVER", constants.DefaultRefreshStoreDriver)),
		MongoURI:           getEnv("MONGO_URI", ""),
		MongoDatabase:      getEnv("MONGO_DATABASE", constants.DefaultMongoDatabase),
		SQLitePath:         getEnv("SQLITE_PATH", constants.DefaultSQLitePath),

		PhotoStorageDriver: strings.ToLower(getEnv("PHOTO_STORAGE_DRIVER", constants.DefaultPhotoStorageDriver)),
		StorageDir:         getEnv("STORAGE_DIR", constants.DefaultStorageDir),
		BackendServerPath:  strings.TrimRight(getEnv("BACKEND_SERVER_PATH", constants.DefaultBackendServerPath), "/"),
		MaxPhotoBytes:      getInt64Env("MAX_PHOTO_BYTES", constants.DefaultMaxPhotoBytes),
		S3: S3Config{
			Bucket:          getEnv("S3_BUCKET", ""),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			PublicURL:       strings.TrimRight(getEnv("S3_PUBLIC_URL", ""), "/"),
			UsePathStyle:    getBoolEnv("S3_USE_PATH_STYLE", false),
		},

		CleanupInterval: getDurationEnv("CLEANUP_INTERVAL", constants.DefaultCleanupInterval),
		CircuitBreaker: CircuitBreakerConfig{
			Threshold:    getIntEnv("CIRCUIT_BREAKER_THRESHOLD", constants.DefaultCircuitBreakerThreshold),
			Timeout:      getDurationEnv("CIRCUIT_BREAKER_TIMEOUT", constants.DefaultCircuitBreakerTimeout),
			ResetTimeout: getDurationEnv("CIRCUIT_BREAKER_RESET", constants.DefaultCircuitBreakerReset),
		},
	}

	switch cfg.RefreshStoreDriver {
	case RefreshStorePostgres, RefreshStoreSQLite:
	case RefreshStoreMongo:
		if cfg.MongoURI == "" {
			return APIConfig{}, fmt.Errorf("%w: MONGO_URI", ErrMissingRequiredEnv)
		}
	default:
		return APIConfig{}, fmt.Errorf("%w: REFRESH_STORE_DRIVER=%s", ErrUnknownDriver, cfg.RefreshStoreDriver)
	}

	switch cfg.PhotoStorageDriver {
	case PhotoStorageDisk:
	case PhotoStorageS3:
		if cfg.S3.Bucket == "" {
			return APIConfig{}, fmt.Errorf("%w: S3_BUCKET", ErrMissingRequiredEnv)
		}
	default:
		return APIConfig{}, fmt.Errorf("%w: PHOTO_STORAGE_DRIVER=%s", ErrUnknownDriver, cfg.PhotoStorageDriver)
	}

	return cfg, nil
}

func validateJWTSecret(secret string) error {
	if len(secret) < constants.JWTSecretMinLength {
		return fmt.Errorf("%w: got %d bytes", ErrInvalidJWTSecret, len(secret))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingRequiredEnv, key)
	}
	return v, nil
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getInt64Env(key string, fallback int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return i
}

func getBoolEnv(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
