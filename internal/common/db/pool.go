package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/blogsphere/backend/internal/common/constants"
	"github.com/blogsphere/backend/internal/common/logger"
)

func NewPool(ctx context.Context, log *logger.Logger, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	cfg.MaxConns = constants.DBPoolMaxConns
	cfg.MinConns = constants.DBPoolMinConns
	cfg.MaxConnLifetime = constants.DBPoolConnMaxLifetime
	cfg.MaxConnIdleTime = constants.DBPoolConnMaxIdleTime
	cfg.HealthCheckPeriod = constants.DBPoolHealthCheck
	cfg.ConnConfig.ConnectTimeout = constants.DBPoolConnectTimeout
	cfg.ConnConfig.RuntimeParams = map[string]string{
		"application_name": "blogsphere-api",
	}

	for attempt := 1; attempt <= constants.DBPoolMaxAttempts; attempt++ {
		pool, err := pgxpool.ConnectConfig(ctx, cfg)
		if err == nil {
			log.Infof("database connection pool initialized: max=%d, min=%d", cfg.MaxConns, cfg.MinConns)
			StartPoolMetrics(ctx, pool, constants.DBPoolMetricsInterval)
			return pool, nil
		}

		log.Warnf("failed to connect to database (attempt %d/%d): %v", attempt, constants.DBPoolMaxAttempts, err)

		if attempt == constants.DBPoolMaxAttempts {
			return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempt, err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(constants.DBPoolRetryDelay):
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts", constants.DBPoolMaxAttempts)
}
