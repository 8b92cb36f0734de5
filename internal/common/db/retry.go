package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"

	"github.com/blogsphere/backend/internal/common/logger"
)

type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryConfig is used for transactions run through PgxTxManager.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:  3,
	InitialDelay: 100 * time.Millisecond,
	MaxDelay:     2 * time.Second,
	Multiplier:   2.0,
}

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateLockNotAvailable     = "55P03"
	sqlStateClassConnection      = "08"
)

// isRetryableError reports whether replaying the whole operation may succeed:
// connection-class failures, serialization failures, deadlocks, lock timeouts,
// and driver errors that guarantee nothing reached the server.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateSerializationFailure, sqlStateDeadlockDetected, sqlStateLockNotAvailable:
			return true
		}
		return len(pgErr.Code) >= 2 && pgErr.Code[:2] == sqlStateClassConnection
	}

	return pgconn.SafeToRetry(err)
}

// RetryWithBackoff runs operation until it succeeds, fails permanently, or
// MaxAttempts is reached, sleeping with exponential backoff between attempts.
func RetryWithBackoff(ctx context.Context, log *logger.Logger, config RetryConfig, operation func() error) error {
	if config.MaxAttempts <= 0 {
		config = DefaultRetryConfig
	}

	var lastErr error
	delay := config.InitialDelay

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		err := operation()
		if err == nil {
			if attempt > 1 {
				log.Infof("database operation succeeded after %d attempts", attempt)
			}
			return nil
		}
		if !isRetryableError(err) {
			return err
		}
		lastErr = err

		if attempt == config.MaxAttempts {
			break
		}

		log.Warnf("database operation failed (attempt %d/%d): %v, retrying in %v", attempt, config.MaxAttempts, err, delay)

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * config.Multiplier)
		if delay > config.MaxDelay {
			delay = config.MaxDelay
		}
	}

	return fmt.Errorf("database operation failed after %d attempts: %w", config.MaxAttempts, lastErr)
}
