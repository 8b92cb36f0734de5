package repository

import (
	"context"
	"errors"
	"time"

	authdomain "github.com/blogsphere/backend/internal/auth/domain"
	"github.com/blogsphere/backend/internal/observability/metrics"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// RefreshStore persists at most one refresh record per user. Every call goes
// to the backing store; there is no in-process cache.
type RefreshStore interface {
	// Upsert inserts the record or overwrites the existing one for the same user.
	Upsert(ctx context.Context, record authdomain.RefreshRecord) error
	FindByValue(ctx context.Context, tokenHash string) (authdomain.RefreshRecord, error)
	// DeleteByValue is a no-op when no record matches.
	DeleteByValue(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

func observe(driver, operation string, start time.Time, err error) {
	metrics.RefreshStoreOperationDurationSeconds.WithLabelValues(driver, operation).Observe(time.Since(start).Seconds())
	if err != nil && !errors.Is(err, ErrRefreshTokenNotFound) {
		metrics.RefreshStoreErrors.WithLabelValues(driver, operation).Inc()
	}
}
