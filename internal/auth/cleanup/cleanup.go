package cleanup

import (
	"context"
	"time"

	"github.com/blogsphere/backend/internal/common/constants"
	"github.com/blogsphere/backend/internal/common/logger"
	"github.com/blogsphere/backend/internal/observability/metrics"
)

type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// StartRefreshTokenCleanup deletes expired refresh records every interval until
// ctx is cancelled. Expired records are already rejected on use; this only
// keeps the store small.
func StartRefreshTokenCleanup(ctx context.Context, store ExpiredDeleter, interval time.Duration, log *logger.Logger) {
	if interval <= 0 {
		interval = constants.DefaultCleanupInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce(ctx, store, log)
		}
	}
}

func runOnce(ctx context.Context, store ExpiredDeleter, log *logger.Logger) {
	deleted, err := store.DeleteExpired(ctx)
	if err != nil {
		log.Errorf("refresh token cleanup failed: %v", err)
		return
	}
	if deleted > 0 {
		metrics.RefreshTokensCleanupDeleted.Add(float64(deleted))
		log.Infof("refresh token cleanup: deleted %d expired records", deleted)
	}
}
