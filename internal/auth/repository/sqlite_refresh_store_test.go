package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authdomain "github.com/blogsphere/backend/internal/auth/domain"
	"github.com/blogsphere/backend/internal/common/clock"
)

func newSQLiteStore(t *testing.T, clk clock.Clock) *SQLiteRefreshStore {
	t.Helper()
	gdb, err := OpenSQLite(filepath.Join(t.TempDir(), "refresh.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewSQLiteRefreshStore(gdb, clk)
}

func TestSQLiteRefreshStore_UpsertOverwritesPerUser(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newSQLiteStore(t, clock.NewMockClock(now))
	ctx := context.Background()

	first := authdomain.RefreshRecord{UserID: "u1", TokenHash: "hash-1", ExpiresAt: now.Add(time.Hour), UpdatedAt: now}
	require.NoError(t, store.Upsert(ctx, first))

	second := authdomain.RefreshRecord{UserID: "u1", TokenHash: "hash-2", ExpiresAt: now.Add(2 * time.Hour), UpdatedAt: now.Add(time.Minute)}
	require.NoError(t, store.Upsert(ctx, second))

	_, err := store.FindByValue(ctx, "hash-1")
	assert.ErrorIs(t, err, ErrRefreshTokenNotFound)

	got, err := store.FindByValue(ctx, "hash-2")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.True(t, got.ExpiresAt.Equal(second.ExpiresAt))

	var count int64
	require.NoError(t, store.db.Model(&sqliteRefreshRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSQLiteRefreshStore_DeleteByValue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newSQLiteStore(t, clock.NewMockClock(now))
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, authdomain.RefreshRecord{UserID: "u1", TokenHash: "hash-1", ExpiresAt: now.Add(time.Hour), UpdatedAt: now}))

	require.NoError(t, store.DeleteByValue(ctx, "hash-1"))
	require.NoError(t, store.DeleteByValue(ctx, "hash-1"), "deleting an absent value is a no-op")

	_, err := store.FindByValue(ctx, "hash-1")
	assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
}

func TestSQLiteRefreshStore_DeleteExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newSQLiteStore(t, clock.NewMockClock(now))
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, authdomain.RefreshRecord{UserID: "u1", TokenHash: "old", ExpiresAt: now.Add(-time.Minute), UpdatedAt: now.Add(-time.Hour)}))
	require.NoError(t, store.Upsert(ctx, authdomain.RefreshRecord{UserID: "u2", TokenHash: "live", ExpiresAt: now.Add(time.Hour), UpdatedAt: now}))

	deleted, err := store.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = store.FindByValue(ctx, "live")
	assert.NoError(t, err)
}
