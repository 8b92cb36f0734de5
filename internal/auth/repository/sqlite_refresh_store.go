package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	authdomain "github.com/blogsphere/backend/internal/auth/domain"
	"github.com/blogsphere/backend/internal/common/clock"
)

const sqliteDriver = "sqlite"

type sqliteRefreshRecord struct {
	UserID    string    `gorm:"column:user_id;primaryKey"`
	TokenHash string    `gorm:"column:token_hash;not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;autoUpdateTime:false"`
}

func (sqliteRefreshRecord) TableName() string {
	return "refresh_tokens"
}

type SQLiteRefreshStore struct {
	db    *gorm.DB
	clock clock.Clock
}

// OpenSQLite opens (or creates) the database file and migrates the refresh token table.
func OpenSQLite(path string) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := gdb.AutoMigrate(&sqliteRefreshRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate refresh token table: %w", err)
	}
	return gdb, nil
}

func NewSQLiteRefreshStore(db *gorm.DB, clk clock.Clock) *SQLiteRefreshStore {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &SQLiteRefreshStore{db: db, clock: clk}
}

func (s *SQLiteRefreshStore) Upsert(ctx context.Context, record authdomain.RefreshRecord) (err error) {
	start := time.Now()
	defer func() { observe(sqliteDriver, "upsert", start, err) }()

	row := sqliteRefreshRecord{
		UserID:    record.UserID,
		TokenHash: record.TokenHash,
		ExpiresAt: record.ExpiresAt.UTC(),
		UpdatedAt: record.UpdatedAt.UTC(),
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token_hash", "expires_at", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert refresh token: %w", err)
	}
	return nil
}

func (s *SQLiteRefreshStore) FindByValue(ctx context.Context, tokenHash string) (record authdomain.RefreshRecord, err error) {
	start := time.Now()
	defer func() { observe(sqliteDriver, "find", start, err) }()

	var row sqliteRefreshRecord
	err = s.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return authdomain.RefreshRecord{}, ErrRefreshTokenNotFound
		}
		return authdomain.RefreshRecord{}, fmt.Errorf("failed to find refresh token: %w", err)
	}

	return authdomain.RefreshRecord{
		UserID:    row.UserID,
		TokenHash: row.TokenHash,
		ExpiresAt: row.ExpiresAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (s *SQLiteRefreshStore) DeleteByValue(ctx context.Context, tokenHash string) (err error) {
	start := time.Now()
	defer func() { observe(sqliteDriver, "delete", start, err) }()

	if err = s.db.WithContext(ctx).Where("token_hash = ?", tokenHash).Delete(&sqliteRefreshRecord{}).Error; err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

func (s *SQLiteRefreshStore) DeleteExpired(ctx context.Context) (deleted int64, err error) {
	start := time.Now()
	defer func() { observe(sqliteDriver, "delete_expired", start, err) }()

	res := s.db.WithContext(ctx).Where("expires_at <= ?", s.clock.Now().UTC()).Delete(&sqliteRefreshRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete expired refresh tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}
