package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	authdomain "github.com/blogsphere/backend/internal/auth/domain"
	"github.com/blogsphere/backend/internal/common/clock"
	"github.com/blogsphere/backend/internal/common/db"
)

const postgresDriver = "postgres"

type PgRefreshStore struct {
	pool  *pgxpool.Pool
	clock clock.Clock
}

func NewPgRefreshStore(pool *pgxpool.Pool, clk clock.Clock) *PgRefreshStore {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &PgRefreshStore{pool: pool, clock: clk}
}

func (s *PgRefreshStore) Upsert(ctx context.Context, record authdomain.RefreshRecord) (err error) {
	start := time.Now()
	defer func() { observe(postgresDriver, "upsert", start, err) }()

	_, err = s.pool.Exec(
		ctx,
		`INSERT INTO refresh_tokens (user_id, token_hash, expires_at, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE
		 SET token_hash = EXCLUDED.token_hash,
		     expires_at = EXCLUDED.expires_at,
		     updated_at = EXCLUDED.updated_at`,
		record.UserID,
		record.TokenHash,
		record.ExpiresAt,
		record.UpdatedAt,
	)
	return db.HandleExecError(err, "upsert refresh token", start)
}

func (s *PgRefreshStore) FindByValue(ctx context.Context, tokenHash string) (record authdomain.RefreshRecord, err error) {
	start := time.Now()
	defer func() { observe(postgresDriver, "find", start, err) }()

	row := s.pool.QueryRow(
		ctx,
		`SELECT user_id, token_hash, expires_at, updated_at
		 FROM refresh_tokens
		 WHERE token_hash = $1`,
		tokenHash,
	)

	scanErr := row.Scan(&record.UserID, &record.TokenHash, &record.ExpiresAt, &record.UpdatedAt)
	if err = db.HandleQueryError(scanErr, ErrRefreshTokenNotFound, "find refresh token", start); err != nil {
		return authdomain.RefreshRecord{}, err
	}
	return record, nil
}

func (s *PgRefreshStore) DeleteByValue(ctx context.Context, tokenHash string) (err error) {
	start := time.Now()
	defer func() { observe(postgresDriver, "delete", start, err) }()

	_, err = s.pool.Exec(
		ctx,
		`DELETE FROM refresh_tokens WHERE token_hash = $1`,
		tokenHash,
	)
	return db.HandleExecError(err, "delete refresh token", start)
}

func (s *PgRefreshStore) DeleteExpired(ctx context.Context) (deleted int64, err error) {
	start := time.Now()
	defer func() { observe(postgresDriver, "delete_expired", start, err) }()

	res, execErr := s.pool.Exec(
		ctx,
		`DELETE FROM refresh_tokens WHERE expires_at <= $1`,
		s.clock.Now(),
	)
	if err = db.HandleExecError(execErr, "delete expired refresh tokens", start); err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}
