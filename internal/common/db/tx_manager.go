package db

import (
	"context"
	"errors"
	"fmt"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/blogsphere/backend/internal/common/logger"
)

type TxManager interface {
	WithTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

type PgxTxManager struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func NewPgxTxManager(pool *pgxpool.Pool, log *logger.Logger) *PgxTxManager {
	return &PgxTxManager{pool: pool, log: log}
}

// WithTx commits when fn returns nil and rolls back otherwise. Transactions
// aborted by a serialization failure or deadlock are replayed from the start.
func (m *PgxTxManager) WithTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
	return RetryWithBackoff(ctx, m.log, DefaultRetryConfig, func() error {
		return m.runTx(ctx, fn)
	})
}

func (m *PgxTxManager) runTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			m.log.Errorf("failed to rollback transaction: %v", rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
