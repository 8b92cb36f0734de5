package db

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"

	"github.com/blogsphere/backend/internal/observability/metrics"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
)

func extractTableFromOperation(operation string) string {
	operation = strings.ToLower(operation)
	switch {
	case strings.Contains(operation, "refresh") || strings.Contains(operation, "token"):
		return "refresh_tokens"
	case strings.Contains(operation, "comment"):
		return "comments"
	case strings.Contains(operation, "blog"):
		return "blogs"
	case strings.Contains(operation, "user"):
		return "users"
	}
	return "unknown"
}

// IsUniqueViolation reports whether err is a Postgres unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode
}

// ConstraintName returns the violated constraint name, or "" when err is not a Postgres error.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func HandleQueryError(err error, notFoundErr error, operation string, startTime time.Time) error {
	table := extractTableFromOperation(operation)
	duration := time.Since(startTime).Seconds()
	metrics.DBQueryDurationSeconds.WithLabelValues(operation, table).Observe(duration)

	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFoundErr
	}
	errorType := fmt.Sprintf("%T", err)
	metrics.DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	return fmt.Errorf("failed to %s: %w", operation, err)
}

func HandleExecError(err error, operation string, startTime time.Time) error {
	table := extractTableFromOperation(operation)
	duration := time.Since(startTime).Seconds()
	metrics.DBQueryDurationSeconds.WithLabelValues(operation, table).Observe(duration)

	if err == nil {
		return nil
	}
	errorType := fmt.Sprintf("%T", err)
	metrics.DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	return fmt.Errorf("failed to %s: %w", operation, err)
}

func MeasureQueryDuration(operation string, startTime time.Time) {
	table := extractTableFromOperation(operation)
	duration := time.Since(startTime).Seconds()
	metrics.DBQueryDurationSeconds.WithLabelValues(operation, table).Observe(duration)
}
