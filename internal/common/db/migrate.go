package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/blogsphere/backend/internal/common/logger"
	"github.com/blogsphere/backend/internal/observability/metrics"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// gooseUp is replaced in tests.
var gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
	return goose.UpContext(ctx, db, dir)
}

// Migrate applies the embedded schema migrations over a short-lived database/sql
// connection; the pgx pool is opened separately.
func Migrate(ctx context.Context, log *logger.Logger, databaseURL string) error {
	sqlDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer sqlDB.Close()

	return runMigrations(ctx, log, sqlDB)
}

func runMigrations(ctx context.Context, log *logger.Logger, sqlDB *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := gooseUp(ctx, sqlDB, migrationsDir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		log.Warnf("migrations applied, schema version unknown: %v", err)
		return nil
	}

	metrics.DBSchemaVersion.Set(float64(version))
	log.Infof("database schema at version %d", version)
	return nil
}
