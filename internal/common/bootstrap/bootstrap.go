package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	authrepo "github.com/blogsphere/backend/internal/auth/repository"
	"github.com/blogsphere/backend/internal/common/clock"
	"github.com/blogsphere/backend/internal/common/config"
	"github.com/blogsphere/backend/internal/common/db"
	commonhttp "github.com/blogsphere/backend/internal/common/http"
	"github.com/blogsphere/backend/internal/common/logger"
	srv "github.com/blogsphere/backend/internal/common/server"
	"github.com/blogsphere/backend/internal/storage"
	userrepo "github.com/blogsphere/backend/internal/user/repository"
)

// App holds the process-wide dependencies shared by the auth and blog modules.
type App struct {
	Config       config.APIConfig
	Log          *logger.Logger
	Clock        clock.Clock
	Pool         *pgxpool.Pool
	UserRepo     userrepo.Repository
	RefreshStore authrepo.RefreshStore
	Photos       storage.PhotoStore
	// StorageDir is set only for the disk photo store.
	StorageDir   string
	HealthChecks []commonhttp.HealthCheck
	// Closers run in order on shutdown.
	Closers []srv.ShutdownHook
}

func NewAPIApp(ctx context.Context) (*App, error) {
	cfg, err := config.LoadAPIConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.LogDir, "api", cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := db.Migrate(ctx, log, cfg.DatabaseURL); err != nil {
		return nil, err
	}

	pool, err := db.NewPool(ctx, log, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		Log:      log,
		Clock:    clock.NewRealClock(),
		Pool:     pool,
		UserRepo: userrepo.NewPgRepository(pool),
		HealthChecks: []commonhttp.HealthCheck{
			{Name: "postgres", Check: pool.Ping},
		},
	}

	if err := app.initRefreshStore(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if err := app.initPhotoStore(ctx); err != nil {
		app.Close(ctx)
		pool.Close()
		return nil, err
	}

	app.Closers = append(app.Closers, func(context.Context) error {
		log.Infof("closing database pool")
		pool.Close()
		return nil
	})

	return app, nil
}

func (a *App) initRefreshStore(ctx context.Context) error {
	switch a.Config.RefreshStoreDriver {
	case config.RefreshStorePostgres:
		a.RefreshStore = authrepo.NewPgRefreshStore(a.Pool, a.Clock)

	case config.RefreshStoreMongo:
		client, err := authrepo.ConnectMongo(ctx, a.Config.MongoURI)
		if err != nil {
			return err
		}
		store := authrepo.NewMongoRefreshStore(client.Database(a.Config.MongoDatabase), a.Clock)
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return fmt.Errorf("failed to create refresh token indexes: %w", err)
		}
		a.RefreshStore = store
		a.HealthChecks = append(a.HealthChecks, commonhttp.HealthCheck{
			Name:  "mongo",
			Check: func(ctx context.Context) error { return client.Ping(ctx, nil) },
		})
		a.Closers = append(a.Closers, func(ctx context.Context) error {
			a.Log.Infof("disconnecting mongo")
			return client.Disconnect(ctx)
		})

	case config.RefreshStoreSQLite:
		gdb, err := authrepo.OpenSQLite(a.Config.SQLitePath)
		if err != nil {
			return err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return fmt.Errorf("failed to get sqlite handle: %w", err)
		}
		a.RefreshStore = authrepo.NewSQLiteRefreshStore(gdb, a.Clock)
		a.HealthChecks = append(a.HealthChecks, commonhttp.HealthCheck{Name: "sqlite", Check: sqlDB.PingContext})
		a.Closers = append(a.Closers, func(context.Context) error {
			a.Log.Infof("closing sqlite database")
			return sqlDB.Close()
		})

	default:
		return fmt.Errorf("%w: REFRESH_STORE_DRIVER=%s", config.ErrUnknownDriver, a.Config.RefreshStoreDriver)
	}

	a.Log.Infof("refresh store driver=%s", a.Config.RefreshStoreDriver)
	return nil
}

func (a *App) initPhotoStore(ctx context.Context) error {
	switch a.Config.PhotoStorageDriver {
	case config.PhotoStorageDisk:
		disk, err := storage.NewDiskStore(a.Config.StorageDir, a.Config.BackendServerPath)
		if err != nil {
			return err
		}
		a.Photos = disk
		a.StorageDir = disk.Dir()

	case config.PhotoStorageS3:
		s3Store, err := storage.NewS3Store(ctx, a.Config.S3)
		if err != nil {
			return err
		}
		a.Photos = s3Store

	default:
		return fmt.Errorf("%w: PHOTO_STORAGE_DRIVER=%s", config.ErrUnknownDriver, a.Config.PhotoStorageDriver)
	}

	a.Log.Infof("photo storage driver=%s", a.Config.PhotoStorageDriver)
	return nil
}

// Close runs every closer, logging failures instead of stopping early.
func (a *App) Close(ctx context.Context) {
	for _, closeFn := range a.Closers {
		if err := closeFn(ctx); err != nil {
			a.Log.Errorf("shutdown hook failed: %v", err)
		}
	}
}
