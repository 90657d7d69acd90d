package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/xdrive-logistics/dispatch/config"
	"github.com/xdrive-logistics/dispatch/internal/core"
	"github.com/xdrive-logistics/dispatch/internal/data"
	"github.com/xdrive-logistics/dispatch/internal/data/localstore"
)

// StoreSelection is the outcome of the one-time backend decision.
type StoreSelection struct {
	// Store is the gateway the rest of the system uses, already wrapped
	// with the read retry decorator.
	Store core.JobStore
	// DB is non-nil only when the remote backend was selected.
	DB *sql.DB
	// Implicit is true when the local fallback runs with implicit tenant
	// scoping.
	Implicit bool
	// Backend names the selected backend for logging and diagnostics.
	Backend string
}

// SelectJobStore decides the persistence backend exactly once at
// startup. There is no silent per-operation failover; once selected, a
// backend's failures surface as Unavailable errors.
func SelectJobStore(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) (StoreSelection, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendLocal:
		return localSelection(logger, "local backend forced by configuration"), nil

	case config.StoreBackendRemote:
		sel, err := remoteSelection(ctx, cfg, logger)
		if err != nil {
			return StoreSelection{}, fmt.Errorf("remote store required but unavailable: %w", err)
		}
		return sel, nil

	default: // auto
		if !cfg.Postgres.Configured() {
			return localSelection(logger, "no remote database configured"), nil
		}
		sel, err := remoteSelection(ctx, cfg, logger)
		if err != nil {
			logger.Warn("remote store unreachable, falling back to local store", "error", err)
			return localSelection(logger, "remote store unreachable at startup"), nil
		}
		return sel, nil
	}
}

func localSelection(logger *slog.Logger, reason string) StoreSelection {
	logger.Info("job store selected", "backend", config.StoreBackendLocal, "reason", reason)
	return StoreSelection{
		Store:    localstore.New(nil),
		Implicit: true,
		Backend:  config.StoreBackendLocal,
	}
}

func remoteSelection(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) (StoreSelection, error) {
	db, err := ConnectDB(cfg.Postgres, logger)
	if err != nil {
		return StoreSelection{}, err
	}

	if cfg.Postgres.RunMigrationsOnStart {
		migrateCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if err := data.RunMigrations(migrateCtx, db); err != nil {
			_ = db.Close()
			return StoreSelection{}, fmt.Errorf("run migrations: %w", err)
		}
	}

	repo := data.NewJobRepo(db, data.RepoConfig{Logger: logger})
	bounded := core.NewTimeoutJobStore(repo, cfg.Store.OperationTimeout)
	store := core.NewRetryingJobStore(bounded, cfg.Store.ReadRetryDelay, logger)

	logger.Info("job store selected", "backend", config.StoreBackendRemote)
	return StoreSelection{
		Store:   store,
		DB:      db,
		Backend: config.StoreBackendRemote,
	}, nil
}
