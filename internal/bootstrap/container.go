package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xdrive-logistics/dispatch/config"
	redisadapter "github.com/xdrive-logistics/dispatch/internal/adapters/redis"
	"github.com/xdrive-logistics/dispatch/internal/core"
	"github.com/xdrive-logistics/dispatch/internal/data"
	"github.com/xdrive-logistics/dispatch/internal/observability/notify"
	"github.com/xdrive-logistics/dispatch/internal/observability/notify/webhook"
)

// Container holds the wired application services.
type Container struct {
	Config    config.AppConfig
	Logger    *slog.Logger
	Store     core.JobStore
	Lifecycle *core.LifecycleService
	Resolver  *core.ScopeResolver
	Sessions  *redisadapter.SessionStore

	db    *sql.DB
	redis *goredis.Client
}

// BuildContainer loads configuration and wires the full service graph.
// The store backend decision happens here, once.
func BuildContainer(ctx context.Context) (*Container, error) {
	logger := InitLogger()

	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return BuildContainerWithConfig(ctx, cfg, logger)
}

// BuildContainerWithConfig wires the service graph from an explicit
// configuration, which keeps startup testable.
func BuildContainerWithConfig(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) (*Container, error) {
	sel, err := SelectJobStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
		Store:  sel.Store,
		db:     sel.DB,
	}

	c.Resolver = core.NewScopeResolver(scopeResolverOptions(sel, logger))
	c.Lifecycle = core.NewLifecycleService(core.LifecycleServiceOptions{
		Store:    sel.Store,
		Notifier: buildNotifier(cfg.Notify, logger),
		Logger:   logger,
	})

	if client, redisErr := ConnectRedis(cfg.Redis, logger); redisErr == nil {
		c.redis = client
		c.Sessions = redisadapter.NewSessionStoreWithPrefix(client, cfg.Session.KeyPrefix)
	} else {
		logger.Warn("redis unavailable, sessions disabled", "error", redisErr)
	}

	return c, nil
}

// scopeResolverOptions builds resolver lookups. The remote backend uses
// database-backed repositories; the local fallback has no membership
// tables, so the resolver runs with implicit tenant scoping.
func scopeResolverOptions(sel StoreSelection, logger *slog.Logger) core.ScopeResolverOptions {
	opts := core.ScopeResolverOptions{
		Logger:         logger,
		ImplicitTenant: sel.Implicit,
	}
	if sel.DB != nil {
		opts.Memberships = data.NewMembershipRepo(sel.DB)
		opts.Drivers = data.NewDriverRepo(sel.DB)
	} else {
		opts.Memberships = permissiveMemberships{}
		opts.Drivers = permissiveDrivers{}
	}
	return opts
}

func buildNotifier(cfg config.NotifyConfig, logger *slog.Logger) core.Notifier {
	if !cfg.Enabled() {
		return nil
	}
	client, err := webhook.NewClient(webhook.Config{
		URL:        cfg.WebhookURL,
		AuthToken:  cfg.WebhookToken,
		Timeout:    cfg.Timeout,
		RetryLimit: cfg.RetryLimit,
	})
	if err != nil {
		logger.Warn("invalid webhook configuration, notifications disabled", "error", err)
		return nil
	}
	return notify.NewDispatcher(logger, client)
}

// Close releases the container's connections.
func (c *Container) Close() error {
	var errs []error
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close container: %v", errs)
	}
	return nil
}
