// internal/bootstrap/runtime.go
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"volunteer-engine/internal/common/config"
	"volunteer-engine/internal/common/database"
	"volunteer-engine/internal/common/logger"
	"volunteer-engine/internal/common/metrics"
	"volunteer-engine/internal/engine/pipeline"
	"volunteer-engine/internal/repository/cache"
	"volunteer-engine/internal/repository/postgres"
)

// Runtime is a wired engine and the connections it owns.
type Runtime struct {
	DB     *sql.DB
	Redis  *redis.Client
	Store  *postgres.Store
	Cache  *cache.MinistryRepository
	Engine *pipeline.Engine

	log logger.Logger
}

// Options tune connection start-up. Zero values use the defaults.
type Options struct {
	Registerer    prometheus.Registerer
	ReadyAttempts int
	ReadyDelay    time.Duration
}

// Open connects to Postgres and, when configured, Redis, then assembles the engine.
func Open(ctx context.Context, cfg *config.Config, opts Options, log logger.Logger) (*Runtime, error) {
	attempts := opts.ReadyAttempts
	if attempts <= 0 {
		attempts = 15
	}
	delay := opts.ReadyDelay
	if delay <= 0 {
		delay = 2 * time.Second
	}

	db, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return nil, err
	}
	if err := database.WaitReady(ctx, "postgres", database.PostgresPinger{DB: db}, attempts, delay, log); err != nil {
		db.Close()
		return nil, err
	}

	rdb := database.NewRedis(cfg.Database.Redis)
	if rdb != nil {
		// The cache tolerates an unreachable Redis, so only warn here.
		if err := database.WaitReady(ctx, "redis", database.RedisPinger{Client: rdb}, 3, delay, log); err != nil {
			log.Warn("ministry cache degraded", map[string]interface{}{"error": err.Error()})
		}
	}

	rt, err := Assemble(ctx, cfg, db, rdb, opts.Registerer, log)
	if err != nil {
		if rdb != nil {
			rdb.Close()
		}
		db.Close()
		return nil, err
	}
	return rt, nil
}

// Assemble builds the runtime over already opened connections. rdb may be nil.
func Assemble(ctx context.Context, cfg *config.Config, db *sql.DB, rdb *redis.Client, reg prometheus.Registerer, log logger.Logger) (*Runtime, error) {
	p, err := config.ResolvePolicy(cfg)
	if err != nil {
		return nil, fmt.Errorf("policy: %w", err)
	}

	store := postgres.New(db, p.Staffing, log)
	if cfg.Engine.MigrateOnStart {
		if err := store.Migrate(ctx); err != nil {
			return nil, err
		}
		log.Info("schema migrated", nil)
	}

	rt := &Runtime{DB: db, Redis: rdb, Store: store, log: log}

	deps := pipeline.Dependencies{
		Members:    store,
		Ministries: store,
		Activity:   store,
	}
	if cfg.Engine.PersistProfiles {
		deps.Store = store
	}
	if rdb != nil {
		rt.Cache = cache.NewMinistryRepository(store, rdb, config.GetDuration(cfg.Engine.MinistryCacheTTL), log)
		deps.Ministries = rt.Cache
	}

	var opts []pipeline.Option
	if reg != nil {
		opts = append(opts, pipeline.WithRecorder(metrics.NewEngineMetrics(reg)))
	}
	rt.Engine, err = pipeline.New(deps, p, log, opts...)
	if err != nil {
		return nil, err
	}

	log.Info("engine ready", map[string]interface{}{
		"policyVersion":   p.Version,
		"ministryCache":   rt.Cache != nil,
		"persistProfiles": cfg.Engine.PersistProfiles,
	})
	return rt, nil
}

// Pingers lists the backends readiness depends on.
func (r *Runtime) Pingers() map[string]database.Pinger {
	p := map[string]database.Pinger{"postgres": database.PostgresPinger{DB: r.DB}}
	if r.Redis != nil {
		p["redis"] = database.RedisPinger{Client: r.Redis}
	}
	return p
}

func (r *Runtime) Close() error {
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil {
			r.log.Warn("failed to close redis", map[string]interface{}{"error": err.Error()})
		}
	}
	return r.DB.Close()
}
