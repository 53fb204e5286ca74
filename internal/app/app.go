package app

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"mememaker/internal/config"
	"mememaker/internal/http/server"
	"mememaker/internal/infra/logging"
	"mememaker/internal/infra/magick"
	"mememaker/internal/infra/postgres"
	"mememaker/internal/infra/ratelimit"
	"mememaker/internal/infra/stats"
	"mememaker/internal/meme"
	"mememaker/internal/tokens"
)

// App holds the process-wide components shared by the HTTP server and the
// lambda entrypoint.
type App struct {
	Config    config.Config
	Service   *meme.Service
	Pool      *magick.Pool
	Stats     stats.Recorder
	Tokens    *tokens.Cache
	RateStore fiber.Storage

	redis  *redis.Client
	db     *postgres.DB
	cancel context.CancelFunc
}

// New wires the caption service and its collaborators from cfg. Redis and
// Postgres are optional; without them counters and limits stay in memory and
// every API key is rejected.
func New(cfg config.Config) *App {
	runner := magick.ExecRunner{Timeout: cfg.Meme.CommandTimeout}
	pool := magick.NewPool(cfg.Meme.MaxConcurrentCommands, runner)

	a := &App{
		Config:  cfg,
		Pool:    pool,
		Service: meme.New(cfg.Meme, pool, nil),
		Stats:   stats.NewMemory(),
		Tokens:  tokens.NewCache(),
	}

	if cfg.Cache.RedisHost != "" {
		a.RateStore = ratelimit.NewStore(ratelimit.RedisConfig{Addr: cfg.Cache.RedisHost, DB: cfg.Cache.RateLimitDB})
		a.connectStats()
	} else {
		a.RateStore = ratelimit.NewStore(ratelimit.RedisConfig{})
	}

	return a
}

func (a *App) connectStats() {
	client := redis.NewClient(&redis.Options{
		Addr: a.Config.Cache.RedisHost,
		DB:   a.Config.Cache.StatsDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logging.Warn("Redis stats unavailable, counting in memory", "addr", a.Config.Cache.RedisHost, "error", err)
		_ = client.Close()
		return
	}

	a.redis = client
	a.Stats = stats.NewRedis(client)
	logging.Info("Using Redis for render stats", "addr", a.Config.Cache.RedisHost, "db", a.Config.Cache.StatsDB)
}

// StartTokens loads API tokens and keeps them fresh until Close. Without a
// Postgres configuration the cache is marked ready and empty.
func (a *App) StartTokens(ctx context.Context) {
	pg := a.Config.Auth.Postgres
	if !pg.Enabled() {
		a.Tokens.Replace(map[string]tokens.Entry{})
		return
	}

	dsn, err := postgres.DSN(pg)
	if err != nil {
		logging.Error("Invalid Postgres configuration, API keys disabled", "error", err)
		a.Tokens.Replace(map[string]tokens.Entry{})
		return
	}

	a.db = postgres.NewDB()
	if sqlDB, err := a.db.Get(dsn); err == nil {
		schemaCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := postgres.EnsureSchema(schemaCtx, sqlDB); err != nil {
			logging.Warn("Failed to ensure tokens schema", "error", err)
		}
		cancel()
	}

	reloader := tokens.NewReloader(postgres.NewTokenRepository(a.db, dsn), a.Tokens, a.Config.Auth.ReloadInterval)
	if err := reloader.LoadOnce(ctx); err != nil {
		logging.Error("Failed to load API tokens", "error", err)
	}

	ctx, a.cancel = context.WithCancel(ctx)
	reloader.Start(ctx)
}

// Server builds the HTTP app over the shared components.
func (a *App) Server() *fiber.App {
	return server.New(server.Deps{
		Config:    a.Config,
		Service:   a.Service,
		Pool:      a.Pool,
		Stats:     a.Stats,
		Tokens:    a.Tokens,
		RateStore: a.RateStore,
	})
}

// Close stops the token reloader and releases pools and connections.
func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	a.Pool.Close()
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			logging.Warn("Failed to close Postgres pool", "error", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logging.Warn("Failed to close Redis client", "error", err)
		}
	}
	if a.RateStore != nil {
		_ = a.RateStore.Close()
	}
}
