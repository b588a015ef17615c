package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/kriskris-27/the-dev-ops-mern/internal/config"
	"github.com/kriskris-27/the-dev-ops-mern/internal/logger"
	"github.com/kriskris-27/the-dev-ops-mern/internal/metrics"
	"github.com/kriskris-27/the-dev-ops-mern/internal/response"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
)

type App struct {
	cfg    config.Config
	log    *slog.Logger
	db     *pgxpool.Pool
	redis  *redis.Client
	router *gin.Engine
}

func New(cfg config.Config, log *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	db, err := newPostgres(cfg.PG.DSN)
	if err != nil {
		return nil, err
	}
	a.db = db
	log.Info("postgres connected")

	rdb, err := newRedis(cfg.Redis)
	if err != nil {
		db.Close()
		return nil, err
	}
	a.redis = rdb
	log.Info("redis connected", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)

	if err := runMigrations(cfg.PG.DSN, cfg.PG.MigrationsDir); err != nil {
		_ = a.redis.Close()
		a.db.Close()
		return nil, err
	}
	log.Info("migrations applied", "dir", cfg.PG.MigrationsDir)

	a.router = newRouter(cfg, log, a.db, a.redis)
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// Close releases Redis and the pg pool. pgxpool.Close waits for acquired
// connections, so it is bounded by ctx.
func (a *App) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if a.redis != nil {
			if err := a.redis.Close(); err != nil {
				a.log.Warn("redis close", "error", err)
			}
		}
		if a.db != nil {
			a.db.Close()
		}
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("close: %w", ctx.Err())
	}
}

func newPostgres(dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

func runMigrations(dsn string, migrationsDir string) error {
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("goose open db: %w", err)
	}
	defer db.Close()

	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func newRouter(cfg config.Config, log *slog.Logger, db *pgxpool.Pool, rdb *redis.Client) *gin.Engine {
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	resp := response.New(!cfg.App.IsProduction(), log)
	m := metrics.New()

	r := gin.New()
	r.Use(resp.Recovery())
	r.Use(logger.Requests(log, cfg.Session.CookieName))
	r.Use(m.Middleware())
	r.Use(newCORS(cfg.HTTP.CORSOrigins))
	r.NoRoute(resp.NotFoundRoute)

	Setup(r, Deps{
		Config:   cfg,
		Log:      log,
		Resp:     resp,
		Metrics:  m,
		DB:       db,
		Redis:    rdb,
		Checkers: []Checker{pgChecker{db}, redisChecker{rdb}},
	})
	return r
}

// newCORS allows credentialed requests from the configured origins only;
// a wildcard origin cannot carry the session cookie.
func newCORS(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions, http.MethodHead},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Cookie"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// Checker is a dependency pinged by /health.
type Checker interface {
	Name() string
	Ping(ctx context.Context) error
}

type pgChecker struct{ db *pgxpool.Pool }

func (pgChecker) Name() string                     { return "postgres" }
func (p pgChecker) Ping(ctx context.Context) error { return p.db.Ping(ctx) }

type redisChecker struct{ rdb *redis.Client }

func (redisChecker) Name() string                     { return "redis" }
func (r redisChecker) Ping(ctx context.Context) error { return r.rdb.Ping(ctx).Err() }
