package dbpool

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/todo-1m/webclient/internal/platform/env"
)

// Session traffic is light; the pool stays small.
const (
	defaultMinConns        = 1
	defaultMaxConns        = 8
	defaultMaxConnLifetime = 30 * time.Minute
	defaultMaxConnIdleTime = 5 * time.Minute
	defaultHealthCheck     = 30 * time.Second
	defaultConnectTimeout  = 5 * time.Second
)

// New opens a pool and pings it.
func New(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	minConns := env.Int("DB_MIN_CONNS", defaultMinConns)
	maxConns := env.Int("DB_MAX_CONNS", defaultMaxConns)
	if minConns < 0 {
		minConns = defaultMinConns
	}
	if maxConns <= 0 {
		maxConns = defaultMaxConns
	}
	if minConns > maxConns {
		minConns = maxConns
	}

	cfg.MinConns = int32(minConns)
	cfg.MaxConns = int32(maxConns)
	cfg.MaxConnLifetime = env.Duration("DB_MAX_CONN_LIFETIME", defaultMaxConnLifetime)
	cfg.MaxConnIdleTime = env.Duration("DB_MAX_CONN_IDLE_TIME", defaultMaxConnIdleTime)
	cfg.HealthCheckPeriod = env.Duration("DB_HEALTH_CHECK_PERIOD", defaultHealthCheck)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, env.Duration("DB_CONNECT_TIMEOUT", defaultConnectTimeout))
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
