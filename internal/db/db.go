package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// minConns covers the connection the registration listener keeps in LISTEN
// plus a few for request handling.
const minConns = 4

// PoolOptions tunes the pgx pool. Zero values keep the DSN's settings.
type PoolOptions struct {
	MaxConns        int32
	MaxConnIdleTime time.Duration
}

// poolConfig parses dsn and applies opts.
func poolConfig(dsn string, opts PoolOptions) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if cfg.MaxConns < minConns {
		cfg.MaxConns = minConns
	}
	if opts.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = opts.MaxConnIdleTime
	}
	return cfg, nil
}

// NewPool creates a pgx pool for the league database and pings it.
func NewPool(ctx context.Context, dsn string, opts PoolOptions, log *zap.SugaredLogger) (*pgxpool.Pool, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	cfg, err := poolConfig(dsn, opts)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Infow("database pool ready",
		"host", cfg.ConnConfig.Host,
		"database", cfg.ConnConfig.Database,
		"max_conns", cfg.MaxConns,
		"max_conn_idle", cfg.MaxConnIdleTime,
	)
	return pool, nil
}

// PoolOptionsFrom is a convenience for callers holding plain config values.
func PoolOptionsFrom(maxConns int, idle time.Duration) PoolOptions {
	return PoolOptions{MaxConns: int32(maxConns), MaxConnIdleTime: idle}
}
