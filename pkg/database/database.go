// Package database opens the PostgreSQL pool (pgx through database/sql) and
// ties its readiness and teardown to the lifecycle coordinator.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/soundslike/pkg/lifecycle"
)

// ErrNotReady wraps every failed Ping.
var ErrNotReady = errors.New("database not ready")

// System owns the connection pool.
type System interface {
	Connection() *sql.DB
	// Ping checks connectivity, bounded by the configured conn_timeout.
	Ping(ctx context.Context) error
	// Ready reports whether a ping has succeeded since Start.
	Ready() bool
	Start(lc *lifecycle.Coordinator) error
}

type database struct {
	pool    *sql.DB
	logger  *slog.Logger
	timeout time.Duration
	ready   atomic.Bool
}

// New configures the pool without dialing; sql.Open only validates the DSN.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	pool, err := sql.Open("pgx", cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &database{
		pool:    pool,
		logger:  logger.With("system", "database", "host", cfg.Host, "name", cfg.Name),
		timeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func (d *database) Connection() *sql.DB { return d.pool }

func (d *database) Ready() bool { return d.ready.Load() }

func (d *database) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.pool.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrNotReady, err)
	}
	return nil
}

// Start pings once during startup. When that fails the service still starts
// but reports not ready while a background loop keeps pinging every
// conn_timeout until it succeeds or the coordinator shuts down.
func (d *database) Start(lc *lifecycle.Coordinator) error {
	ctx := lc.Context()

	lc.OnStartup(func() {
		err := d.Ping(ctx)
		if err == nil {
			d.markReady()
			return
		}
		d.logger.Warn("database unreachable, retrying", "error", err)
		go d.retry(ctx)
	})

	lc.OnShutdown(func() {
		<-ctx.Done()
		d.ready.Store(false)

		if err := d.pool.Close(); err != nil {
			d.logger.Error("close database", "error", err)
			return
		}
		d.logger.Info("database closed")
	})

	return nil
}

func (d *database) retry(ctx context.Context) {
	ticker := time.NewTicker(d.timeout)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.Ping(ctx); err != nil {
				d.logger.Debug("database ping failed", "error", err)
				continue
			}
			d.markReady()
			return
		}
	}
}

func (d *database) markReady() {
	d.ready.Store(true)
	d.logger.Info("database ready")
}
