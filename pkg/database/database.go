// Package database opens and manages the SQL connection pool for either
// PostgreSQL (pgx) or SQLite (go-sqlite3) and applies embedded migrations.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/pdf-annotator/pkg/lifecycle"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotReady is returned when the connection is used before Start.
var ErrNotReady = errors.New("database not ready")

// System owns the connection pool.
type System interface {
	Connection() *sql.DB
	Driver() Driver
	Start(lc *lifecycle.Coordinator) error
}

type database struct {
	cfg    *Config
	conn   *sql.DB
	logger *slog.Logger
}

// New opens the pool without connecting. Start verifies connectivity.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	conn, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	return &database{
		cfg:    cfg,
		conn:   conn,
		logger: logger.With("system", "database"),
	}, nil
}

// Open creates a configured *sql.DB for cfg.
func Open(cfg *Config) (*sql.DB, error) {
	if err := cfg.ensureDir(); err != nil {
		return nil, err
	}

	conn, err := sql.Open(cfg.DriverName(), cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return conn, nil
}

func (d *database) Connection() *sql.DB {
	return d.conn
}

func (d *database) Driver() Driver {
	return d.cfg.Driver
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	d.logger.Info("starting database system", "driver", d.cfg.Driver)

	ctx, cancel := context.WithTimeout(lc.Context(), d.cfg.ConnTimeoutDuration())
	defer cancel()

	if err := d.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping: %v", ErrNotReady, err)
	}

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := d.conn.Close(); err != nil {
			d.logger.Error("database close failed", "error", err)
			return
		}
		d.logger.Info("database connection closed")
	})

	return nil
}
