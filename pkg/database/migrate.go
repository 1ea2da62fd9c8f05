package database

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
)

// Migrate applies every pending up migration found in the driver's
// subdirectory of migrations ("postgres" or "sqlite").
//
// It uses its own connection built from MigrationURL so that closing the
// migrator never closes the application pool.
func Migrate(cfg *Config, migrations fs.FS, logger *slog.Logger) error {
	if err := cfg.ensureDir(); err != nil {
		return err
	}

	src, err := iofs.New(migrations, string(cfg.Driver))
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.MigrationURL())
	if err != nil {
		return fmt.Errorf("init migrator: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn("migrator close failed", "source_error", srcErr, "database_error", dbErr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}

	logger.Info("migrations applied", "driver", cfg.Driver, "version", version, "dirty", dirty)
	return nil
}
