// Package migrations creates the students table.
//
// There is a single migration per dialect, embedded into the binary and
// applied with golang-migrate. Running Up on an already migrated database
// is a no-op, so it is safe on every startup.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	msqlite3 "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sqlite3/*.sql postgres/*.sql
var files embed.FS

// URL returns the golang-migrate database URL for a driver/DSN pair.
// Postgres DSNs must already be in URL form (postgres://...).
func URL(driver, dsn string) (string, error) {
	switch driver {
	case "sqlite3":
		return "sqlite3://" + dsn, nil
	case "postgres":
		return dsn, nil
	default:
		return "", fmt.Errorf("migrations: unsupported driver %q", driver)
	}
}

// Up applies every pending migration for driver.
//
// sqlite3 is migrated through db itself: an in-memory database exists only
// on the connection that opened it, so a second connection would migrate
// a different database. postgres is migrated over its own connection to dsn.
func Up(db *sql.DB, driver, dsn string, log *slog.Logger) error {
	src, err := iofs.New(files, driver)
	if err != nil {
		return fmt.Errorf("migrations: open source: %w", err)
	}

	switch driver {
	case "sqlite3":
		drv, err := msqlite3.WithInstance(db, &msqlite3.Config{})
		if err != nil {
			_ = src.Close()
			return fmt.Errorf("migrations: init: %w", err)
		}
		m, err := migrate.NewWithInstance("iofs", src, driver, drv)
		if err != nil {
			_ = src.Close()
			return fmt.Errorf("migrations: init: %w", err)
		}
		// m.Close would close db, which belongs to the caller.
		upErr := run(m, log)
		if err := src.Close(); err != nil && upErr == nil {
			return fmt.Errorf("migrations: close source: %w", err)
		}
		return upErr

	case "postgres":
		dbURL, err := URL(driver, dsn)
		if err != nil {
			_ = src.Close()
			return err
		}
		m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
		if err != nil {
			return fmt.Errorf("migrations: init: %w", err)
		}
		upErr := run(m, log)
		srcErr, dbErr := m.Close()
		if upErr != nil {
			return upErr
		}
		if srcErr != nil {
			return fmt.Errorf("migrations: close source: %w", srcErr)
		}
		if dbErr != nil {
			return fmt.Errorf("migrations: close database: %w", dbErr)
		}
		return nil

	default:
		_ = src.Close()
		return fmt.Errorf("migrations: unsupported driver %q", driver)
	}
}

// run applies pending migrations and logs the resulting version.
func run(m *migrate.Migrate, log *slog.Logger) error {
	m.Log = &migrateLogger{log: log}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations: up: %w", err)
	}
	if version, dirty, err := m.Version(); err == nil {
		log.Debug("schema up to date",
			slog.Uint64("version", uint64(version)),
			slog.Bool("dirty", dirty))
	}
	return nil
}

// migrateLogger routes golang-migrate's output into slog.
type migrateLogger struct {
	log *slog.Logger
}

func (l *migrateLogger) Printf(format string, v ...any) {
	l.log.Info(fmt.Sprintf(format, v...))
}

func (l *migrateLogger) Verbose() bool { return false }
