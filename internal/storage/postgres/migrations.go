package postgres

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

func runMigrations(db *sql.DB) error {
	m, src, err := newMigrate(db)
	if err != nil {
		return err
	}
	defer src.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// SchemaVersion reports the applied migration version and whether the last
// migration failed halfway.
func (s *PostgresStore) SchemaVersion() (uint, bool, error) {
	m, src, err := newMigrate(s.db)
	if err != nil {
		return 0, false, err
	}
	defer src.Close()
	version, dirty, err := m.Version()
	if err != nil {
		return 0, false, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, dirty, nil
}

// newMigrate returns the migrate instance and its source driver. Callers
// close the source when done but never m, which would close db.
func newMigrate(db *sql.DB) (*migrate.Migrate, source.Driver, error) {
	sourceDriver, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	dbDriver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		sourceDriver.Close()
		return nil, nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		sourceDriver.Close()
		return nil, nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, sourceDriver, nil
}
