package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// runMigrations brings the schema to the latest version.
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
func (s *SQLiteStore) SchemaVersion() (uint, bool, error) {
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

	dbDriver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		sourceDriver.Close()
		return nil, nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		sourceDriver.Close()
		return nil, nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, sourceDriver, nil
}
