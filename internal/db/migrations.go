package db

import (
	"embed"
	"errors"
	"fmt"

	"arenad/internal/constants"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/sqlite3/*.sql migrations/pgx/*.sql
var migrationsFS embed.FS

// MigrationInfo represents the state of the schema
type MigrationInfo struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

// migrator builds a migrate instance over the embedded scripts of the
// connection's driver. The instance borrows db's pool; it must not be closed.
func (db *DB) migrator() (*migrate.Migrate, error) {
	sourceDriver, err := iofs.New(migrationsFS, "migrations/"+db.config.Driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	var dbDriver string
	var dbInstance database.Driver

	switch db.config.Driver {
	case constants.DriverSQLite:
		dbDriver = "sqlite3"
		dbInstance, err = sqlite3.WithInstance(db.DB.DB, &sqlite3.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to create sqlite3 driver instance: %w", err)
		}
	case constants.DriverPostgres:
		dbDriver = "pgx5"
		dbInstance, err = migratepgx.WithInstance(db.DB.DB, &migratepgx.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx driver instance: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", db.config.Driver)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, dbDriver, dbInstance)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

// Migrate runs every pending up migration
func (db *DB) Migrate() error {
	m, err := db.migrator()
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// MigrateDown rolls back steps migrations; zero or less rolls back all of them
func (db *DB) MigrateDown(steps int) error {
	m, err := db.migrator()
	if err != nil {
		return err
	}

	if steps > 0 {
		err = m.Steps(-steps)
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	return nil
}

// GetCurrentVersion returns the current migration version; zero means no
// migration has been applied
func (db *DB) GetCurrentVersion() (MigrationInfo, error) {
	m, err := db.migrator()
	if err != nil {
		return MigrationInfo{}, err
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return MigrationInfo{}, nil
	}
	if err != nil {
		return MigrationInfo{}, fmt.Errorf("failed to get current version: %w", err)
	}
	return MigrationInfo{Version: version, Dirty: dirty}, nil
}
