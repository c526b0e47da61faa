package commands

import (
	"fmt"
	"io"
	"os"

	"arenad/internal/config"
	"arenad/internal/constants"
	"arenad/internal/db"
	"arenad/internal/logger"
	"arenad/internal/metrics"
)

// Env holds what commands share: the loaded configuration and, once a
// command needs it, the database and repositories. Everything is opened
// lazily so that config commands work without a database.
type Env struct {
	// ConfigPath overrides the XDG config file location when set
	ConfigPath string
	// Out receives command output
	Out io.Writer

	cfg     *config.GlobalConfig
	db      *db.DB
	repos   *db.Repositories
	metrics *metrics.Metrics
	closers []io.Closer
}

// NewEnv returns an Env writing to stdout
func NewEnv() *Env {
	return &Env{Out: os.Stdout}
}

// ResolvedConfigPath is the config file the Env reads
func (e *Env) ResolvedConfigPath() (string, error) {
	if e.ConfigPath != "" {
		return e.ConfigPath, nil
	}
	return config.GetConfigPath()
}

// Config loads, validates and caches the configuration, then configures the
// global logger from it
func (e *Env) Config() (*config.GlobalConfig, error) {
	if e.cfg != nil {
		return e.cfg, nil
	}

	path, err := e.ResolvedConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadGlobalConfigFrom(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}

	closer, err := logger.Configure(cfg.LoggerOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}
	e.closers = append(e.closers, closer)

	e.cfg = cfg
	return cfg, nil
}

// Metrics returns the process-wide metrics registry
func (e *Env) Metrics() *metrics.Metrics {
	if e.metrics == nil {
		e.metrics = metrics.New()
	}
	return e.metrics
}

// Database opens the configured database without touching its schema
func (e *Env) Database() (*db.DB, error) {
	if e.db != nil {
		return e.db, nil
	}

	cfg, err := e.Config()
	if err != nil {
		return nil, err
	}

	database, err := db.New(databaseConfig(cfg.Database))
	if err != nil {
		return nil, err
	}
	if err := e.Metrics().RegisterDB(database.DB.DB, "arena"); err != nil {
		logger.WithError(err).Debug("Database pool metrics not registered")
	}

	e.db = database
	e.closers = append(e.closers, database)
	return database, nil
}

// Repositories opens the database, migrates it when auto_migrate is on, and
// builds the domain repositories
func (e *Env) Repositories() (*db.Repositories, error) {
	if e.repos != nil {
		return e.repos, nil
	}

	database, err := e.Database()
	if err != nil {
		return nil, err
	}
	if e.cfg.Database.AutoMigrate {
		if err := database.Migrate(); err != nil {
			return nil, err
		}
	}

	repos, err := db.NewRepositories(database, db.Options{
		Observer:        e.Metrics(),
		DefaultPageSize: e.cfg.Query.DefaultPageSize,
	})
	if err != nil {
		return nil, err
	}
	e.repos = repos
	return repos, nil
}

// Close releases everything the Env opened, newest first
func (e *Env) Close() error {
	var first error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	e.closers = nil
	e.db, e.repos = nil, nil
	return first
}

// databaseConfig maps the database section onto the store config. An
// in-memory SQLite database is pinned to one connection.
func databaseConfig(c config.DatabaseConfig) *db.Config {
	if c.Driver == constants.DriverSQLite && (c.DSN == ":memory:" || c.DSN == "file::memory:") {
		return db.InMemoryConfig()
	}
	return &db.Config{
		Driver:          c.Driver,
		DSN:             c.DSN,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		ConnMaxIdleTime: c.ConnMaxIdleTime,
	}
}
