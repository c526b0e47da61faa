package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"arenad/internal/constants"
	"arenad/internal/logger"
	"arenad/internal/xdg"

	"github.com/pelletier/go-toml/v2"
)

// GlobalConfig represents the global arena configuration
type GlobalConfig struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
	Query    QueryConfig    `toml:"query"`
}

type ServerConfig struct {
	Host            string        `toml:"host"`             // Bind address (default 0.0.0.0)
	Port            int           `toml:"port"`             // Server port (default 8080)
	ReadTimeout     time.Duration `toml:"read_timeout"`     // e.g. "10s"
	WriteTimeout    time.Duration `toml:"write_timeout"`    // e.g. "10s"
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"` // e.g. "30s"
	AllowOrigins    []string      `toml:"allow_origins"`    // CORS origins
}

type DatabaseConfig struct {
	Driver          string        `toml:"driver"` // sqlite3 or pgx
	DSN             string        `toml:"dsn" example:"~/.local/share/arena/arena.db"`
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `toml:"conn_max_idle_time"`
	AutoMigrate     bool          `toml:"auto_migrate"` // Run migrations on serve
}

type LoggingConfig struct {
	Level      string `toml:"level"`  // debug, info, warn, error
	Format     string `toml:"format"` // text or json
	File       string `toml:"file"`   // Optional rotating log file
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

type QueryConfig struct {
	DefaultPageSize int `toml:"default_page_size"` // Served when page or pageSize is missing
	MaxPageSize     int `toml:"max_page_size"`     // Larger requests are rejected
}

// DefaultGlobalConfig returns the default global configuration
func DefaultGlobalConfig() *GlobalConfig {
	dsn := constants.DefaultDatabaseFile
	if dataDir, err := xdg.DataDir(); err == nil {
		dsn = filepath.Join(dataDir, constants.DefaultDatabaseFile)
	}

	return &GlobalConfig{
		Server: ServerConfig{
			Host:            constants.DefaultServerHost,
			Port:            constants.DefaultServerPort,
			ReadTimeout:     constants.DefaultServerReadTimeout,
			WriteTimeout:    constants.DefaultServerWriteTimeout,
			ShutdownTimeout: constants.DefaultServerShutdownTimeout,
			AllowOrigins:    []string{"*"},
		},
		Database: DatabaseConfig{
			Driver:          constants.DriverSQLite,
			DSN:             dsn,
			MaxOpenConns:    constants.DefaultMaxOpenConnections,
			MaxIdleConns:    constants.DefaultMaxIdleConnections,
			ConnMaxLifetime: constants.DefaultConnectionTimeout,
			ConnMaxIdleTime: constants.DefaultIdleTimeout,
			AutoMigrate:     true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  constants.DefaultLogMaxSizeMB,
			MaxBackups: constants.DefaultLogMaxBackups,
			MaxAgeDays: constants.DefaultLogMaxAgeDays,
		},
		Query: QueryConfig{
			DefaultPageSize: constants.DefaultPageSize,
			MaxPageSize:     constants.MaxPageSize,
		},
	}
}

// GetConfigPath returns the XDG path of config.toml
func GetConfigPath() (string, error) {
	return xdg.ConfigFile()
}

// LoadGlobalConfig loads the global configuration from XDG config directory
func LoadGlobalConfig() (*GlobalConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadGlobalConfigFrom(configPath)
}

// LoadGlobalConfigFrom loads the configuration at path. A missing file yields
// the defaults. Environment overrides are applied last.
func LoadGlobalConfigFrom(configPath string) (*GlobalConfig, error) {
	config := DefaultGlobalConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, err
	default:
		var loaded GlobalConfig
		if err := toml.Unmarshal(data, &loaded); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
		}
		applyDefaults(&loaded, config)
		config = &loaded
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}

	// Expand tilde paths
	if err := expandPaths(config); err != nil {
		return nil, err
	}

	return config, nil
}

// applyDefaults fills every missing value of config from defaults
func applyDefaults(config, defaults *GlobalConfig) {
	if config.Server.Host == "" {
		config.Server.Host = defaults.Server.Host
	}
	if config.Server.Port == 0 {
		config.Server.Port = defaults.Server.Port
	}
	if config.Server.ReadTimeout == 0 {
		config.Server.ReadTimeout = defaults.Server.ReadTimeout
	}
	if config.Server.WriteTimeout == 0 {
		config.Server.WriteTimeout = defaults.Server.WriteTimeout
	}
	if config.Server.ShutdownTimeout == 0 {
		config.Server.ShutdownTimeout = defaults.Server.ShutdownTimeout
	}
	if len(config.Server.AllowOrigins) == 0 {
		config.Server.AllowOrigins = defaults.Server.AllowOrigins
	}

	if config.Database.Driver == "" {
		config.Database.Driver = defaults.Database.Driver
	}
	if config.Database.DSN == "" {
		config.Database.DSN = defaults.Database.DSN
	}
	if config.Database.MaxOpenConns == 0 {
		config.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if config.Database.MaxIdleConns == 0 {
		config.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if config.Database.ConnMaxLifetime == 0 {
		config.Database.ConnMaxLifetime = defaults.Database.ConnMaxLifetime
	}
	if config.Database.ConnMaxIdleTime == 0 {
		config.Database.ConnMaxIdleTime = defaults.Database.ConnMaxIdleTime
	}

	if config.Logging.Level == "" {
		config.Logging.Level = defaults.Logging.Level
	}
	if config.Logging.Format == "" {
		config.Logging.Format = defaults.Logging.Format
	}
	if config.Logging.MaxSizeMB == 0 {
		config.Logging.MaxSizeMB = defaults.Logging.MaxSizeMB
	}
	if config.Logging.MaxBackups == 0 {
		config.Logging.MaxBackups = defaults.Logging.MaxBackups
	}
	if config.Logging.MaxAgeDays == 0 {
		config.Logging.MaxAgeDays = defaults.Logging.MaxAgeDays
	}

	if config.Query.DefaultPageSize == 0 {
		config.Query.DefaultPageSize = defaults.Query.DefaultPageSize
	}
	if config.Query.MaxPageSize == 0 {
		config.Query.MaxPageSize = defaults.Query.MaxPageSize
	}
}

// applyEnv applies ARENA_* environment overrides
func applyEnv(config *GlobalConfig) error {
	if v := os.Getenv("ARENA_DB_DRIVER"); v != "" {
		config.Database.Driver = v
	}
	if v := os.Getenv("ARENA_DB_DSN"); v != "" {
		config.Database.DSN = v
	}
	if v := os.Getenv("ARENA_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("ARENA_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid ARENA_PORT %q: %w", v, err)
		}
		config.Server.Port = port
	}
	return nil
}

// LoggerOptions converts the logging section for logger.Configure
func (g *GlobalConfig) LoggerOptions() logger.Options {
	return logger.Options{
		Level:      g.Logging.Level,
		Format:     g.Logging.Format,
		File:       g.Logging.File,
		MaxSizeMB:  g.Logging.MaxSizeMB,
		MaxBackups: g.Logging.MaxBackups,
		MaxAgeDays: g.Logging.MaxAgeDays,
		Compress:   true,
	}
}

// SaveGlobalConfig saves the global configuration to XDG config directory
func SaveGlobalConfig(config *GlobalConfig) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	return config.Save(configPath)
}

// Save saves the global configuration to the specified path
func (g *GlobalConfig) Save(path string) error {
	data, err := toml.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return os.WriteFile(path, data, constants.FilePermissions)
}

// Validate checks ranges and enumerations
func (g *GlobalConfig) Validate() error {
	return ValidateGlobalConfig(g)
}

// ValidateGlobalConfig validates the global configuration
func ValidateGlobalConfig(config *GlobalConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	// Validate port ranges
	if config.Server.Port < constants.MinPortNumber || config.Server.Port > constants.MaxPortNumber {
		return fmt.Errorf("invalid port: %d", config.Server.Port)
	}

	switch config.Database.Driver {
	case constants.DriverSQLite, constants.DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver: %q (want %s or %s)",
			config.Database.Driver, constants.DriverSQLite, constants.DriverPostgres)
	}
	if config.Database.DSN == "" {
		return fmt.Errorf("database dsn cannot be empty")
	}

	if config.Query.DefaultPageSize <= 0 {
		return fmt.Errorf("default page size must be positive")
	}
	if config.Query.MaxPageSize < config.Query.DefaultPageSize {
		return fmt.Errorf("max page size %d is below the default page size %d",
			config.Query.MaxPageSize, config.Query.DefaultPageSize)
	}

	switch config.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unsupported log format: %q", config.Logging.Format)
	}

	return nil
}

// expandPaths expands tilde paths in the configuration
func expandPaths(config *GlobalConfig) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	if config.Database.Driver == constants.DriverSQLite && strings.HasPrefix(config.Database.DSN, "~/") {
		config.Database.DSN = filepath.Join(homeDir, config.Database.DSN[2:])
	}

	// A bare file name lives in the XDG logs directory
	switch file := config.Logging.File; {
	case strings.HasPrefix(file, "~/"):
		config.Logging.File = filepath.Join(homeDir, file[2:])
	case file != "" && filepath.Base(file) == file:
		config.Logging.File = filepath.Join(xdg.LogsDir(), file)
	}

	return nil
}
