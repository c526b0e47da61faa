// Package constants defines application-wide constants to avoid magic numbers
package constants

import "time"

// Network and Port Constants
const (
	// DefaultServerPort is the default port for the arena API server
	DefaultServerPort = 8080

	// DefaultServerHost is the default bind address
	DefaultServerHost = "0.0.0.0"
)

// File System Permissions
const (
	// DirPermissions is the standard directory permissions for arena directories
	DirPermissions = 0755

	// FilePermissions is the standard file permissions for arena config files
	FilePermissions = 0644
)

// Database Configuration
const (
	// DriverSQLite is the database/sql name of the SQLite driver
	DriverSQLite = "sqlite3"

	// DriverPostgres is the database/sql name of the PostgreSQL driver
	DriverPostgres = "pgx"

	// DefaultDatabaseFile is the SQLite file created under the data directory
	DefaultDatabaseFile = "arena.db"

	// DefaultMaxOpenConnections is the default maximum number of database connections
	DefaultMaxOpenConnections = 25

	// DefaultMaxIdleConnections is the default maximum number of idle database connections
	DefaultMaxIdleConnections = 5

	// DefaultConnectionTimeout is the default database connection lifetime
	DefaultConnectionTimeout = 5 * time.Minute

	// DefaultIdleTimeout is the default database idle connection timeout
	DefaultIdleTimeout = 1 * time.Minute

	// DefaultPingTimeout bounds the connectivity check when opening the database
	DefaultPingTimeout = 5 * time.Second
)

// HTTP Configuration
const (
	// DefaultServerReadTimeout is the default server read timeout
	DefaultServerReadTimeout = 10 * time.Second

	// DefaultServerWriteTimeout is the default server write timeout
	DefaultServerWriteTimeout = 10 * time.Second

	// DefaultServerShutdownTimeout is the default server graceful shutdown timeout
	DefaultServerShutdownTimeout = 30 * time.Second

	// DefaultRequestTimeout bounds every API request
	DefaultRequestTimeout = 30 * time.Second
)

// Pagination Constants
const (
	// DefaultPageSize is served when a list request does not supply both page and pageSize
	DefaultPageSize = 12

	// MaxPageSize is the maximum allowed page size to prevent resource exhaustion
	MaxPageSize = 100
)

// Logging
const (
	// DefaultLogMaxSizeMB is the size at which a log file is rotated
	DefaultLogMaxSizeMB = 100

	// DefaultLogMaxBackups is the number of rotated log files kept
	DefaultLogMaxBackups = 3

	// DefaultLogMaxAgeDays is how long rotated log files are kept
	DefaultLogMaxAgeDays = 28
)

// Network Port Validation
const (
	// MinPortNumber is the minimum valid TCP port number
	MinPortNumber = 1

	// MaxPortNumber is the maximum valid TCP port number
	MaxPortNumber = 65535
)

// Build information
var (
	// Version is overridden at build time with -ldflags "-X arena/internal/constants.Version=..."
	Version = "dev"
)
