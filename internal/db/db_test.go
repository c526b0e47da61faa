package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(&Config{Driver: "mysql", DSN: "whatever"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestNewCreatesDatabaseDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "arena.db")
	cfg := DefaultConfig()
	cfg.DSN = path

	database, err := New(cfg)
	require.NoError(t, err)
	defer database.Close()

	_, err = os.Stat(filepath.Dir(path))
	assert.NoError(t, err)
	assert.Equal(t, "sqlite3", database.Driver())
}

func TestHealthCheck(t *testing.T) {
	database := newTestDB(t)
	assert.NoError(t, database.HealthCheck(context.Background()))

	database.Close()
	assert.Error(t, database.HealthCheck(context.Background()))
}

func TestMigrateIsIdempotent(t *testing.T) {
	database := newTestDB(t)
	require.NoError(t, database.Migrate())

	info, err := database.GetCurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), info.Version)
	assert.False(t, info.Dirty)

	for _, table := range []string{"users", "user_groups", "group_members", "tournaments", "stages", "rosters", "roster_members", "participations", "lfp_posts"} {
		var n int
		err := database.Get(&n, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table)
		require.NoError(t, err)
		assert.Equal(t, 1, n, table)
	}
}

func TestMigrateDown(t *testing.T) {
	database := newTestDB(t)
	require.NoError(t, database.MigrateDown(1))

	info, err := database.GetCurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(0), info.Version)

	var n int
	require.NoError(t, database.Get(&n, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'tournaments'"))
	assert.Equal(t, 0, n)

	// and back up again
	require.NoError(t, database.Migrate())
	info, err = database.GetCurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), info.Version)
}

func TestTransaction(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	err := database.Transaction(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.Exec("INSERT INTO users (id, username) VALUES ('u1', 'alice')")
		return err
	})
	require.NoError(t, err)

	boom := fmt.Errorf("boom")
	err = database.Transaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.Exec("INSERT INTO users (id, username) VALUES ('u2', 'bob')"); err != nil {
			return err
		}
		return boom
	})
	assert.Equal(t, boom, err)

	var n int
	require.NoError(t, database.Get(&n, "SELECT COUNT(*) FROM users"))
	assert.Equal(t, 1, n)
}

func TestForeignKeysAreEnforced(t *testing.T) {
	database := newTestDB(t)
	_, err := database.Exec("INSERT INTO rosters (id, name, group_id) VALUES ('r1', 'A', 'missing')")
	assert.Error(t, err)
}

func TestForeignKeysOnEveryConnection(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DSN = filepath.Join(t.TempDir(), "arena.db")
	cfg.MaxOpenConns = 4

	database, err := New(cfg)
	require.NoError(t, err)
	defer database.Close()
	require.NoError(t, database.Migrate())

	ctx := context.Background()
	conns := make([]*sqlx.Conn, 3)
	for i := range conns {
		conns[i], err = database.Connx(ctx)
		require.NoError(t, err)
		defer conns[i].Close()
	}

	for i, conn := range conns {
		var on int
		require.NoError(t, conn.GetContext(ctx, &on, "PRAGMA foreign_keys"))
		assert.Equal(t, 1, on, "connection %d", i)
	}
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "arena.db?_foreign_keys=on", sqliteDSN("arena.db"))
	assert.Equal(t, "file:arena.db?cache=shared&_foreign_keys=on", sqliteDSN("file:arena.db?cache=shared"))
	assert.Equal(t, "arena.db?_fk=1", sqliteDSN("arena.db?_fk=1"))
}
