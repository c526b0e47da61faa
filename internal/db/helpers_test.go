package db

import (
	"context"
	"testing"

	"arenad/internal/repository"

	"github.com/stretchr/testify/require"
)

// newTestDB opens a migrated private in-memory database
func newTestDB(t *testing.T) *DB {
	t.Helper()

	database, err := New(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, database.Migrate())
	return database
}

func newTestRepos(t *testing.T) (*DB, *Repositories) {
	t.Helper()
	database := newTestDB(t)
	repos, err := NewRepositories(database, Options{})
	require.NoError(t, err)
	return database, repos
}

// mustCreate creates a row through repo and returns it
func mustCreate(t *testing.T, repo repository.Writer, values map[string]any) repository.Row {
	t.Helper()
	res, err := repo.CreateEntity(context.Background(), values)
	require.NoError(t, err)
	row, ok := res.Row()
	require.True(t, ok, "create returned no row")
	return row
}

func ids(rows []repository.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.String("id")
	}
	return out
}
