package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutatorCreate(t *testing.T) {
	db := newTestStore(t)
	m := NewMutator(clubEntity)
	ctx := context.Background()

	res, err := m.Create(ctx, db, map[string]any{
		"name":         "Go Club",
		"abbreviation": "GO",
		"ownerId":      "ignored",
	})
	require.NoError(t, err)
	require.False(t, res.Empty())

	row, ok := res.Row()
	require.True(t, ok)
	assert.NotEmpty(t, row.String("id"))
	assert.Equal(t, "Go Club", row.Get("name"))
	assert.Equal(t, []string{"id", "name", "abbreviation", "description", "logo", "createdAt", "updatedAt"}, row.Keys())
	assert.IsType(t, time.Time{}, row.Get("createdAt"))

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM clubs"))
	assert.Equal(t, 1, count)
}

func TestMutatorCreateKeepsGivenKey(t *testing.T) {
	db := newTestStore(t)
	res, err := NewMutator(clubEntity).Create(context.Background(), db, map[string]any{"id": "fixed", "name": "Fixed"})
	require.NoError(t, err)
	row, _ := res.Row()
	assert.Equal(t, "fixed", row.String("id"))
}

func TestMutatorCreateConflictIsEmpty(t *testing.T) {
	db := newTestStore(t)
	players := Entity{
		Name:                "player",
		Table:               "players",
		PrimaryKey:          "id",
		Columns:             []Column{C("id", "id"), C("handle", "handle")},
		GenerateID:          true,
		OnConflictDoNothing: true,
	}
	m := NewMutator(players)
	ctx := context.Background()

	first, err := m.Create(ctx, db, map[string]any{"handle": "magnus"})
	require.NoError(t, err)
	assert.False(t, first.Empty())

	second, err := m.Create(ctx, db, map[string]any{"handle": "magnus"})
	require.NoError(t, err)
	assert.True(t, second.Empty())
}

func TestMutatorCreateSurfacesStoreErrors(t *testing.T) {
	db := newTestStore(t)
	_, err := NewMutator(clubEntity).Create(context.Background(), db, map[string]any{"abbreviation": "NN"})
	assert.Error(t, err, "name is NOT NULL")
}

func TestMutatorUpdate(t *testing.T) {
	db := newTestStore(t)
	seedClub(t, db, "c1", "Chess", "CHS", 0)
	m := NewMutator(clubEntity)
	m.now = func() time.Time { return time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	t.Run("patches and stamps updated_at", func(t *testing.T) {
		res, err := m.Update(ctx, db, "c1", map[string]any{"description": "Board games", "id": "hijack"})
		require.NoError(t, err)
		row, ok := res.Row()
		require.True(t, ok)
		assert.Equal(t, "c1", row.Get("id"))
		assert.Equal(t, "Board games", row.Get("description"))
		assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), row.Get("updatedAt"))
	})

	t.Run("empty patch reads the row back", func(t *testing.T) {
		res, err := m.Update(ctx, db, "c1", map[string]any{"unknown": 1})
		require.NoError(t, err)
		row, ok := res.Row()
		require.True(t, ok)
		assert.Equal(t, "Board games", row.Get("description"))
	})

	t.Run("missing key is empty", func(t *testing.T) {
		res, err := m.Update(ctx, db, "nope", map[string]any{"name": "x"})
		require.NoError(t, err)
		assert.True(t, res.Empty())

		res, err = m.Update(ctx, db, "nope", nil)
		require.NoError(t, err)
		assert.True(t, res.Empty())
	})
}

func TestMutatorDelete(t *testing.T) {
	db := newTestStore(t)
	seedClub(t, db, "c1", "Chess", "CHS", 0)
	m := NewMutator(clubEntity)
	ctx := context.Background()

	res, err := m.Delete(ctx, db, "c1")
	require.NoError(t, err)
	row, ok := res.Row()
	require.True(t, ok)
	assert.Equal(t, "Chess", row.Get("name"))

	res, err = m.Delete(ctx, db, "c1")
	require.NoError(t, err)
	assert.True(t, res.Empty())
}

func TestMutatorAssignmentsCoerceByColumnKind(t *testing.T) {
	e := Entity{
		Name: "stage", Table: "stages", PrimaryKey: "id",
		Columns: []Column{
			C("id", "id"),
			C("sequence", "sequence").Typed(KindInt),
			C("is_public", "isPublic").Typed(KindBool),
			C("starts_at", "startDate").Typed(KindTime),
		},
	}
	cols, vals := NewMutator(e).assignments(map[string]any{
		"startDate": "",
		"isPublic":  "true",
		"sequence":  float64(3),
		"other":     "dropped",
	})
	assert.Equal(t, []string{"sequence", "is_public", "starts_at"}, cols)
	assert.Equal(t, []any{int64(3), true, nil}, vals)
}
