package repository

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinPlanDeduplicatesByTarget(t *testing.T) {
	p := NewJoinPlan(
		Left("groups", "groups.id = tournaments.group_id"),
		Left("groups", "groups.id = tournaments.group_id"),
		Inner("groups", "g2.id = tournaments.group_id").As("g2"),
	)
	p.Add(Left("groups", "something else"))

	require.Equal(t, 2, p.Len())
	assert.True(t, p.Has("groups"))
	assert.True(t, p.Has("g2"))
	assert.False(t, p.Has("rosters"))
}

func TestJoinPlanMerge(t *testing.T) {
	a := NewJoinPlan(Left("a", "a.id = t.a_id"))
	a.AddGroupBy("t.id")
	b := NewJoinPlan(Left("a", "a.id = t.a_id"), Inner("b", "b.id = t.b_id"))
	b.AddGroupBy("t.id", "b.name")

	m := a.Merge(b)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, []string{"t.id", "b.name"}, m.GroupBy())
	assert.Equal(t, 1, a.Len(), "merge must not modify the receiver")
}

func TestJoinPlanRendering(t *testing.T) {
	p := NewJoinPlan(
		Left("groups", "groups.id = tournaments.group_id"),
		Inner("stages", "s.tournament_id = tournaments.id").As("s"),
	)

	query, _, err := p.applyJoins(sq.Select("tournaments.id").From("tournaments")).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT tournaments.id FROM tournaments "+
			"LEFT JOIN groups ON groups.id = tournaments.group_id "+
			"INNER JOIN stages AS s ON s.tournament_id = tournaments.id",
		query)
}
