package db

import (
	"context"
	"testing"

	"arenad/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	_, repos := newTestRepos(t)

	for _, name := range repos.Resources() {
		repo, ok := repos.Lookup(name)
		require.True(t, ok, name)
		assert.NotEmpty(t, repo.Entity().Table)
		assert.True(t, repo.Shapes().Known(ShapeMini), name)
		assert.True(t, repo.Shapes().Known(ShapeBase), name)
	}

	_, ok := repos.Lookup("matches")
	assert.False(t, ok)
}

func TestDefaultShapesAndSorts(t *testing.T) {
	_, repos := newTestRepos(t)

	tests := []struct {
		repo  *repository.Primary
		shape repository.Shape
		sort  string
	}{
		{repos.Groups.Primary, GroupDefaultShape, GroupDefaultSort},
		{repos.Tournaments.Primary, TournamentDefaultShape, TournamentDefaultSort},
		{repos.Stages.Primary, StageDefaultShape, StageDefaultSort},
		{repos.Rosters.Primary, RosterDefaultShape, RosterDefaultSort},
		{repos.Participations.Primary, ParticipationDefaultShape, ParticipationDefaultSort},
		{repos.LFP.Primary, LFPDefaultShape, LFPDefaultSort},
		{repos.Users.Primary, UserDefaultShape, UserDefaultSort},
	}
	for _, tt := range tests {
		t.Run(tt.repo.Entity().Name, func(t *testing.T) {
			assert.Equal(t, tt.shape, tt.repo.Shapes().Default())
			assert.Equal(t, tt.sort, tt.repo.Sorts().Default().Key)
		})
	}
}

func TestStageSequenceRange(t *testing.T) {
	_, repos := newTestRepos(t)
	ctx := context.Background()
	mustCreate(t, repos.Tournaments, map[string]any{"id": "t1", "name": "Open"})
	for i, name := range []string{"Qualifier", "Groups", "Playoffs", "Final"} {
		mustCreate(t, repos.Stages, map[string]any{"id": name, "tournamentId": "t1", "name": name, "sequence": i + 1})
	}

	res, err := repos.Stages.GetQuery(ctx, repository.QueryDescriptor{
		Filters: map[string]any{"tournamentId": "t1", "minSequence": "2", "maxSequence": "3"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Groups", "Playoffs"}, ids(res.Rows))
	assert.Equal(t, int64(2), res.Rows[0].Get("sequence"))

	rows, err := repos.Stages.GetSingleQuery(ctx, "Final", ShapeExtended)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	tournament, ok := rows[0].Nested("tournament")
	require.True(t, ok)
	assert.Equal(t, "Open", tournament.Get("name"))
}

func TestLFPPosts(t *testing.T) {
	_, repos := newTestRepos(t)
	ctx := context.Background()
	mustCreate(t, repos.Groups, map[string]any{"id": "g1", "name": "Chess", "logo": "chess.png"})
	mustCreate(t, repos.LFP, map[string]any{"id": "p1", "groupId": "g1", "title": "Need a second board", "game": "chess"})
	mustCreate(t, repos.LFP, map[string]any{"id": "p2", "groupId": "g1", "title": "Looking for a coach", "game": "chess"})

	res, err := repos.LFP.GetQuery(ctx, repository.QueryDescriptor{
		Filters:   map[string]any{"search": "BOARD"},
		SortField: "title",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"p1"}, ids(res.Rows))
	group, ok := res.Rows[0].Nested("group")
	require.True(t, ok)
	assert.Equal(t, "chess.png", group.Get("logo"))

	// an unknown shape falls back to BASE
	res, err = repos.LFP.GetQuery(ctx, repository.QueryDescriptor{Shape: "EXTENDED", SortField: "title", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, repository.Shape("BASE"), res.Shape)
	assert.Equal(t, []string{"p2", "p1"}, ids(res.Rows))
}

func TestUserGroupCount(t *testing.T) {
	_, repos := newTestRepos(t)
	ctx := context.Background()
	mustCreate(t, repos.Users, map[string]any{"id": "u1", "username": "alice"})
	mustCreate(t, repos.Users, map[string]any{"id": "u2", "username": "bob"})
	mustCreate(t, repos.Groups, map[string]any{"id": "g1", "name": "One"})
	mustCreate(t, repos.Groups, map[string]any{"id": "g2", "name": "Two"})
	for _, g := range []string{"g1", "g2"} {
		_, err := repos.Groups.AddMember(ctx, g, "u2", RoleMember)
		require.NoError(t, err)
	}

	res, err := repos.Users.GetQuery(ctx, repository.QueryDescriptor{Shape: ShapeExtended, SortField: "groups", SortOrder: "desc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"u2", "u1"}, ids(res.Rows))
	assert.Equal(t, int64(2), res.Rows[0].Get("groupCount"))

	// usernames are unique
	_, err = repos.Users.CreateEntity(ctx, map[string]any{"username": "alice"})
	assert.Error(t, err)
}
