package repository

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderPredicates(t *testing.T, preds []Predicate) (string, []interface{}) {
	t.Helper()
	and := make(sq.And, len(preds))
	for i, p := range preds {
		and[i] = p
	}
	query, args, err := and.ToSql()
	require.NoError(t, err)
	return query, args
}

func TestFiltersBuildDropsAbsentValues(t *testing.T) {
	filters := clubConfig().Filters

	absentSets := []map[string]any{
		nil,
		{},
		{"name": "", "abbreviation": nil},
		{"name": nil, "search": "", "memberId": ""},
		{"createdAfter": "", "name": 0, "abbreviation": false},
	}
	for _, values := range absentSets {
		assert.Empty(t, filters.Build(values), "%v", values)
	}
}

func TestFiltersBuildIgnoresUnknownKeys(t *testing.T) {
	filters := clubConfig().Filters

	preds := filters.Build(map[string]any{
		"colour":      "red",
		"DROP TABLE":  "clubs",
		"name":        "Chess",
		"abbreviaton": "typo",
	})
	require.Len(t, preds, 1)
	assert.Equal(t, "name", preds[0].Key)
}

func TestFiltersBuildChessScenario(t *testing.T) {
	preds := clubConfig().Filters.Build(map[string]any{"name": "Chess", "abbreviation": ""})

	require.Len(t, preds, 1)
	query, args := renderPredicates(t, preds)
	assert.Equal(t, "(clubs.name = ?)", query)
	assert.Equal(t, []interface{}{"Chess"}, args)
}

func TestFiltersBuildIsDeterministic(t *testing.T) {
	filters := clubConfig().Filters
	values := map[string]any{"search": "ch", "name": "Chess", "memberId": "u1", "abbreviation": "CHS"}

	first, firstArgs := renderPredicates(t, filters.Build(values))
	for i := 0; i < 20; i++ {
		again, againArgs := renderPredicates(t, filters.Build(values))
		assert.Equal(t, first, again)
		assert.Equal(t, firstArgs, againArgs)
	}

	preds := filters.Build(values)
	keys := make([]string, len(preds))
	for i, p := range preds {
		keys[i] = p.Key
	}
	assert.Equal(t, []string{"abbreviation", "memberId", "name", "search"}, keys)
}

func TestPredicateKinds(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		value  any
		query  string
		args   []interface{}
	}{
		{
			name:   "equality",
			filter: Equal(KindString, "t.game"),
			value:  "chess",
			query:  "t.game = ?",
			args:   []interface{}{"chess"},
		},
		{
			name:   "case-insensitive substring escapes wildcards",
			filter: ContainsFold("t.name"),
			value:  "100%_Fun",
			query:  `LOWER(t.name) LIKE ? ESCAPE '\'`,
			args:   []interface{}{`%100\%\_fun%`},
		},
		{
			name:   "lower bound",
			filter: AtLeast(KindInt, "s.sequence"),
			value:  "2",
			query:  "s.sequence >= ?",
			args:   []interface{}{int64(2)},
		},
		{
			name:   "upper bound",
			filter: AtMost(KindInt, "s.sequence"),
			value:  5,
			query:  "s.sequence <= ?",
			args:   []interface{}{int64(5)},
		},
		{
			name:   "membership in subquery",
			filter: InSubquery(KindString, "g.id", "SELECT group_id FROM group_members WHERE user_id = ?"),
			value:  "u1",
			query:  "g.id IN (SELECT group_id FROM group_members WHERE user_id = ?)",
			args:   []interface{}{"u1"},
		},
		{
			name:   "exists",
			filter: ExistsWhen("SELECT 1 FROM stages WHERE stages.tournament_id = t.id"),
			value:  "true",
			query:  "EXISTS (SELECT 1 FROM stages WHERE stages.tournament_id = t.id)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preds := Filters{"k": tt.filter}.Build(map[string]any{"k": tt.value})
			require.Len(t, preds, 1)
			query, args, err := preds[0].ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.query, query)
			if tt.args == nil {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.args, args)
			}
		})
	}
}

func TestFiltersBuildSkipsUnreadableAndZeroValues(t *testing.T) {
	filters := Filters{
		"minSequence": AtLeast(KindInt, "s.sequence"),
		"isPublic":    Equal(KindBool, "t.is_public"),
	}

	// "0" and "false" read as zero values and therefore count as absent
	assert.Empty(t, filters.Build(map[string]any{"minSequence": "0", "isPublic": "false"}))
	assert.Empty(t, filters.Build(map[string]any{"minSequence": "many", "isPublic": "perhaps"}))
	assert.Len(t, filters.Build(map[string]any{"minSequence": "1", "isPublic": "true"}), 2)
}

func TestTimeRangesFollowDialect(t *testing.T) {
	filters := Filters{
		"after":  AtLeast(KindTime, "t.start_date"),
		"before": AtMost(KindTime, "t.start_date"),
		"minSeq": AtLeast(KindInt, "s.sequence"),
	}
	values := map[string]any{"after": "2024-03-01", "before": "2024-04-01", "minSeq": 2}

	query, _ := renderPredicates(t, filters.Build(values))
	assert.Equal(t, "(t.start_date >= ? AND t.start_date <= ? AND s.sequence >= ?)", query)

	query, args := renderPredicates(t, filters.BuildFor(DialectSQLite, values))
	assert.Equal(t, "(datetime(t.start_date) >= datetime(?) AND datetime(t.start_date) <= datetime(?) AND s.sequence >= ?)", query)
	assert.Len(t, args, 3)

	assert.Equal(t, DialectSQLite, DialectFor("sqlite3"))
	assert.Equal(t, DialectStandard, DialectFor("pgx"))
}
