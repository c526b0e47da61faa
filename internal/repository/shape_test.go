package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeRegistryComposition(t *testing.T) {
	cfg := clubConfig()
	r, err := NewShapeRegistry(cfg.DefaultShape, cfg.Shapes)
	require.NoError(t, err)

	assert.Equal(t, []Shape{"MINI", "MINI_WITH_LOGO", "BASE", "EXTENDED"}, r.Shapes())
	assert.Equal(t, []Shape{"MINI", "MINI_WITH_LOGO", "BASE", "EXTENDED"}, r.Chain("EXTENDED"))

	t.Run("every shape is a superset of its base", func(t *testing.T) {
		for s, def := range cfg.Shapes {
			if def.Base == "" {
				continue
			}
			assert.True(t, r.Resolve(s).Contains(r.Resolve(def.Base)), "%s must contain %s", s, def.Base)
			assert.Greater(t, r.Resolve(s).Len(), r.Resolve(def.Base).Len())
		}
	})

	t.Run("fields keep composition order", func(t *testing.T) {
		assert.Equal(t,
			[]string{"id", "name", "abbreviation", "logo", "description", "createdAt", "memberCount"},
			r.Resolve("EXTENDED").Paths())
	})

	t.Run("unknown shape resolves like the default", func(t *testing.T) {
		for _, token := range []Shape{"", "NOPE", "extended_plus", "  "} {
			assert.Equal(t, r.Resolve(r.Default()), r.Resolve(token), "token %q", token)
			assert.Equal(t, r.Plan(r.Default()), r.Plan(token), "token %q", token)
			assert.Equal(t, Shape("BASE"), r.Canonical(token))
		}
	})

	t.Run("tokens are case insensitive", func(t *testing.T) {
		assert.True(t, r.Known("mini"))
		assert.Equal(t, r.Resolve("MINI"), r.Resolve(" mini "))
	})

	t.Run("only aggregate shapes join and group", func(t *testing.T) {
		assert.Equal(t, 0, r.Plan("BASE").Len())
		assert.False(t, r.Plan("BASE").Grouped())

		ext := r.Plan("EXTENDED")
		assert.True(t, ext.Has("club_members"))
		assert.True(t, ext.Grouped())
		assert.Equal(t, "clubs.id", ext.GroupBy()[0])
		assert.Contains(t, ext.GroupBy(), "clubs.name")
	})

	t.Run("plans are copies", func(t *testing.T) {
		p := r.Plan("BASE")
		p.Add(Left("players", "1 = 1"))
		assert.False(t, r.Plan("BASE").Has("players"))
	})
}

func TestShapeRegistryErrors(t *testing.T) {
	mini := ShapeDefinition{Fields: NewFieldMap(F("id", Text("t.id")))}

	tests := []struct {
		name     string
		fallback Shape
		defs     map[Shape]ShapeDefinition
	}{
		{
			name:     "undefined default",
			fallback: "BASE",
			defs:     map[Shape]ShapeDefinition{"MINI": mini},
		},
		{
			name:     "unknown base",
			fallback: "MINI",
			defs: map[Shape]ShapeDefinition{
				"MINI": mini,
				"BASE": {Base: "MISSING", Fields: NewFieldMap(F("name", Text("t.name")))},
			},
		},
		{
			name:     "cycle",
			fallback: "A",
			defs: map[Shape]ShapeDefinition{
				"A": {Base: "B", Fields: NewFieldMap(F("a", Text("t.a")))},
				"B": {Base: "A", Fields: NewFieldMap(F("b", Text("t.b")))},
			},
		},
		{
			name:     "field redefinition",
			fallback: "MINI",
			defs: map[Shape]ShapeDefinition{
				"MINI": mini,
				"BASE": {Base: "MINI", Fields: NewFieldMap(F("id", Text("t.other")))},
			},
		},
		{
			name:     "same token twice",
			fallback: "MINI",
			defs: map[Shape]ShapeDefinition{
				"MINI": mini,
				"mini": mini,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewShapeRegistry(tt.fallback, tt.defs)
			assert.Error(t, err)
		})
	}
}
