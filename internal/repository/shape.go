package repository

import (
	"fmt"
	"sort"
	"strings"
)

// Shape is an opaque response-shape token, e.g. MINI, BASE or EXTENDED
type Shape string

// Normalize returns the canonical form of a shape token
func (s Shape) Normalize() Shape {
	return Shape(strings.ToUpper(strings.TrimSpace(string(s))))
}

// ShapeDefinition declares a shape as its base plus additional fields.
// Joins and GroupBy are what those additional fields need in order to be
// selectable; they accumulate along the base chain like the fields do.
type ShapeDefinition struct {
	Base    Shape
	Fields  FieldMap
	Joins   []JoinSpec
	GroupBy []string
}

// ShapeRegistry resolves shape tokens to projections and join plans.
// All compositions are computed once at construction.
type ShapeRegistry struct {
	fallback Shape
	shapes   []Shape
	chains   map[Shape][]Shape
	fields   map[Shape]FieldMap
	plans    map[Shape]JoinPlan
}

// NewShapeRegistry composes every definition. fallback is the shape unknown
// tokens resolve to and must itself be defined.
func NewShapeRegistry(fallback Shape, defs map[Shape]ShapeDefinition) (*ShapeRegistry, error) {
	norm := make(map[Shape]ShapeDefinition, len(defs))
	for s, def := range defs {
		key := s.Normalize()
		if key == "" {
			return nil, fmt.Errorf("shape token cannot be empty")
		}
		if _, dup := norm[key]; dup {
			return nil, fmt.Errorf("shape %s is defined twice", key)
		}
		def.Base = def.Base.Normalize()
		norm[key] = def
	}

	fallback = fallback.Normalize()
	if _, ok := norm[fallback]; !ok {
		return nil, fmt.Errorf("default shape %s is not defined", fallback)
	}

	r := &ShapeRegistry{
		fallback: fallback,
		chains:   make(map[Shape][]Shape, len(norm)),
		fields:   make(map[Shape]FieldMap, len(norm)),
		plans:    make(map[Shape]JoinPlan, len(norm)),
	}

	for s := range norm {
		chain, err := baseChain(s, norm)
		if err != nil {
			return nil, err
		}

		var fields FieldMap
		var plan JoinPlan
		for _, link := range chain {
			def := norm[link]
			fields, err = fields.merge(def.Fields)
			if err != nil {
				return nil, fmt.Errorf("shape %s: %w", s, err)
			}
			plan.Add(def.Joins...)
			plan.AddGroupBy(def.GroupBy...)
		}
		if plan.Grouped() {
			plan.AddGroupBy(fields.groupable()...)
		}

		r.shapes = append(r.shapes, s)
		r.chains[s] = chain
		r.fields[s] = fields
		r.plans[s] = plan
	}

	sort.Slice(r.shapes, func(i, j int) bool {
		li, lj := len(r.chains[r.shapes[i]]), len(r.chains[r.shapes[j]])
		if li != lj {
			return li < lj
		}
		return r.shapes[i] < r.shapes[j]
	})
	return r, nil
}

// baseChain walks base links from s to its root and returns them root first
func baseChain(s Shape, defs map[Shape]ShapeDefinition) ([]Shape, error) {
	var chain []Shape
	seen := make(map[Shape]bool)
	for cur := s; cur != ""; cur = defs[cur].Base {
		if seen[cur] {
			return nil, fmt.Errorf("shape %s: composition cycle through %s", s, cur)
		}
		if _, ok := defs[cur]; !ok {
			return nil, fmt.Errorf("shape %s: unknown base shape %s", s, cur)
		}
		seen[cur] = true
		chain = append(chain, cur)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// Default returns the shape unknown tokens fall back to
func (r *ShapeRegistry) Default() Shape { return r.fallback }

// Known reports whether s names a defined shape
func (r *ShapeRegistry) Known(s Shape) bool {
	_, ok := r.fields[s.Normalize()]
	return ok
}

// Canonical maps s to the shape that will actually be served
func (r *ShapeRegistry) Canonical(s Shape) Shape {
	s = s.Normalize()
	if _, ok := r.fields[s]; ok {
		return s
	}
	return r.fallback
}

// Shapes lists every defined shape, leanest first
func (r *ShapeRegistry) Shapes() []Shape {
	out := make([]Shape, len(r.shapes))
	copy(out, r.shapes)
	return out
}

// Chain returns the composition order of s, root first
func (r *ShapeRegistry) Chain(s Shape) []Shape {
	chain := r.chains[r.Canonical(s)]
	out := make([]Shape, len(chain))
	copy(out, chain)
	return out
}

// Resolve returns the projection for s; unknown tokens resolve to the default
func (r *ShapeRegistry) Resolve(s Shape) FieldMap {
	return r.fields[r.Canonical(s)]
}

// Plan returns the joins and grouping keys needed to materialize s.
// The returned plan is a copy and may be extended by the caller.
func (r *ShapeRegistry) Plan(s Shape) JoinPlan {
	return r.plans[r.Canonical(s)].Merge(JoinPlan{})
}
