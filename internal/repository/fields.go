package repository

import (
	"fmt"
	"strings"
)

// aliasSeparator joins nested field names into a flat SQL column alias
const aliasSeparator = "__"

// Field is one output field of a projection: either a SQL expression
// or a nested FieldMap describing an embedded related entity.
type Field struct {
	Expr      string
	Kind      Kind
	Aggregate bool
	nested    *FieldMap
}

// Text projects a text column
func Text(expr string) Field { return Field{Expr: expr, Kind: KindString} }

// Int projects an integer column
func Int(expr string) Field { return Field{Expr: expr, Kind: KindInt} }

// Float projects a numeric column
func Float(expr string) Field { return Field{Expr: expr, Kind: KindFloat} }

// Bool projects a boolean column
func Bool(expr string) Field { return Field{Expr: expr, Kind: KindBool} }

// Time projects a timestamp column
func Time(expr string) Field { return Field{Expr: expr, Kind: KindTime} }

// Nested embeds a related entity under a single output field
func Nested(entries ...FieldEntry) Field {
	fm := NewFieldMap(entries...)
	return Field{nested: &fm}
}

// IsNested reports whether the field embeds a sub-projection
func (f Field) IsNested() bool { return f.nested != nil }

// Sub returns the embedded sub-projection, if any
func (f Field) Sub() (FieldMap, bool) {
	if f.nested == nil {
		return FieldMap{}, false
	}
	return *f.nested, true
}

// FieldEntry pairs an output name with its Field
type FieldEntry struct {
	Name  string
	Field Field
}

// F builds a FieldEntry
func F(name string, field Field) FieldEntry {
	return FieldEntry{Name: name, Field: field}
}

// FieldMap is an ordered mapping from output field name to Field.
// The zero value is an empty map. A FieldMap is never mutated after
// construction; merging always produces a new one.
type FieldMap struct {
	keys   []string
	fields map[string]Field
}

// NewFieldMap builds a FieldMap from entries in order. A repeated name keeps
// its first position and takes the last definition.
func NewFieldMap(entries ...FieldEntry) FieldMap {
	fm := FieldMap{fields: make(map[string]Field, len(entries))}
	for _, e := range entries {
		if _, exists := fm.fields[e.Name]; !exists {
			fm.keys = append(fm.keys, e.Name)
		}
		fm.fields[e.Name] = e.Field
	}
	return fm
}

// Keys returns the top-level output names in order
func (fm FieldMap) Keys() []string {
	out := make([]string, len(fm.keys))
	copy(out, fm.keys)
	return out
}

// Len returns the number of top-level fields
func (fm FieldMap) Len() int { return len(fm.keys) }

// Get returns the field stored under name
func (fm FieldMap) Get(name string) (Field, bool) {
	f, ok := fm.fields[name]
	return f, ok
}

// Paths returns every leaf as a dotted path ("affiliatedGroup.name"), in order
func (fm FieldMap) Paths() []string {
	var out []string
	fm.walk(nil, func(path []string, _ Field) {
		out = append(out, strings.Join(path, "."))
	})
	return out
}

// Contains reports whether every leaf path of other is present in fm
func (fm FieldMap) Contains(other FieldMap) bool {
	have := make(map[string]bool)
	for _, p := range fm.Paths() {
		have[p] = true
	}
	for _, p := range other.Paths() {
		if !have[p] {
			return false
		}
	}
	return true
}

// merge composes fm with extra. Nested maps present on both sides are merged
// recursively; redefining an existing leaf is rejected so that composition
// can only ever add fields.
func (fm FieldMap) merge(extra FieldMap) (FieldMap, error) {
	out := FieldMap{
		keys:   make([]string, 0, len(fm.keys)+len(extra.keys)),
		fields: make(map[string]Field, len(fm.keys)+len(extra.keys)),
	}
	for _, k := range fm.keys {
		out.keys = append(out.keys, k)
		out.fields[k] = fm.fields[k]
	}

	for _, k := range extra.keys {
		add := extra.fields[k]
		existing, exists := out.fields[k]
		if !exists {
			out.keys = append(out.keys, k)
			out.fields[k] = add
			continue
		}
		if !existing.IsNested() || !add.IsNested() {
			return FieldMap{}, fmt.Errorf("field %q is already defined", k)
		}
		merged, err := existing.nested.merge(*add.nested)
		if err != nil {
			return FieldMap{}, fmt.Errorf("%s.%w", k, err)
		}
		out.fields[k] = Field{nested: &merged}
	}
	return out, nil
}

// walk visits every leaf depth-first in declaration order
func (fm FieldMap) walk(prefix []string, visit func(path []string, f Field)) {
	for _, k := range fm.keys {
		f := fm.fields[k]
		path := append(append([]string(nil), prefix...), k)
		if f.IsNested() {
			f.nested.walk(path, visit)
			continue
		}
		visit(path, f)
	}
}

// selectColumns renders `expr AS "alias"` for every leaf
func (fm FieldMap) selectColumns() []string {
	var cols []string
	fm.walk(nil, func(path []string, f Field) {
		cols = append(cols, fmt.Sprintf("%s AS %q", f.Expr, strings.Join(path, aliasSeparator)))
	})
	return cols
}

// groupable returns the expressions of every non-aggregate leaf
func (fm FieldMap) groupable() []string {
	var out []string
	fm.walk(nil, func(_ []string, f Field) {
		if !f.Aggregate {
			out = append(out, f.Expr)
		}
	})
	return out
}

// build materializes one scanned record into a Row. values are in the
// order produced by selectColumns.
func (fm FieldMap) build(values []any) Row {
	i := 0
	row, _ := fm.buildAt(values, &i)
	return row
}

func (fm FieldMap) buildAt(values []any, i *int) (Row, bool) {
	row := newRow(len(fm.keys))
	anySet := false
	for _, k := range fm.keys {
		f := fm.fields[k]
		if f.IsNested() {
			sub, ok := f.nested.buildAt(values, i)
			if ok {
				row.Set(k, sub)
				anySet = true
			} else {
				// an unmatched outer join yields a null relation, not an empty object
				row.Set(k, nil)
			}
			continue
		}
		var v any
		if *i < len(values) {
			v = normalize(f.Kind, values[*i])
		}
		*i++
		if v != nil {
			anySet = true
		}
		row.Set(k, v)
	}
	return row, anySet
}
