package repository

import (
	"sort"
	"strings"

	"arenad/internal/constants"

	sq "github.com/Masterminds/squirrel"
)

// Dialect selects the SQL flavour a predicate is rendered for
type Dialect string

const (
	// DialectStandard renders plain comparisons
	DialectStandard Dialect = ""
	// DialectSQLite compares time values through datetime(), since SQLite
	// stores timestamps as text in more than one layout
	DialectSQLite Dialect = constants.DriverSQLite
)

// DialectFor maps a database/sql driver name to its dialect
func DialectFor(driver string) Dialect {
	if driver == constants.DriverSQLite {
		return DialectSQLite
	}
	return DialectStandard
}

// Predicate is one WHERE condition derived from one present filter value
type Predicate struct {
	Key  string
	Expr sq.Sqlizer
}

// ToSql implements squirrel.Sqlizer
func (p Predicate) ToSql() (string, []interface{}, error) {
	return p.Expr.ToSql()
}

// Filter maps one filter key to a predicate. Kind is the type the raw input
// is coerced to before Build sees it.
type Filter struct {
	Kind  Kind
	Build func(d Dialect, value any) sq.Sqlizer
}

// Filters is the closed key→predicate vocabulary of a domain repository
type Filters map[string]Filter

// Build turns a filter object into standard-dialect predicates
func (fs Filters) Build(values map[string]any) []Predicate {
	return fs.BuildFor(DialectStandard, values)
}

// BuildFor turns a filter object into predicates for d. Keys are visited in
// sorted order. Absent values, values that cannot be read as the filter's
// kind and unknown keys produce nothing.
func (fs Filters) BuildFor(d Dialect, values map[string]any) []Predicate {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	preds := make([]Predicate, 0, len(keys))
	for _, k := range keys {
		f, ok := fs[k]
		if !ok || f.Build == nil {
			continue
		}
		raw := values[k]
		if IsAbsent(raw) {
			continue
		}
		v, ok := coerce(f.Kind, raw)
		if !ok || IsAbsent(v) {
			continue
		}
		expr := f.Build(d, v)
		if expr == nil {
			continue
		}
		preds = append(preds, Predicate{Key: k, Expr: expr})
	}
	return preds
}

// Keys lists the recognized filter keys in sorted order
func (fs Filters) Keys() []string {
	keys := make([]string, 0, len(fs))
	for k := range fs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal matches expr = value
func Equal(kind Kind, expr string) Filter {
	return Filter{Kind: kind, Build: func(_ Dialect, v any) sq.Sqlizer {
		return sq.Eq{expr: v}
	}}
}

// ContainsFold matches a case-insensitive substring of expr
func ContainsFold(expr string) Filter {
	return Filter{Kind: KindString, Build: func(_ Dialect, v any) sq.Sqlizer {
		pattern := "%" + escapeLike(strings.ToLower(v.(string))) + "%"
		return sq.Expr("LOWER("+expr+") LIKE ? ESCAPE '\\'", pattern)
	}}
}

// AtLeast matches expr >= value
func AtLeast(kind Kind, expr string) Filter {
	return Filter{Kind: kind, Build: func(d Dialect, v any) sq.Sqlizer {
		if kind == KindTime && d == DialectSQLite {
			return sq.Expr("datetime("+expr+") >= datetime(?)", v)
		}
		return sq.GtOrEq{expr: v}
	}}
}

// AtMost matches expr <= value
func AtMost(kind Kind, expr string) Filter {
	return Filter{Kind: kind, Build: func(d Dialect, v any) sq.Sqlizer {
		if kind == KindTime && d == DialectSQLite {
			return sq.Expr("datetime("+expr+") <= datetime(?)", v)
		}
		return sq.LtOrEq{expr: v}
	}}
}

// InSubquery matches expr IN (subquery). The subquery takes the filter
// value as its single placeholder.
func InSubquery(kind Kind, expr, subquery string) Filter {
	return Filter{Kind: kind, Build: func(_ Dialect, v any) sq.Sqlizer {
		return sq.Expr(expr+" IN ("+subquery+")", v)
	}}
}

// ExistsWhen adds EXISTS (subquery) when the boolean filter is true.
// A false value is absent, so the negation cannot be requested.
func ExistsWhen(subquery string) Filter {
	return Filter{Kind: KindBool, Build: func(_ Dialect, v any) sq.Sqlizer {
		if b, _ := v.(bool); !b {
			return nil
		}
		return sq.Expr("EXISTS (" + subquery + ")")
	}}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
