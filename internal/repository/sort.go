package repository

import (
	"fmt"
	"sort"
	"strings"
)

// SortOrder is the direction of an ordering
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// ParseSortOrder reads "asc" or "desc" in any case
func ParseSortOrder(s string) (SortOrder, bool) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case Asc:
		return Asc, true
	case Desc:
		return Desc, true
	}
	return "", false
}

// Sortable is one entry of a sort table: a column or a derived expression,
// with whatever joins and grouping the expression needs.
type Sortable struct {
	Expr      string
	Aggregate bool
	Joins     []JoinSpec
	GroupBy   []string
}

// By sorts on a plain column expression
func By(expr string) Sortable {
	return Sortable{Expr: expr}
}

// SortExpression is a resolved ordering
type SortExpression struct {
	Key   string
	Order SortOrder
	Sortable
}

func (s SortExpression) clause() string {
	return s.Expr + " " + strings.ToUpper(string(s.Order))
}

// SortTable maps sort tokens to sortable expressions, with a default
// ordering used for empty and unknown tokens.
type SortTable struct {
	entries      map[string]Sortable
	defaultKey   string
	defaultOrder SortOrder
}

// NewSortTable validates entries and the default ordering
func NewSortTable(defaultKey string, defaultOrder SortOrder, entries map[string]Sortable) (SortTable, error) {
	if _, ok := entries[defaultKey]; !ok {
		return SortTable{}, fmt.Errorf("default sort %q is not in the sort table", defaultKey)
	}
	if _, ok := ParseSortOrder(string(defaultOrder)); !ok {
		return SortTable{}, fmt.Errorf("invalid default sort order %q", defaultOrder)
	}
	for k, e := range entries {
		if e.Expr == "" {
			return SortTable{}, fmt.Errorf("sort %q has no expression", k)
		}
	}
	t := SortTable{
		entries:      make(map[string]Sortable, len(entries)),
		defaultKey:   defaultKey,
		defaultOrder: defaultOrder,
	}
	for k, e := range entries {
		t.entries[k] = e
	}
	return t, nil
}

// Resolve maps a sort token and order to an expression. Unknown or empty
// tokens resolve to the default ordering, order included. A known token with
// a missing or invalid order sorts ascending.
func (t SortTable) Resolve(key, order string) SortExpression {
	e, ok := t.entries[key]
	if !ok {
		return t.Default()
	}
	o, ok := ParseSortOrder(order)
	if !ok {
		o = Asc
	}
	return SortExpression{Key: key, Order: o, Sortable: e}
}

// Default returns the repository's declared default ordering
func (t SortTable) Default() SortExpression {
	return SortExpression{Key: t.defaultKey, Order: t.defaultOrder, Sortable: t.entries[t.defaultKey]}
}

// Keys lists the sort tokens in sorted order
func (t SortTable) Keys() []string {
	keys := make([]string, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
