package repository

import "fmt"

// Aggregate is a derived expression such as a distinct count. The same
// Aggregate feeds both a projected field and a sort entry, so the two
// cannot drift apart.
type Aggregate struct {
	Expr    string
	Kind    Kind
	Joins   []JoinSpec
	GroupBy []string
}

// Field projects the aggregate
func (a Aggregate) Field() Field {
	return Field{Expr: a.Expr, Kind: a.Kind, Aggregate: true}
}

// Sortable orders by the aggregate
func (a Aggregate) Sortable() Sortable {
	return Sortable{Expr: a.Expr, Aggregate: true, Joins: a.Joins, GroupBy: a.GroupBy}
}

// Aggregates is the per-domain registry of named aggregate expressions
type Aggregates map[string]Aggregate

// Get returns the named aggregate. Asking for an unregistered name is a
// programming error in a repository's static tables and panics.
func (as Aggregates) Get(name string) Aggregate {
	a, ok := as[name]
	if !ok {
		panic(fmt.Sprintf("repository: aggregate %q is not registered", name))
	}
	return a
}

// Field projects the named aggregate
func (as Aggregates) Field(name string) Field { return as.Get(name).Field() }

// Sortable orders by the named aggregate
func (as Aggregates) Sortable(name string) Sortable { return as.Get(name).Sortable() }

// Joins returns the joins the named aggregate needs
func (as Aggregates) Joins(name string) []JoinSpec { return as.Get(name).Joins }

// GroupBy returns the grouping keys the named aggregate needs
func (as Aggregates) GroupBy(name string) []string { return as.Get(name).GroupBy }
