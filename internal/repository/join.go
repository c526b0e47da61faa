package repository

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// JoinKind selects between an outer join for optional relations and an
// inner join for structurally mandatory ones
type JoinKind string

const (
	LeftJoin  JoinKind = "LEFT"
	InnerJoin JoinKind = "INNER"
)

// JoinSpec is one relational join: target table, optional alias and condition
type JoinSpec struct {
	Table string
	Alias string
	On    string
	Kind  JoinKind
}

// Left joins an optional relation
func Left(table, on string) JoinSpec {
	return JoinSpec{Table: table, On: on, Kind: LeftJoin}
}

// Inner joins a mandatory relation
func Inner(table, on string) JoinSpec {
	return JoinSpec{Table: table, On: on, Kind: InnerJoin}
}

// As sets the alias the join target is referenced by
func (j JoinSpec) As(alias string) JoinSpec {
	j.Alias = alias
	return j
}

// Target is the key a join is de-duplicated by
func (j JoinSpec) Target() string {
	if j.Alias != "" {
		return j.Alias
	}
	return j.Table
}

func (j JoinSpec) clause() string {
	kind := j.Kind
	if kind == "" {
		kind = LeftJoin
	}
	target := j.Table
	if j.Alias != "" {
		target = fmt.Sprintf("%s AS %s", j.Table, j.Alias)
	}
	return fmt.Sprintf("%s JOIN %s ON %s", kind, target, j.On)
}

// JoinPlan is the ordered set of joins needed to materialize a projection,
// plus the grouping keys an aggregate projection requires.
// Entries are unique by target; adding a target twice is a no-op.
type JoinPlan struct {
	joins   []JoinSpec
	targets map[string]bool
	groupBy []string
}

// NewJoinPlan builds a plan from specs in order
func NewJoinPlan(specs ...JoinSpec) JoinPlan {
	var p JoinPlan
	p.Add(specs...)
	return p
}

// Add appends joins whose target is not yet planned
func (p *JoinPlan) Add(specs ...JoinSpec) {
	if p.targets == nil {
		p.targets = make(map[string]bool)
	}
	for _, s := range specs {
		if p.targets[s.Target()] {
			continue
		}
		p.targets[s.Target()] = true
		p.joins = append(p.joins, s)
	}
}

// AddGroupBy appends grouping keys that are not yet present
func (p *JoinPlan) AddGroupBy(keys ...string) {
	for _, k := range keys {
		if !containsString(p.groupBy, k) {
			p.groupBy = append(p.groupBy, k)
		}
	}
}

// Joins returns the planned joins in order
func (p JoinPlan) Joins() []JoinSpec {
	out := make([]JoinSpec, len(p.joins))
	copy(out, p.joins)
	return out
}

// GroupBy returns the grouping keys, empty when no aggregate is projected
func (p JoinPlan) GroupBy() []string {
	out := make([]string, len(p.groupBy))
	copy(out, p.groupBy)
	return out
}

// Has reports whether a join to target is planned
func (p JoinPlan) Has(target string) bool { return p.targets[target] }

// Len returns the number of planned joins
func (p JoinPlan) Len() int { return len(p.joins) }

// Grouped reports whether the plan carries a grouping instruction
func (p JoinPlan) Grouped() bool { return len(p.groupBy) > 0 }

// Merge returns a copy of p extended with other's joins and grouping keys
func (p JoinPlan) Merge(other JoinPlan) JoinPlan {
	out := NewJoinPlan(p.joins...)
	out.AddGroupBy(p.groupBy...)
	out.Add(other.joins...)
	out.AddGroupBy(other.groupBy...)
	return out
}

// applyJoins attaches every planned join to b
func (p JoinPlan) applyJoins(b sq.SelectBuilder) sq.SelectBuilder {
	for _, j := range p.joins {
		b = b.JoinClause(j.clause())
	}
	return b
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
