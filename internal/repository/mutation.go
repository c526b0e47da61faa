package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Queryer runs statements. *sqlx.DB and *sqlx.Tx both satisfy it.
type Queryer interface {
	QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	Rebind(query string) string
	DriverName() string
}

// Result is the outcome of a create, update or delete: no rows when nothing
// matched, otherwise exactly one row holding the stored columns.
type Result struct {
	Rows []Row
}

// Empty reports whether the mutation matched nothing
func (r Result) Empty() bool { return len(r.Rows) == 0 }

// Row returns the affected row
func (r Result) Row() (Row, bool) {
	if len(r.Rows) == 0 {
		return Row{}, false
	}
	return r.Rows[0], true
}

// Mutator builds and runs single-statement mutations for one entity
type Mutator struct {
	entity Entity
	now    func() time.Time
}

// NewMutator returns a mutator for entity
func NewMutator(entity Entity) Mutator {
	return Mutator{entity: entity, now: func() time.Time { return time.Now().UTC() }}
}

// Create inserts values. Keys may be column or field names; anything else is
// dropped. A missing primary key is generated when the entity asks for it.
func (m Mutator) Create(ctx context.Context, q Queryer, values map[string]any) (Result, error) {
	cols, vals := m.assignments(values)
	for i := 0; i < len(cols); i++ {
		if cols[i] == m.entity.PrimaryKey && IsAbsent(vals[i]) {
			cols = append(cols[:i], cols[i+1:]...)
			vals = append(vals[:i], vals[i+1:]...)
			break
		}
	}

	if m.entity.GenerateID && !containsString(cols, m.entity.PrimaryKey) {
		cols = append([]string{m.entity.PrimaryKey}, cols...)
		vals = append([]any{uuid.NewString()}, vals...)
	}
	if len(cols) == 0 {
		return Result{}, fmt.Errorf("no %s columns to insert", m.entity.Name)
	}

	b := sq.Insert(m.entity.Table).Columns(cols...).Values(vals...)
	if m.entity.OnConflictDoNothing {
		b = b.Suffix("ON CONFLICT DO NOTHING")
	}
	b = b.Suffix(m.entity.returning())

	query, args, err := b.ToSql()
	if err != nil {
		return Result{}, fmt.Errorf("failed to build insert: %w", err)
	}
	return m.run(ctx, q, query, args)
}

// Update applies patch to the row with key. An empty patch reads the row
// back unchanged, so the result still tells whether key exists.
func (m Mutator) Update(ctx context.Context, q Queryer, key any, patch map[string]any) (Result, error) {
	cols, vals := m.assignments(patch)
	for i := 0; i < len(cols); i++ {
		if cols[i] == m.entity.PrimaryKey {
			cols = append(cols[:i], cols[i+1:]...)
			vals = append(vals[:i], vals[i+1:]...)
			i--
		}
	}

	var (
		query string
		args  []interface{}
		err   error
	)
	if len(cols) == 0 {
		query, args, err = sq.Select(m.entity.returningColumns()...).
			From(m.entity.Table).
			Where(sq.Eq{m.entity.PrimaryKey: key}).
			ToSql()
	} else {
		b := sq.Update(m.entity.Table)
		for i, c := range cols {
			b = b.Set(c, vals[i])
		}
		if m.entity.UpdatedAt != "" && !containsString(cols, m.entity.UpdatedAt) {
			b = b.Set(m.entity.UpdatedAt, m.now())
		}
		query, args, err = b.
			Where(sq.Eq{m.entity.PrimaryKey: key}).
			Suffix(m.entity.returning()).
			ToSql()
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to build update: %w", err)
	}
	return m.run(ctx, q, query, args)
}

// Delete removes the row with key and returns it
func (m Mutator) Delete(ctx context.Context, q Queryer, key any) (Result, error) {
	query, args, err := sq.Delete(m.entity.Table).
		Where(sq.Eq{m.entity.PrimaryKey: key}).
		Suffix(m.entity.returning()).
		ToSql()
	if err != nil {
		return Result{}, fmt.Errorf("failed to build delete: %w", err)
	}
	return m.run(ctx, q, query, args)
}

// assignments keeps the declared columns of values in column order and
// coerces each value to the column's kind when it can.
func (m Mutator) assignments(values map[string]any) ([]string, []any) {
	byColumn := make(map[string]any, len(values))
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		c, ok := m.entity.column(k)
		if !ok {
			continue
		}
		v := values[k]
		if s, isString := v.(string); isString && c.Kind != KindString && s == "" {
			v = nil
		} else if cv, ok := coerce(c.Kind, v); ok {
			v = cv
		}
		byColumn[c.Name] = v
	}

	var cols []string
	var vals []any
	for _, c := range m.entity.Columns {
		if v, ok := byColumn[c.Name]; ok {
			cols = append(cols, c.Name)
			vals = append(vals, v)
		}
	}
	return cols, vals
}

func (m Mutator) run(ctx context.Context, q Queryer, query string, args []interface{}) (Result, error) {
	rs, err := q.QueryxContext(ctx, q.Rebind(query), args...)
	if err != nil {
		return Result{}, err
	}
	defer rs.Close()

	var res Result
	for rs.Next() {
		values, err := rs.SliceScan()
		if err != nil {
			return Result{}, fmt.Errorf("failed to scan %s row: %w", m.entity.Name, err)
		}
		row := newRow(len(m.entity.Columns))
		for i, c := range m.entity.Columns {
			var v any
			if i < len(values) {
				v = normalize(c.Kind, values[i])
			}
			row.Set(c.Field, v)
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rs.Err(); err != nil {
		return Result{}, err
	}
	return res, nil
}
