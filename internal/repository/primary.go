package repository

import (
	"context"
	"fmt"
	"time"

	"arenad/internal/constants"
	"arenad/internal/logger"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// Store is what a primary repository needs from the database
type Store interface {
	Queryer
	Beginner
}

// Observer receives the duration and outcome of every engine operation
type Observer interface {
	ObserveQuery(entity, operation string, elapsed time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveQuery(string, string, time.Duration, error) {}

// Config is the static description of a domain repository: its entity and
// the shape, filter and sort tables every read is planned from.
type Config struct {
	Entity       Entity
	Shapes       map[Shape]ShapeDefinition
	DefaultShape Shape
	Filters      Filters
	Sorts        map[string]Sortable
	DefaultSort  string
	DefaultOrder SortOrder

	// DefaultPageSize is served to unpaginated reads; zero means constants.DefaultPageSize
	DefaultPageSize int
	Observer        Observer
}

// Primary is the generic repository every domain repository embeds.
// It is immutable after construction and safe for concurrent use.
type Primary struct {
	entity      Entity
	shapes      *ShapeRegistry
	filters     Filters
	dialect     Dialect
	sorts       SortTable
	mutator     Mutator
	paginator   Paginator
	pageSize    int
	db          Queryer
	uow         UnitOfWork
	observer    Observer
	transaction bool
}

// NewPrimary validates cfg and composes its shape table
func NewPrimary(store Store, cfg Config) (*Primary, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if err := cfg.Entity.Validate(); err != nil {
		return nil, err
	}
	shapes, err := NewShapeRegistry(cfg.DefaultShape, cfg.Shapes)
	if err != nil {
		return nil, fmt.Errorf("entity %s: %w", cfg.Entity.Name, err)
	}
	sorts, err := NewSortTable(cfg.DefaultSort, cfg.DefaultOrder, cfg.Sorts)
	if err != nil {
		return nil, fmt.Errorf("entity %s: %w", cfg.Entity.Name, err)
	}

	pageSize := cfg.DefaultPageSize
	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}
	observer := cfg.Observer
	if observer == nil {
		observer = nopObserver{}
	}

	return &Primary{
		entity:   cfg.Entity,
		shapes:   shapes,
		filters:  cfg.Filters,
		dialect:  DialectFor(store.DriverName()),
		sorts:    sorts,
		mutator:  NewMutator(cfg.Entity),
		pageSize: pageSize,
		db:       store,
		uow:      NewUnitOfWork(store),
		observer: observer,
	}, nil
}

// WithTx returns a copy of p whose statements run inside tx
func (p *Primary) WithTx(tx *sqlx.Tx) *Primary {
	cp := *p
	cp.db = tx
	cp.paginator = Paginator{Sequential: true}
	cp.transaction = true
	return &cp
}

// UnitOfWork returns the transaction boundary over p's store
func (p *Primary) UnitOfWork() UnitOfWork { return p.uow }

// Entity returns the entity descriptor
func (p *Primary) Entity() Entity { return p.entity }

// Shapes returns the shape registry
func (p *Primary) Shapes() *ShapeRegistry { return p.shapes }

// Sorts returns the sort table
func (p *Primary) Sorts() SortTable { return p.sorts }

// GetValidWhereClause turns a filter object into predicates
func (p *Primary) GetValidWhereClause(filters map[string]any) []Predicate {
	return p.filters.BuildFor(p.dialect, filters)
}

// GetMappingObject returns the projection of shape
func (p *Primary) GetMappingObject(shape Shape) FieldMap {
	return p.shapes.Resolve(shape)
}

// ConditionallyJoin attaches the joins shape needs to b
func (p *Primary) ConditionallyJoin(b sq.SelectBuilder, shape Shape) sq.SelectBuilder {
	return p.shapes.Plan(shape).applyJoins(b)
}

// SortRecord maps a sort token and order to an ordering expression
func (p *Primary) SortRecord(key, order string) SortExpression {
	return p.sorts.Resolve(key, order)
}

// Plan is a fully resolved read
type Plan struct {
	Shape      Shape
	Fields     FieldMap
	Joins      JoinPlan
	Predicates []Predicate
	Sort       SortExpression
	Window     Window
}

// Plan resolves desc into projection, joins, predicates, ordering and window
func (p *Primary) Plan(desc QueryDescriptor) Plan {
	shape := p.shapes.Canonical(desc.Shape)
	sortExpr := p.SortRecord(desc.SortField, desc.SortOrder)

	joins := p.shapes.Plan(shape)
	joins.Add(sortExpr.Joins...)
	joins.AddGroupBy(sortExpr.GroupBy...)

	return Plan{
		Shape:      shape,
		Fields:     p.GetMappingObject(shape),
		Joins:      joins,
		Predicates: p.GetValidWhereClause(desc.Filters),
		Sort:       sortExpr,
		Window:     NewWindow(desc.Page, desc.PageSize, p.pageSize),
	}
}

// selectBuilder renders the row query of plan without limit and offset
func (p *Primary) selectBuilder(plan Plan) sq.SelectBuilder {
	b := sq.Select(plan.Fields.selectColumns()...).From(p.entity.Table)
	b = plan.Joins.applyJoins(b)
	for _, pred := range plan.Predicates {
		b = b.Where(pred)
	}

	pk := p.entity.Qualified(p.entity.PrimaryKey)
	if plan.Joins.Grouped() {
		keys := plan.Joins.GroupBy()
		for _, expr := range plan.Fields.groupable() {
			if !containsString(keys, expr) {
				keys = append(keys, expr)
			}
		}
		if !plan.Sort.Aggregate && !containsString(keys, plan.Sort.Expr) {
			keys = append(keys, plan.Sort.Expr)
		}
		if !containsString(keys, pk) {
			keys = append(keys, pk)
		}
		b = b.GroupBy(keys...)
	}

	b = b.OrderBy(plan.Sort.clause())
	if plan.Sort.Expr != pk {
		b = b.OrderBy(pk + " ASC")
	}
	return b
}

// countBuilder renders the total query of plan: same joins and predicates,
// no projection, grouping or window
func (p *Primary) countBuilder(plan Plan) sq.SelectBuilder {
	b := sq.Select(fmt.Sprintf("COUNT(DISTINCT %s)", p.entity.Qualified(p.entity.PrimaryKey))).
		From(p.entity.Table)
	b = plan.Joins.applyJoins(b)
	for _, pred := range plan.Predicates {
		b = b.Where(pred)
	}
	return b
}

// BuildQuery renders the paged row query for desc with rebound placeholders
func (p *Primary) BuildQuery(desc QueryDescriptor) (string, []interface{}, error) {
	plan := p.Plan(desc)
	b := p.selectBuilder(plan).Limit(uint64(plan.Window.Size)).Offset(uint64(plan.Window.Offset))
	query, args, err := b.ToSql()
	if err != nil {
		return "", nil, err
	}
	return p.db.Rebind(query), args, nil
}

// GetQuery runs a list read. Rows come back at the resolved shape; Total
// counts the whole filtered set.
func (p *Primary) GetQuery(ctx context.Context, desc QueryDescriptor) (result QueryResult, err error) {
	start := time.Now()
	defer func() { p.observe(ctx, "get_query", start, err) }()

	plan := p.Plan(desc)
	p.debug(ctx, "get_query", plan)

	rows, total, err := p.paginator.Apply(ctx, p.db, p.selectBuilder(plan), p.countBuilder(plan), plan.Fields, plan.Window)
	if err != nil {
		return QueryResult{}, fmt.Errorf("failed to query %s: %w", p.entity.Name, err)
	}

	return QueryResult{
		Rows:     rows,
		Total:    total,
		Page:     plan.Window.Page,
		PageSize: plan.Window.Size,
		Shape:    plan.Shape,
		Sort:     plan.Sort,
	}, nil
}

// GetSingleQuery reads one entity by key. A missing key yields an empty
// slice, never an error.
func (p *Primary) GetSingleQuery(ctx context.Context, key any, shape Shape) (rows []Row, err error) {
	start := time.Now()
	defer func() { p.observe(ctx, "get_single_query", start, err) }()

	plan := p.Plan(QueryDescriptor{Shape: shape})
	plan.Predicates = []Predicate{{
		Key:  p.entity.KeyField(),
		Expr: sq.Eq{p.entity.Qualified(p.entity.PrimaryKey): key},
	}}
	p.debug(ctx, "get_single_query", plan)

	rows, err = selectRows(ctx, p.db, p.selectBuilder(plan).Limit(1), plan.Fields)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", p.entity.Name, err)
	}
	return rows, nil
}

// Count returns the size of the filtered set
func (p *Primary) Count(ctx context.Context, filters map[string]any) (total int64, err error) {
	start := time.Now()
	defer func() { p.observe(ctx, "count", start, err) }()

	plan := p.Plan(QueryDescriptor{Filters: filters})
	total, err = countRows(ctx, p.db, p.countBuilder(plan))
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", p.entity.Name, err)
	}
	return total, nil
}

// CreateEntity inserts values and returns the stored row, or an empty Result
// when the store declined the insert
func (p *Primary) CreateEntity(ctx context.Context, values map[string]any) (res Result, err error) {
	start := time.Now()
	defer func() { p.observe(ctx, "create", start, err) }()
	return p.mutator.Create(ctx, p.db, values)
}

// UpdateEntity applies patch to key; an empty Result means key does not exist
func (p *Primary) UpdateEntity(ctx context.Context, key any, patch map[string]any) (res Result, err error) {
	start := time.Now()
	defer func() { p.observe(ctx, "update", start, err) }()
	return p.mutator.Update(ctx, p.db, key, patch)
}

// DeleteEntity removes key; an empty Result means key does not exist
func (p *Primary) DeleteEntity(ctx context.Context, key any) (res Result, err error) {
	start := time.Now()
	defer func() { p.observe(ctx, "delete", start, err) }()
	return p.mutator.Delete(ctx, p.db, key)
}

func (p *Primary) observe(ctx context.Context, operation string, start time.Time, err error) {
	elapsed := time.Since(start)
	p.observer.ObserveQuery(p.entity.Name, operation, elapsed, err)
	if err != nil {
		logger.WithContext(ctx).WithFields(logger.Fields{
			"entity":    p.entity.Name,
			"operation": operation,
			"tx":        p.transaction,
		}).WithError(err).Warn("Repository operation failed")
	}
}

func (p *Primary) debug(ctx context.Context, operation string, plan Plan) {
	entry := logger.WithContext(ctx)
	if !entry.Logger.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	query, args, err := p.selectBuilder(plan).ToSql()
	if err != nil {
		return
	}
	entry.WithFields(logger.Fields{
		"entity":    p.entity.Name,
		"operation": operation,
		"shape":     plan.Shape,
		"sort":      plan.Sort.Key + " " + string(plan.Sort.Order),
		"page":      plan.Window.Page,
		"page_size": plan.Window.Size,
		"query":     query,
		"args":      len(args),
	}).Debug("Built query")
}
