// Package repository provides the primary repository: a generic,
// shape-driven query engine over one relational table that domain
// repositories configure with field, join, filter and sort tables.
package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
)

// Reader is the read side of a primary repository
type Reader interface {
	// GetQuery lists rows matching a query descriptor
	GetQuery(ctx context.Context, desc QueryDescriptor) (QueryResult, error)

	// GetSingleQuery returns zero or one row for key
	GetSingleQuery(ctx context.Context, key any, shape Shape) ([]Row, error)

	// Count returns the number of rows matching filters
	Count(ctx context.Context, filters map[string]any) (int64, error)
}

// Writer is the write side of a primary repository
type Writer interface {
	// CreateEntity inserts a row
	CreateEntity(ctx context.Context, values map[string]any) (Result, error)

	// UpdateEntity patches the row with key
	UpdateEntity(ctx context.Context, key any, patch map[string]any) (Result, error)

	// DeleteEntity removes the row with key
	DeleteEntity(ctx context.Context, key any) (Result, error)
}

// Extensions are the four per-domain tables a read is planned from
type Extensions interface {
	GetValidWhereClause(filters map[string]any) []Predicate
	GetMappingObject(shape Shape) FieldMap
	ConditionallyJoin(b sq.SelectBuilder, shape Shape) sq.SelectBuilder
	SortRecord(key, order string) SortExpression
}

// Repository is everything a domain repository exposes through its Primary
type Repository interface {
	Reader
	Writer
	Extensions
	Entity() Entity
	Shapes() *ShapeRegistry
}

var _ Repository = (*Primary)(nil)
