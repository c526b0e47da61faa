package repository

import (
	"fmt"
	"strings"
)

// Column is one writable column of an entity. Field is the external name
// callers use for it; mutations accept either name and answer with Field.
type Column struct {
	Name  string
	Field string
	Kind  Kind
}

// C declares a text column
func C(name, field string) Column {
	return Column{Name: name, Field: field, Kind: KindString}
}

// Typed returns the column with a different value kind
func (c Column) Typed(kind Kind) Column {
	c.Kind = kind
	return c
}

// Entity describes the table a primary repository operates over.
// It is immutable once handed to NewPrimary.
type Entity struct {
	Name       string
	Table      string
	PrimaryKey string
	Columns    []Column

	// GenerateID fills an absent primary key with a new UUID on create
	GenerateID bool
	// OnConflictDoNothing turns unique violations on create into an empty Result
	OnConflictDoNothing bool
	// UpdatedAt names the column stamped on every update, if any
	UpdatedAt string
}

// Validate checks that the descriptor is usable
func (e Entity) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("entity name is required")
	}
	if e.Table == "" {
		return fmt.Errorf("entity %s: table is required", e.Name)
	}
	if e.PrimaryKey == "" {
		return fmt.Errorf("entity %s: primary key is required", e.Name)
	}
	if _, ok := e.column(e.PrimaryKey); !ok {
		return fmt.Errorf("entity %s: primary key %q is not a declared column", e.Name, e.PrimaryKey)
	}
	seen := make(map[string]bool, len(e.Columns)*2)
	for _, c := range e.Columns {
		if c.Name == "" || c.Field == "" {
			return fmt.Errorf("entity %s: column name and field are required", e.Name)
		}
		if seen[c.Name] || (c.Field != c.Name && seen[c.Field]) {
			return fmt.Errorf("entity %s: duplicate column %q", e.Name, c.Name)
		}
		seen[c.Name] = true
		seen[c.Field] = true
	}
	return nil
}

// Qualified returns column prefixed with the entity's table
func (e Entity) Qualified(column string) string {
	return e.Table + "." + column
}

// KeyField returns the external name of the primary key
func (e Entity) KeyField() string {
	if c, ok := e.column(e.PrimaryKey); ok {
		return c.Field
	}
	return e.PrimaryKey
}

// column finds a column by its column name or its external field name
func (e Entity) column(key string) (Column, bool) {
	for _, c := range e.Columns {
		if c.Name == key || c.Field == key {
			return c, true
		}
	}
	return Column{}, false
}

// returningColumns aliases every column to its field name
func (e Entity) returningColumns() []string {
	cols := make([]string, len(e.Columns))
	for i, c := range e.Columns {
		cols[i] = fmt.Sprintf("%s AS %q", c.Name, c.Field)
	}
	return cols
}

// returning renders the RETURNING clause for mutations
func (e Entity) returning() string {
	return "RETURNING " + strings.Join(e.returningColumns(), ", ")
}
