package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Beginner opens transactions. *sqlx.DB satisfies it.
type Beginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// UnitOfWork is the single transaction boundary for multi-statement
// mutations: begin, run every statement, then commit, or roll back on any
// failure. A transaction never outlives one Do call.
type UnitOfWork struct {
	db Beginner
}

// NewUnitOfWork returns a unit of work over db
func NewUnitOfWork(db Beginner) UnitOfWork {
	return UnitOfWork{db: db}
}

// Do runs fn inside a transaction. An error from fn rolls the transaction
// back and is returned unchanged. A panic in fn rolls back and re-panics.
func (u UnitOfWork) Do(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	if u.db == nil {
		return fmt.Errorf("unit of work has no database")
	}

	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
