package db

import (
	stderrors "errors"

	"arenad/internal/errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// TranslateError classifies a store error for resource. Constraint
// violations become client errors, anything else a DATABASE_QUERY error.
// Errors that are already classified pass through unchanged.
func TranslateError(resource string, err error) error {
	if err == nil {
		return nil
	}
	if errors.IsArenaError(err) {
		return err
	}

	var sqliteErr sqlite3.Error
	if stderrors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return errors.Conflict(resource, "a row with the same unique key already exists").WithCause(err)
		case sqlite3.ErrConstraintForeignKey:
			return errors.InvalidInput("references a row that does not exist").WithCause(err)
		case sqlite3.ErrConstraintNotNull, sqlite3.ErrConstraintCheck:
			return errors.InvalidInput(sqliteErr.Error()).WithCause(err)
		}
	}

	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return errors.Conflict(resource, "a row with the same unique key already exists").WithCause(err)
		case pgerrcode.ForeignKeyViolation:
			return errors.InvalidInput("references a row that does not exist").WithCause(err)
		case pgerrcode.NotNullViolation, pgerrcode.CheckViolation:
			return errors.InvalidInput(pgErr.Message).WithCause(err)
		}
	}

	return errors.DatabaseQueryError(resource, err)
}
