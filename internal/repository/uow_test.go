package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWorkCommits(t *testing.T) {
	db := newTestStore(t)
	clubs := newClubRepo(t, db)
	ctx := context.Background()

	var clubID string
	err := clubs.UnitOfWork().Do(ctx, func(tx *sqlx.Tx) error {
		res, err := clubs.WithTx(tx).CreateEntity(ctx, map[string]any{"name": "Chess"})
		if err != nil {
			return err
		}
		row, _ := res.Row()
		clubID = row.String("id")
		if _, err := tx.ExecContext(ctx, `INSERT INTO players (id, handle) VALUES ('p1', 'magnus')`); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO club_members (club_id, player_id) VALUES (?, 'p1')`, clubID)
		return err
	})
	require.NoError(t, err)

	rows, err := clubs.GetSingleQuery(ctx, clubID, "EXTENDED")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].Get("memberCount"))
}

func TestUnitOfWorkRollsBackWhenSecondStatementFails(t *testing.T) {
	db := newTestStore(t)
	clubs := newClubRepo(t, db)
	ctx := context.Background()

	err := clubs.UnitOfWork().Do(ctx, func(tx *sqlx.Tx) error {
		res, err := clubs.WithTx(tx).CreateEntity(ctx, map[string]any{"name": "Chess"})
		if err != nil {
			return err
		}
		row, _ := res.Row()
		// no such player: the foreign key rejects the membership row
		_, err = tx.ExecContext(ctx, `INSERT INTO club_members (club_id, player_id) VALUES (?, 'ghost')`, row.String("id"))
		return err
	})
	require.Error(t, err)

	total, err := clubs.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total, "the club row must not survive the rollback")
}

func TestUnitOfWorkReturnsFailureUnchanged(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, "sqlmock")

	boom := errors.New("membership insert failed")

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO clubs (id,name) VALUES (?,?) RETURNING")).
		WithArgs(sqlmock.AnyArg(), "Chess").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "abbreviation", "description", "logo", "createdAt", "updatedAt"}).
			AddRow("c1", "Chess", "", "", nil, nil, nil))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO club_members")).
		WithArgs("c1", "u1").
		WillReturnError(boom)
	mock.ExpectRollback()

	clubs := newClubRepo(t, db)
	ctx := context.Background()
	err = clubs.UnitOfWork().Do(ctx, func(tx *sqlx.Tx) error {
		res, err := clubs.WithTx(tx).CreateEntity(ctx, map[string]any{"name": "Chess"})
		if err != nil {
			return err
		}
		row, _ := res.Row()
		_, err = tx.ExecContext(ctx, "INSERT INTO club_members (club_id, player_id) VALUES (?, ?)", row.String("id"), "u1")
		return err
	})

	assert.Same(t, boom, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWorkRollsBackOnPanic(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	uow := NewUnitOfWork(sqlx.NewDb(mockDB, "sqlmock"))
	assert.Panics(t, func() {
		_ = uow.Do(context.Background(), func(tx *sqlx.Tx) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWorkBeginFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

	called := false
	err = NewUnitOfWork(sqlx.NewDb(mockDB, "sqlmock")).Do(context.Background(), func(tx *sqlx.Tx) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
}
