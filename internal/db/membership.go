package db

import (
	"context"
	"fmt"
	"sort"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// membership manages a (parent, user) link table such as group_members
type membership struct {
	table        string
	parentColumn string
	userColumn   string
}

// add links userID to parentID. extra holds additional column values.
// It reports whether a new link was stored.
func (m membership) add(ctx context.Context, ext sqlx.ExtContext, parentID, userID string, extra map[string]any) (bool, error) {
	cols := []string{m.parentColumn, m.userColumn}
	vals := []any{parentID, userID}
	for _, col := range sortedKeys(extra) {
		cols = append(cols, col)
		vals = append(vals, extra[col])
	}

	query, args, err := sq.Insert(m.table).Columns(cols...).Values(vals...).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build %s insert: %w", m.table, err)
	}
	res, err := ext.ExecContext(ctx, ext.Rebind(query), args...)
	if err != nil {
		return false, fmt.Errorf("failed to insert into %s: %w", m.table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// remove unlinks userID from parentID and reports whether a link existed
func (m membership) remove(ctx context.Context, ext sqlx.ExtContext, parentID, userID string) (bool, error) {
	query, args, err := sq.Delete(m.table).
		Where(sq.Eq{m.parentColumn: parentID, m.userColumn: userID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build %s delete: %w", m.table, err)
	}
	res, err := ext.ExecContext(ctx, ext.Rebind(query), args...)
	if err != nil {
		return false, fmt.Errorf("failed to delete from %s: %w", m.table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// contains reports whether userID is linked to parentID
func (m membership) contains(ctx context.Context, ext sqlx.ExtContext, parentID, userID string) (bool, error) {
	query, args, err := sq.Select("COUNT(*)").From(m.table).
		Where(sq.Eq{m.parentColumn: parentID, m.userColumn: userID}).
		ToSql()
	if err != nil {
		return false, err
	}
	var n int
	if err := sqlx.GetContext(ctx, ext, &n, ext.Rebind(query), args...); err != nil {
		return false, fmt.Errorf("failed to query %s: %w", m.table, err)
	}
	return n > 0, nil
}

// users lists the user ids linked to parentID
func (m membership) users(ctx context.Context, ext sqlx.ExtContext, parentID string) ([]string, error) {
	query, args, err := sq.Select(m.userColumn).From(m.table).
		Where(sq.Eq{m.parentColumn: parentID}).
		OrderBy(m.userColumn).
		ToSql()
	if err != nil {
		return nil, err
	}
	ids := []string{}
	if err := sqlx.SelectContext(ctx, ext, &ids, ext.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", m.table, err)
	}
	return ids, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
