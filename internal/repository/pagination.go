package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"golang.org/x/sync/errgroup"
)

// Window is the LIMIT/OFFSET slice of a read
type Window struct {
	Page      int
	Size      int
	Offset    int
	Paginated bool
}

// NewWindow computes the window for page and size. Pagination applies only
// when both are positive; otherwise the first defaultSize rows are served
// and the window reports page 1.
func NewWindow(page, size, defaultSize int) Window {
	if page > 0 && size > 0 {
		return Window{Page: page, Size: size, Offset: size * (page - 1), Paginated: true}
	}
	return Window{Page: 1, Size: defaultSize}
}

// Paginator runs a page query and its count query
type Paginator struct {
	// Sequential runs the two queries one after the other. It must be set
	// when the Queryer is a transaction.
	Sequential bool
}

// Apply limits rows to w, runs it next to count, and returns the shaped
// rows with the total size of the filtered set.
func (p Paginator) Apply(ctx context.Context, q Queryer, rows, count sq.SelectBuilder, fields FieldMap, w Window) ([]Row, int64, error) {
	rows = rows.Limit(uint64(w.Size)).Offset(uint64(w.Offset))

	var (
		result []Row
		total  int64
	)
	fetch := func(ctx context.Context) error {
		var err error
		result, err = selectRows(ctx, q, rows, fields)
		return err
	}
	tally := func(ctx context.Context) error {
		var err error
		total, err = countRows(ctx, q, count)
		return err
	}

	if p.Sequential {
		if err := fetch(ctx); err != nil {
			return nil, 0, err
		}
		if err := tally(ctx); err != nil {
			return nil, 0, err
		}
		return result, total, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return fetch(gctx) })
	g.Go(func() error { return tally(gctx) })
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// selectRows executes b and shapes every record through fields
func selectRows(ctx context.Context, q Queryer, b sq.SelectBuilder, fields FieldMap) ([]Row, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	rs, err := q.QueryxContext(ctx, q.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	out := []Row{}
	for rs.Next() {
		values, err := rs.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, fields.build(values))
	}
	if err := rs.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// countRows executes a single-value count query
func countRows(ctx context.Context, q Queryer, b sq.SelectBuilder) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count: %w", err)
	}
	var total int64
	if err := q.QueryRowxContext(ctx, q.Rebind(query), args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
