package sqlite

import (
	"context"
	"fmt"

	"github.com/jordanekay/PersistDB/sqlast"
)

// RawRow is one undecoded result row, positionally aligned with the
// select's result columns.
type RawRow []any

// Select executes a compiled select and returns the raw rows in engine
// order.
func (d *DB) Select(ctx context.Context, sel sqlast.Select) ([]RawRow, error) {
	stmt, args, err := sel.SQL()
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", sel.Table, err)
	}

	rows, err := d.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", sel.Table, err)
	}
	defer rows.Close()

	width := len(sel.Results)
	var out []RawRow
	for rows.Next() {
		row := make(RawRow, width)
		ptrs := make([]any, width)
		for i := range row {
			ptrs[i] = &row[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("select %s: scan: %w", sel.Table, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select %s: iterate: %w", sel.Table, err)
	}

	// Return empty slice instead of nil
	if out == nil {
		out = []RawRow{}
	}
	return out, nil
}

// Insert executes a compiled insert and returns the new row id.
func (d *DB) Insert(ctx context.Context, ins sqlast.Insert) (int64, error) {
	stmt, args, err := ins.SQL()
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", ins.Table, err)
	}
	res, err := d.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", ins.Table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert %s: last insert id: %w", ins.Table, err)
	}
	return id, nil
}

// Exec executes a compiled update or delete and returns the affected row
// count, which may be zero.
func (d *DB) Exec(ctx context.Context, action sqlast.Action) (int64, error) {
	var (
		stmt string
		args []any
		err  error
	)
	switch a := action.(type) {
	case sqlast.Update:
		stmt, args, err = a.SQL()
	case sqlast.Delete:
		stmt, args, err = a.SQL()
	default:
		return 0, fmt.Errorf("exec %s: unsupported action type %T", action.ActionTable(), action)
	}
	if err != nil {
		return 0, fmt.Errorf("exec %s: %w", action.ActionTable(), err)
	}

	res, err := d.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("exec %s: %w", action.ActionTable(), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("exec %s: rows affected: %w", action.ActionTable(), err)
	}
	return n, nil
}
