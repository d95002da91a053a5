package store

import (
	"context"
	"fmt"

	"github.com/jordanekay/PersistDB/compiler"
	"github.com/jordanekay/PersistDB/expr"
	"github.com/jordanekay/PersistDB/schema"
)

// Fetch executes an ungrouped query and returns its decoded rows.
// Compilation and execution happen on this call; the result is a single
// complete snapshot.
func (s *Store) Fetch(ctx context.Context, q expr.Query) ([]Row, error) {
	if q.GroupBy != nil {
		return nil, fmt.Errorf("store: grouped query: use FetchGrouped")
	}
	cq, err := compiler.CompileQuery(q)
	if err != nil {
		return nil, err
	}
	raw, err := s.read(ctx, cq)
	if err != nil {
		return nil, err
	}
	return decodeRows(raw, cq), nil
}

// FetchGrouped executes a grouped query and returns ordered groups,
// preserving engine row order within each group.
func (s *Store) FetchGrouped(ctx context.Context, q expr.Query) ([]Group, error) {
	if q.GroupBy == nil {
		return nil, fmt.Errorf("store: ungrouped query: use Fetch")
	}
	cq, err := compiler.CompileQuery(q)
	if err != nil {
		return nil, err
	}
	raw, err := s.read(ctx, cq)
	if err != nil {
		return nil, err
	}
	return decodeGroups(raw, cq), nil
}

// FetchAggregate executes a scalar reduction and returns its decoded
// value. Reductions over no rows yield nil (except count, which yields
// zero).
func (s *Store) FetchAggregate(ctx context.Context, a expr.Aggregate) (any, error) {
	cq, err := compiler.CompileAggregate(a)
	if err != nil {
		return nil, err
	}
	raw, err := s.read(ctx, cq)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return decodeValue(raw[0][0], cq.Columns[0]), nil
}

// FetchByID returns the single row with the given id, or ErrNotFound.
func (s *Store) FetchByID(ctx context.Context, m *schema.Model, id int64) (Row, error) {
	rows, err := s.Fetch(ctx, byID(m, id))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

func byID(m *schema.Model, id int64) expr.Query {
	return expr.From(m).Filter(expr.Eq(expr.Path(m.ID()), expr.Lit(id)))
}
