package store

import (
	"context"

	"github.com/jordanekay/PersistDB/compiler"
	"github.com/jordanekay/PersistDB/expr"
	"github.com/jordanekay/PersistDB/schema"
	"github.com/jordanekay/PersistDB/sqlast"
)

// Insert adds one row built from the value set and returns its new id.
//
// The value set must assign every non-nullable scalar and non-nullable
// to-one property; a short set fails with *InsufficientValuesError
// before anything reaches the engine. Generators in the set resolve to
// fresh literals at compile time.
func (s *Store) Insert(ctx context.Context, m *schema.Model, vs expr.ValueSet) (int64, error) {
	if s.mode == ModeReadOnly {
		return 0, ErrReadOnly
	}
	if missing, ok := vs.SufficientForInsert(m); !ok {
		return 0, &InsufficientValuesError{Model: m.Name, Missing: missing}
	}

	ins, err := compiler.CompileInsert(m, vs)
	if err != nil {
		return 0, err
	}
	effect, err := s.submit(ctx, ins)
	if err != nil {
		return 0, err
	}
	return effect.ID, nil
}

// Update rewrites matching rows with the value set and returns the
// affected row count. A nil predicate applies to all rows.
func (s *Store) Update(ctx context.Context, m *schema.Model, pred *expr.Predicate, vs expr.ValueSet) (int64, error) {
	if s.mode == ModeReadOnly {
		return 0, ErrReadOnly
	}
	upd, err := compiler.CompileUpdate(m, pred, vs)
	if err != nil {
		return 0, err
	}
	effect, err := s.submit(ctx, upd)
	if err != nil {
		return 0, err
	}
	return effect.Rows, nil
}

// Delete removes matching rows and returns the affected row count. A nil
// predicate applies to all rows.
func (s *Store) Delete(ctx context.Context, m *schema.Model, pred *expr.Predicate) (int64, error) {
	if s.mode == ModeReadOnly {
		return 0, ErrReadOnly
	}
	del, err := compiler.CompileDelete(m, pred)
	if err != nil {
		return 0, err
	}
	effect, err := s.submit(ctx, del)
	if err != nil {
		return 0, err
	}
	return effect.Rows, nil
}

// Perform submits a raw compiled action and returns its tagged effect.
func (s *Store) Perform(ctx context.Context, action sqlast.Action) (sqlast.Effect, error) {
	if s.mode == ModeReadOnly {
		return sqlast.Effect{}, ErrReadOnly
	}
	return s.submit(ctx, action)
}
