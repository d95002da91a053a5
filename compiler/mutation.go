package compiler

import (
	"fmt"

	"github.com/jordanekay/PersistDB/expr"
	"github.com/jordanekay/PersistDB/schema"
	"github.com/jordanekay/PersistDB/sqlast"
)

// CompileInsert translates a value set into an insert action. Generator
// assignments resolve to fresh literals here, once per compilation.
//
// Sufficiency of the value set is the caller's precondition; the store
// checks it before compiling.
func CompileInsert(m *schema.Model, vs expr.ValueSet) (sqlast.Insert, error) {
	values, err := compileValues(m, vs)
	if err != nil {
		return sqlast.Insert{}, fmt.Errorf("compile insert: %w", err)
	}
	return sqlast.Insert{Table: m.Table, Values: values}, nil
}

// CompileUpdate translates a predicate and value set into an update
// action. A nil predicate applies to all rows.
func CompileUpdate(m *schema.Model, pred *expr.Predicate, vs expr.ValueSet) (sqlast.Update, error) {
	values, err := compileValues(m, vs)
	if err != nil {
		return sqlast.Update{}, fmt.Errorf("compile update: %w", err)
	}
	where, err := compileMutationPredicate(m, pred)
	if err != nil {
		return sqlast.Update{}, fmt.Errorf("compile update: %w", err)
	}
	return sqlast.Update{Table: m.Table, Values: values, Where: where}, nil
}

// CompileDelete translates a predicate into a delete action. A nil
// predicate applies to all rows.
func CompileDelete(m *schema.Model, pred *expr.Predicate) (sqlast.Delete, error) {
	where, err := compileMutationPredicate(m, pred)
	if err != nil {
		return sqlast.Delete{}, fmt.Errorf("compile delete: %w", err)
	}
	return sqlast.Delete{Table: m.Table, Where: where}, nil
}

func compileValues(m *schema.Model, vs expr.ValueSet) ([]sqlast.ColumnValue, error) {
	var values []sqlast.ColumnValue
	var failed error
	vs.Each(func(p *schema.Property, a expr.Assignment) {
		if failed != nil {
			return
		}
		if p.Model != m {
			failed = fmt.Errorf("property %s.%s assigned on model %s", p.Model.Name, p.Name, m.Name)
			return
		}
		if p.Kind == schema.KindToMany {
			failed = fmt.Errorf("to-many property %s.%s cannot be assigned", m.Name, p.Name)
			return
		}
		e := a.Expr
		if a.Gen != nil {
			e = a.Gen()
		}
		compiled, err := CompileExpr(e)
		if err != nil {
			failed = fmt.Errorf("value for %s: %w", p.Name, err)
			return
		}
		values = append(values, sqlast.ColumnValue{Column: p.Column(), Value: compiled})
	})
	if failed != nil {
		return nil, failed
	}
	return values, nil
}

func compileMutationPredicate(m *schema.Model, pred *expr.Predicate) (sqlast.Expr, error) {
	if pred == nil {
		return nil, nil
	}
	if pred.Model != m {
		return nil, fmt.Errorf("predicate rooted at %s applied to %s", pred.Model.Name, m.Name)
	}
	return CompileExpr(pred.Expr)
}
