package expr

import (
	"fmt"

	"github.com/jordanekay/PersistDB/schema"
)

// Predicate is a boolean-valued expression rooted at one model. A nil
// *Predicate matches everything for queries and applies to all rows for
// mutations.
type Predicate struct {
	Model *schema.Model
	Expr  Expr
}

// Where wraps a boolean expression as a predicate over the given model.
// Panics if the expression references a key path rooted elsewhere.
func Where(m *schema.Model, e Expr) *Predicate {
	if root := rootOf(e); root != nil && root != m {
		panic(fmt.Sprintf("expr: predicate over %s references paths rooted at %s",
			m.Name, root.Name))
	}
	return &Predicate{Model: m, Expr: e}
}

// And conjoins another boolean expression onto the predicate.
func (p *Predicate) And(e Expr) *Predicate {
	return Where(p.Model, And(p.Expr, e))
}

// SortKey is one entry of an ordering; earlier keys take precedence.
type SortKey struct {
	Expr       Expr
	Descending bool
}

// Ordering is an ordered sort-key sequence. There is no implicit fallback
// ordering: an empty Ordering leaves row order to the engine.
type Ordering []SortKey

// Asc creates an ascending sort key.
func Asc(e Expr) SortKey { return SortKey{Expr: e} }

// Desc creates a descending sort key.
func Desc(e Expr) SortKey { return SortKey{Expr: e, Descending: true} }
