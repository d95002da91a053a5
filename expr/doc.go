// Package expr provides the typed expression model: expression trees,
// predicates, orderings, value sets, queries, and aggregates.
//
// Expressions are immutable values built from schema property tokens
// instead of hand-written SQL text:
//
//	widgets := expr.From(Widget).
//		Filter(expr.Eq(expr.Path(WidgetName), expr.Lit("A"))).
//		Sort(expr.Asc(expr.Path(WidgetName)))
//
// Expr is a sealed interface - only types in this package implement it.
// The marker method pattern enables exhaustive type switches in the
// compiler and prevents external extensions.
//
// Key paths are validated at construction: every interior segment must be
// a relationship and the tail must be a scalar (or a to-one, standing for
// the related row's id). A violation is an invariant break, unreachable
// through property tokens of a well-formed registry, and panics rather
// than surfacing as a recoverable error.
package expr
