// Package sqlast provides the relational engine's AST and its rendering
// to parameterized SQLite SQL.
//
// The compiler produces these values; the store pipeline consumes them.
// Expressions form a sealed union (marker method pattern) so the renderer
// can type-switch exhaustively.
//
// Join nodes nest: each step names the referencing column, the referenced
// table and column, and a continuation evaluated in the referenced
// table's scope. The renderer flattens nested joins into INNER JOIN
// clauses with deterministic t1, t2, ... aliases, deduplicating identical
// steps so a path referenced from both a predicate and an ordering joins
// once.
//
// Literal values are always rendered as ? placeholders, never
// interpolated into SQL text.
package sqlast
