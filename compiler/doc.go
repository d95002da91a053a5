// Package compiler translates the typed expression model into the
// relational engine's AST.
//
// Compilation is a pure function of its input: property tokens carry
// their schema, so no registry travels alongside.
//
// Translation rules:
//   - Comparisons against the null literal rewrite to IS NULL /
//     IS NOT NULL before the generic operator mapping; the engine never
//     sees = or <> against a null parameter.
//   - Key paths resolve to nested join chains. A to-one step joins the
//     referencing table's foreign-key column to the related table's id;
//     a to-many step joins the declaring table's id to the related
//     table's backing foreign-key column.
//   - now() becomes engine-evaluated strftime arithmetic (integer seconds
//     plus fractional remainder), so it reflects the instant of
//     execution, not of compilation.
//   - Generator assignments in value sets resolve to concrete literals
//     here; the engine never receives an unresolved generator.
//
// Query compilation also produces the projection spec the decoder needs
// and the conservative set of tables whose mutation must invalidate a
// live observation of the query.
package compiler
