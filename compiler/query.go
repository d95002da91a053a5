package compiler

import (
	"fmt"
	"sort"

	"github.com/jordanekay/PersistDB/expr"
	"github.com/jordanekay/PersistDB/schema"
	"github.com/jordanekay/PersistDB/sqlast"
)

// OutputColumn describes one decoded result column: its alias, semantic
// type, and nullability. Dynamic is set when the semantic type cannot be
// derived statically (e.g. a literal group key); such values decode as
// raw engine primitives.
type OutputColumn struct {
	Name     string
	Type     schema.Type
	Nullable bool
	Dynamic  bool
}

// CompiledQuery is a ready-to-execute select plus everything the decoder
// and the observation engine need.
type CompiledQuery struct {
	Select sqlast.Select

	// Columns aligns 1:1 with Select.Results.
	Columns []OutputColumn

	// GroupIndex is the index of the group-key column in Columns, or -1
	// for ungrouped queries.
	GroupIndex int

	// Tables is the conservative invalidation set: the root table plus
	// every table reachable through a key path anywhere in the query. A
	// committed effect on any of these tables may change the result.
	Tables []string
}

// CompileQuery translates a query into the engine AST.
//
// Grouping compiles to a leading result column and a leading sort key on
// the grouping expression; rows are split into groups after decode,
// preserving engine row order within each group.
func CompileQuery(q expr.Query) (CompiledQuery, error) {
	out := CompiledQuery{GroupIndex: -1}
	sel := sqlast.Select{Table: q.Model.Table}
	tables := newTableSet(q.Model.Table)

	if q.GroupBy != nil {
		compiled, err := CompileExpr(q.GroupBy)
		if err != nil {
			return out, fmt.Errorf("compile query: group: %w", err)
		}
		sel.Results = append(sel.Results, sqlast.ResultColumn{Expr: compiled, Alias: "group"})
		sel.OrderBy = append(sel.OrderBy, sqlast.OrderKey{Expr: compiled})
		out.Columns = append(out.Columns, outputColumnFor("group", q.GroupBy))
		out.GroupIndex = 0
		tables.collect(q.GroupBy)
	}

	for _, path := range q.Paths() {
		compiled, err := CompileExpr(path)
		if err != nil {
			return out, fmt.Errorf("compile query: projection %s: %w", path.Name(), err)
		}
		sel.Results = append(sel.Results, sqlast.ResultColumn{Expr: compiled, Alias: path.Name()})
		out.Columns = append(out.Columns, outputColumnFor(path.Name(), path))
		tables.collect(path)
	}

	if q.Where != nil {
		compiled, err := CompileExpr(q.Where.Expr)
		if err != nil {
			return out, fmt.Errorf("compile query: predicate: %w", err)
		}
		sel.Where = compiled
		tables.collect(q.Where.Expr)
	}

	for i, key := range q.Order {
		compiled, err := CompileExpr(key.Expr)
		if err != nil {
			return out, fmt.Errorf("compile query: sort key %d: %w", i, err)
		}
		sel.OrderBy = append(sel.OrderBy, sqlast.OrderKey{Expr: compiled, Descending: key.Descending})
		tables.collect(key.Expr)
	}

	out.Select = sel
	out.Tables = tables.sorted()
	return out, nil
}

// CompileAggregate translates a scalar reduction into a single-column
// select.
func CompileAggregate(a expr.Aggregate) (CompiledQuery, error) {
	out := CompiledQuery{GroupIndex: -1}
	tables := newTableSet(a.Model.Table)

	compiled, err := CompileExpr(a.Expr)
	if err != nil {
		return out, fmt.Errorf("compile aggregate: %w", err)
	}
	tables.collect(a.Expr)

	sel := sqlast.Select{
		Table:   a.Model.Table,
		Results: []sqlast.ResultColumn{{Expr: compiled, Alias: "value"}},
	}
	if a.Where != nil {
		where, err := CompileExpr(a.Where.Expr)
		if err != nil {
			return out, fmt.Errorf("compile aggregate: predicate: %w", err)
		}
		sel.Where = where
		tables.collect(a.Where.Expr)
	}

	out.Select = sel
	out.Columns = []OutputColumn{outputColumnFor("value", a.Expr)}
	out.Tables = tables.sorted()
	return out, nil
}

// outputColumnFor derives the decode type of an expression. Expressions
// whose type cannot be derived statically decode as raw primitives.
func outputColumnFor(name string, e expr.Expr) OutputColumn {
	col := OutputColumn{Name: name}
	switch n := e.(type) {
	case expr.KeyPath:
		leaf := n.Leaf()
		col.Type = leaf.Type
		col.Nullable = leaf.Nullable
	case expr.NowExpr:
		col.Type = schema.TypeDatetime
	case expr.Call:
		switch n.Fn {
		case expr.FnCount, expr.FnLength:
			col.Type = schema.TypeInteger
		case expr.FnMax, expr.FnMin, expr.FnCoalesce:
			if len(n.Args) > 0 {
				inner := outputColumnFor(name, n.Args[0])
				col.Type = inner.Type
				col.Nullable = true
				col.Dynamic = inner.Dynamic
				return col
			}
			col.Dynamic = true
		default:
			col.Dynamic = true
		}
	default:
		col.Dynamic = true
	}
	return col
}

// tableSet accumulates the conservative invalidation set.
type tableSet map[string]struct{}

func newTableSet(root string) tableSet {
	return tableSet{root: {}}
}

func (s tableSet) collect(e expr.Expr) {
	switch n := e.(type) {
	case expr.KeyPath:
		for _, p := range n.Props {
			s[p.Model.Table] = struct{}{}
			if p.IsRelationship() {
				s[p.Related.Table] = struct{}{}
			}
		}
	case expr.Unary:
		s.collect(n.E)
	case expr.Binary:
		s.collect(n.L)
		s.collect(n.R)
	case expr.Call:
		for _, a := range n.Args {
			s.collect(a)
		}
	case expr.In:
		s.collect(n.E)
		for _, el := range n.Elems {
			s.collect(el)
		}
	}
}

func (s tableSet) sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
