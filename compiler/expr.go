package compiler

import (
	"fmt"

	"github.com/jordanekay/PersistDB/expr"
	"github.com/jordanekay/PersistDB/schema"
	"github.com/jordanekay/PersistDB/sqlast"
)

var binaryOps = map[expr.BinaryOp]string{
	expr.OpEqual:        "=",
	expr.OpNotEqual:     "<>",
	expr.OpLess:         "<",
	expr.OpLessEqual:    "<=",
	expr.OpGreater:      ">",
	expr.OpGreaterEqual: ">=",
	expr.OpAnd:          "AND",
	expr.OpOr:           "OR",
	expr.OpAdd:          "+",
	expr.OpSubtract:     "-",
	expr.OpMultiply:     "*",
	expr.OpDivide:       "/",
}

var unaryOps = map[expr.UnaryOp]string{
	expr.OpNot: "NOT",
}

var functions = map[expr.Fn]string{
	expr.FnCount:    "count",
	expr.FnMax:      "max",
	expr.FnMin:      "min",
	expr.FnCoalesce: "coalesce",
	expr.FnLength:   "length",
}

// CompileExpr translates a typed expression into the engine AST.
func CompileExpr(e expr.Expr) (sqlast.Expr, error) {
	switch n := e.(type) {
	case expr.Value:
		return sqlast.Literal{V: n.V}, nil

	case expr.KeyPath:
		return compilePath(n.Props), nil

	case expr.Unary:
		op, ok := unaryOps[n.Op]
		if !ok {
			return nil, fmt.Errorf("compile: unknown unary operator %d", n.Op)
		}
		inner, err := CompileExpr(n.E)
		if err != nil {
			return nil, err
		}
		return sqlast.Unary{Op: op, E: inner}, nil

	case expr.Binary:
		return compileBinary(n)

	case expr.Call:
		fn, ok := functions[n.Fn]
		if !ok {
			return nil, fmt.Errorf("compile: unknown function %d", n.Fn)
		}
		args := make([]sqlast.Expr, len(n.Args))
		for i, a := range n.Args {
			compiled, err := CompileExpr(a)
			if err != nil {
				return nil, err
			}
			args[i] = compiled
		}
		return sqlast.Call{Fn: fn, Args: args}, nil

	case expr.In:
		subject, err := CompileExpr(n.E)
		if err != nil {
			return nil, err
		}
		elems := make([]sqlast.Expr, len(n.Elems))
		for i, el := range n.Elems {
			compiled, err := CompileExpr(el)
			if err != nil {
				return nil, err
			}
			elems[i] = compiled
		}
		return sqlast.In{E: subject, Elems: elems}, nil

	case expr.NowExpr:
		return compileNow(), nil

	case nil:
		return nil, fmt.Errorf("compile: nil expression")

	default:
		return nil, fmt.Errorf("compile: unsupported expression type %T", e)
	}
}

// compileBinary applies the null-aware rewrite before the generic
// operator mapping: equality against the null literal becomes an
// IS NULL test, inequality an IS NOT NULL test. The engine never sees
// = or <> against a null parameter.
func compileBinary(b expr.Binary) (sqlast.Expr, error) {
	if b.Op == expr.OpEqual || b.Op == expr.OpNotEqual {
		if other, isNull := nullComparand(b); isNull {
			inner, err := CompileExpr(other)
			if err != nil {
				return nil, err
			}
			return sqlast.IsNull{E: inner, Negate: b.Op == expr.OpNotEqual}, nil
		}
	}

	op := binaryOps[b.Op]
	l, err := CompileExpr(b.L)
	if err != nil {
		return nil, err
	}
	r, err := CompileExpr(b.R)
	if err != nil {
		return nil, err
	}
	return sqlast.Binary{Op: op, L: l, R: r}, nil
}

// nullComparand returns the non-null side of a comparison whose other
// side is the null literal.
func nullComparand(b expr.Binary) (expr.Expr, bool) {
	if v, ok := b.L.(expr.Value); ok && v.IsNull() {
		return b.R, true
	}
	if v, ok := b.R.(expr.Value); ok && v.IsNull() {
		return b.L, true
	}
	return nil, false
}

// compilePath resolves a key path into a nested join chain terminating at
// the leaf column. Interior segments are relationships by the key-path
// invariant; anything else here is a broken invariant and panics.
func compilePath(props []*schema.Property) sqlast.Expr {
	p := props[0]
	if len(props) == 1 {
		// Scalar leaf, or a to-one leaf standing for the related id:
		// both live in the declaring table's column.
		return sqlast.Column{Table: p.Model.Table, Name: p.Column()}
	}

	cont := compilePath(props[1:])
	switch p.Kind {
	case schema.KindToOne:
		return sqlast.Join{
			Left:  sqlast.Column{Table: p.Model.Table, Name: p.Column()},
			Right: sqlast.Column{Table: p.Related.Table, Name: "id"},
			Cont:  cont,
		}
	case schema.KindToMany:
		return sqlast.Join{
			Left:  sqlast.Column{Table: p.Model.Table, Name: "id"},
			Right: sqlast.Column{Table: p.Related.Table, Name: p.Inverse().Column()},
			Cont:  cont,
		}
	default:
		panic(fmt.Sprintf("compile: interior key-path segment %s.%s is not a relationship",
			p.Model.Name, p.Name))
	}
}

// compileNow builds the engine-evaluated current instant: integer Unix
// seconds plus the sub-second remainder, both computed by the engine at
// execution time.
func compileNow() sqlast.Expr {
	now := func(format string) sqlast.Expr {
		return sqlast.Call{Fn: "strftime", Args: []sqlast.Expr{
			sqlast.Literal{V: format},
			sqlast.Literal{V: "now"},
		}}
	}
	// %f yields SS.SSS within the minute; subtracting %S leaves the
	// fractional part, which added to %s (whole Unix seconds) gives the
	// instant with sub-second precision.
	return sqlast.Binary{
		Op: "+",
		L:  now("%s"),
		R:  sqlast.Binary{Op: "-", L: now("%f"), R: now("%S")},
	}
}
