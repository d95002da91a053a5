package expr

import "github.com/jordanekay/PersistDB/schema"

// Expr represents a typed expression tree node.
//
// This is a sealed interface - only types in this package implement it.
//
// Node types:
//   - Value: a literal
//   - KeyPath: a property path rooted at a model
//   - Unary, Binary: operator applications
//   - Call: a named function application
//   - In: set membership against a literal element list
//   - NowExpr: the engine-evaluated current instant
type Expr interface {
	exprNode() // Marker method - seals interface to this package
}

// Value is a literal expression. A nil V is the null literal.
type Value struct {
	V any
}

func (Value) exprNode() {}

// Lit creates a literal expression.
func Lit(v any) Value { return Value{V: v} }

// Null is the null literal.
func Null() Value { return Value{} }

// IsNull reports whether the literal is null.
func (v Value) IsNull() bool { return v.V == nil }

// UnaryOp enumerates unary operators.
type UnaryOp int

const (
	OpNot UnaryOp = iota + 1
)

// BinaryOp enumerates binary operators.
type BinaryOp int

const (
	OpEqual BinaryOp = iota + 1
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpAnd
	OpOr
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
)

// Unary applies a unary operator.
type Unary struct {
	Op UnaryOp
	E  Expr
}

func (Unary) exprNode() {}

// Binary applies a binary operator.
type Binary struct {
	Op BinaryOp
	L  Expr
	R  Expr
}

func (Binary) exprNode() {}

// Fn enumerates the supported scalar-reduction and string functions.
type Fn int

const (
	FnCount Fn = iota + 1
	FnMax
	FnMin
	FnCoalesce
	FnLength
)

// Call applies a function to argument expressions.
type Call struct {
	Fn   Fn
	Args []Expr
}

func (Call) exprNode() {}

// In tests set membership of E against Elems.
type In struct {
	E     Expr
	Elems []Expr
}

func (In) exprNode() {}

// NowExpr yields the current instant at execution time, as real seconds
// since the Unix epoch. It is evaluated by the engine, never captured at
// compile time; two actions compiling the same tree at different moments
// observe different instants.
type NowExpr struct{}

func (NowExpr) exprNode() {}

// Now creates an engine-evaluated current-instant expression.
func Now() NowExpr { return NowExpr{} }

// Not negates a boolean expression.
func Not(e Expr) Expr { return Unary{Op: OpNot, E: e} }

// Eq creates an equality comparison. Comparing against the null literal
// compiles to an IS NULL test.
func Eq(l, r Expr) Expr { return Binary{Op: OpEqual, L: l, R: r} }

// Ne creates an inequality comparison. Comparing against the null literal
// compiles to an IS NOT NULL test.
func Ne(l, r Expr) Expr { return Binary{Op: OpNotEqual, L: l, R: r} }

// Lt creates a less-than comparison.
func Lt(l, r Expr) Expr { return Binary{Op: OpLess, L: l, R: r} }

// Le creates a less-than-or-equal comparison.
func Le(l, r Expr) Expr { return Binary{Op: OpLessEqual, L: l, R: r} }

// Gt creates a greater-than comparison.
func Gt(l, r Expr) Expr { return Binary{Op: OpGreater, L: l, R: r} }

// Ge creates a greater-than-or-equal comparison.
func Ge(l, r Expr) Expr { return Binary{Op: OpGreaterEqual, L: l, R: r} }

// And conjoins boolean expressions.
func And(l, r Expr) Expr { return Binary{Op: OpAnd, L: l, R: r} }

// Or disjoins boolean expressions.
func Or(l, r Expr) Expr { return Binary{Op: OpOr, L: l, R: r} }

// Count counts rows (or non-null values of its argument).
func Count(e Expr) Expr { return Call{Fn: FnCount, Args: []Expr{e}} }

// Max reduces to the greatest argument value.
func Max(args ...Expr) Expr { return Call{Fn: FnMax, Args: args} }

// Min reduces to the least argument value.
func Min(args ...Expr) Expr { return Call{Fn: FnMin, Args: args} }

// Coalesce yields the first non-null argument.
func Coalesce(args ...Expr) Expr { return Call{Fn: FnCoalesce, Args: args} }

// Length yields the length of a text value.
func Length(e Expr) Expr { return Call{Fn: FnLength, Args: []Expr{e}} }

// InList tests membership of e in the given element expressions.
func InList(e Expr, elems ...Expr) Expr { return In{E: e, Elems: elems} }

// InValues tests membership of e in the given literal values.
func InValues(e Expr, values ...any) Expr {
	elems := make([]Expr, len(values))
	for i, v := range values {
		elems[i] = Lit(v)
	}
	return In{E: e, Elems: elems}
}

// rootOf returns the model a subtree is rooted at, or nil for trees with
// no key path (pure literals).
func rootOf(e Expr) *schema.Model {
	switch n := e.(type) {
	case KeyPath:
		return n.Root()
	case Unary:
		return rootOf(n.E)
	case Binary:
		if m := rootOf(n.L); m != nil {
			return m
		}
		return rootOf(n.R)
	case Call:
		for _, a := range n.Args {
			if m := rootOf(a); m != nil {
				return m
			}
		}
	case In:
		if m := rootOf(n.E); m != nil {
			return m
		}
		for _, el := range n.Elems {
			if m := rootOf(el); m != nil {
				return m
			}
		}
	}
	return nil
}
