package sqlast

import (
	"fmt"

	"github.com/google/uuid"
)

// Expr represents an engine-side expression.
//
// This is a sealed interface - only types in this package implement it.
type Expr interface {
	sqlNode() // Marker method - seals interface to this package
}

// Column references a column of a table (or of a joined table's scope).
type Column struct {
	Table string
	Name  string
}

func (Column) sqlNode() {}

// Literal is a parameter value. Rendered as ?, never interpolated.
type Literal struct {
	V any
}

func (Literal) sqlNode() {}

// Unary applies a prefix SQL operator.
type Unary struct {
	Op string // "NOT"
	E  Expr
}

func (Unary) sqlNode() {}

// Binary applies an infix SQL operator.
type Binary struct {
	Op string // "=", "<>", "<", "<=", ">", ">=", "AND", "OR", "+", ...
	L  Expr
	R  Expr
}

func (Binary) sqlNode() {}

// Call applies a SQL function.
type Call struct {
	Fn   string // "count", "max", "min", "coalesce", "length", "strftime"
	Args []Expr
}

func (Call) sqlNode() {}

// In tests membership of E in Elems.
type In struct {
	E     Expr
	Elems []Expr
}

func (In) sqlNode() {}

// IsNull tests E against NULL. Negate renders IS NOT NULL.
type IsNull struct {
	E      Expr
	Negate bool
}

func (IsNull) sqlNode() {}

// Join evaluates Cont in the scope of the table joined on
// Left = Right. Left belongs to the enclosing scope, Right to the
// joined table.
type Join struct {
	Left  Column
	Right Column
	Cont  Expr
}

func (Join) sqlNode() {}

// ResultColumn is one projected expression with its result alias.
type ResultColumn struct {
	Expr  Expr
	Alias string
}

// OrderKey is one ORDER BY entry.
type OrderKey struct {
	Expr       Expr
	Descending bool
}

// Select is a read request against one root table.
type Select struct {
	Table   string
	Results []ResultColumn
	Where   Expr // nil matches everything
	OrderBy []OrderKey
}

// ColumnValue binds a column to a value expression for a mutation.
type ColumnValue struct {
	Column string
	Value  Expr
}

// Action represents a mutation request.
//
// This is a sealed interface - Insert, Update, and Delete implement it.
type Action interface {
	actionNode()
	// ActionTable names the mutated table.
	ActionTable() string
}

// Insert adds one row.
type Insert struct {
	Table  string
	Values []ColumnValue
}

func (Insert) actionNode() {}

// ActionTable implements Action.
func (i Insert) ActionTable() string { return i.Table }

// Update rewrites matching rows. A nil Where applies to all rows.
type Update struct {
	Table  string
	Values []ColumnValue
	Where  Expr
}

func (Update) actionNode() {}

// ActionTable implements Action.
func (u Update) ActionTable() string { return u.Table }

// Delete removes matching rows. A nil Where applies to all rows.
type Delete struct {
	Table string
	Where Expr
}

func (Delete) actionNode() {}

// ActionTable implements Action.
func (d Delete) ActionTable() string { return d.Table }

// Tag identifies one submitted action. Exactly one Effect carries the
// same tag.
type Tag = uuid.UUID

// NewTag mints a fresh time-sortable action tag.
func NewTag() Tag { return uuid.Must(uuid.NewV7()) }

// EffectKind distinguishes effect payloads.
type EffectKind int

const (
	// EffectInserted reports a new row id.
	EffectInserted EffectKind = iota + 1
	// EffectRowsAffected reports an update/delete row count, possibly
	// zero.
	EffectRowsAffected
)

// Effect is the engine's report of one action's outcome. Every submitted
// action produces exactly one, even when zero rows are affected.
type Effect struct {
	Tag   Tag
	Table string
	Kind  EffectKind
	ID    int64 // new row id for EffectInserted
	Rows  int64 // affected count for EffectRowsAffected
}

// String renders the effect for logs.
func (e Effect) String() string {
	switch e.Kind {
	case EffectInserted:
		return fmt.Sprintf("inserted(%s, id=%d)", e.Table, e.ID)
	case EffectRowsAffected:
		return fmt.Sprintf("rowsAffected(%s, n=%d)", e.Table, e.Rows)
	default:
		return fmt.Sprintf("effect(%s)", e.Table)
	}
}
