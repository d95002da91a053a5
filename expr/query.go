package expr

import "github.com/jordanekay/PersistDB/schema"

// Query selects rows of one model: an optional predicate, an ordering,
// an optional grouping expression, and the projected key paths.
//
// Queries are immutable values; the chaining methods return copies.
type Query struct {
	Model   *schema.Model
	Where   *Predicate
	Order   Ordering
	GroupBy Expr

	// Projection lists the key paths to decode. Empty means every column
	// of the model (scalars plus to-one ids).
	Projection []KeyPath
}

// From starts a query over all rows of a model.
func From(m *schema.Model) Query {
	return Query{Model: m}
}

// Filter returns the query narrowed by a boolean expression, conjoined
// with any existing predicate.
func (q Query) Filter(e Expr) Query {
	if q.Where == nil {
		q.Where = Where(q.Model, e)
	} else {
		q.Where = q.Where.And(e)
	}
	return q
}

// Sort returns the query with sort keys appended, earlier keys taking
// precedence.
func (q Query) Sort(keys ...SortKey) Query {
	order := make(Ordering, 0, len(q.Order)+len(keys))
	order = append(order, q.Order...)
	order = append(order, keys...)
	q.Order = order
	return q
}

// Group returns the query grouped by an expression. Fetching a grouped
// query yields ordered groups keyed by the expression's value.
func (q Query) Group(e Expr) Query {
	q.GroupBy = e
	return q
}

// Project returns the query with an explicit projection.
func (q Query) Project(paths ...KeyPath) Query {
	q.Projection = paths
	return q
}

// Paths returns the effective projection: the explicit one, or every
// column-backed property of the model.
func (q Query) Paths() []KeyPath {
	if len(q.Projection) > 0 {
		return q.Projection
	}
	var paths []KeyPath
	for _, p := range q.Model.Properties() {
		if p.Kind == schema.KindToMany {
			continue
		}
		paths = append(paths, KeyPath{Props: []*schema.Property{p}})
	}
	return paths
}

// Aggregate is a single reducing expression over a model, optionally
// filtered: count, max, min, or coalesce compositions thereof.
type Aggregate struct {
	Model *schema.Model
	Expr  Expr
	Where *Predicate
}

// Reduce creates an aggregate over a model.
func Reduce(m *schema.Model, e Expr) Aggregate {
	return Aggregate{Model: m, Expr: e}
}

// Filter returns the aggregate narrowed by a boolean expression.
func (a Aggregate) Filter(e Expr) Aggregate {
	if a.Where == nil {
		a.Where = Where(a.Model, e)
	} else {
		a.Where = a.Where.And(e)
	}
	return a
}
