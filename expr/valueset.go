package expr

import (
	"time"

	"github.com/google/uuid"

	"github.com/jordanekay/PersistDB/schema"
)

// Generator mints a fresh literal when a value set is compiled. The
// engine never receives an unresolved generator.
type Generator func() Value

// GenerateID mints a time-sortable unique identifier (UUIDv7 string).
func GenerateID() Value {
	return Lit(uuid.Must(uuid.NewV7()).String())
}

// GenerateNow captures the current instant as a literal. Unlike Now(),
// which the engine evaluates at execution time, the capture happens when
// the value set is compiled.
func GenerateNow() Value {
	return Lit(time.Now())
}

// Assignment is one property binding in a value set: either a concrete
// expression or a generator resolved at compile time.
type Assignment struct {
	Expr Expr
	Gen  Generator
}

type valueEntry struct {
	prop   *schema.Property
	assign Assignment
}

// ValueSet maps properties to assignments for insert and update, one
// value per property. The zero value is empty and ready to use; all
// mutating operations return a new set.
type ValueSet struct {
	entries []valueEntry
}

// Set returns a copy of the set with the property assigned the
// expression, replacing any previous assignment in place.
func (vs ValueSet) Set(p *schema.Property, e Expr) ValueSet {
	return vs.assign(p, Assignment{Expr: e})
}

// SetGenerated returns a copy of the set with the property assigned a
// generator.
func (vs ValueSet) SetGenerated(p *schema.Property, g Generator) ValueSet {
	return vs.assign(p, Assignment{Gen: g})
}

func (vs ValueSet) assign(p *schema.Property, a Assignment) ValueSet {
	out := ValueSet{entries: make([]valueEntry, len(vs.entries))}
	copy(out.entries, vs.entries)
	for i, e := range out.entries {
		if e.prop == p {
			out.entries[i].assign = a
			return out
		}
	}
	out.entries = append(out.entries, valueEntry{prop: p, assign: a})
	return out
}

// Get returns the assignment for a property.
func (vs ValueSet) Get(p *schema.Property) (Assignment, bool) {
	for _, e := range vs.entries {
		if e.prop == p {
			return e.assign, true
		}
	}
	return Assignment{}, false
}

// Len returns the number of assigned properties.
func (vs ValueSet) Len() int { return len(vs.entries) }

// Each visits assignments in first-assignment order.
func (vs ValueSet) Each(fn func(*schema.Property, Assignment)) {
	for _, e := range vs.entries {
		fn(e.prop, e.assign)
	}
}

// Merge returns the right-biased union: assignments from b win per
// property, properties new in b append after a's.
func Merge(a, b ValueSet) ValueSet {
	out := a
	b.Each(func(p *schema.Property, assign Assignment) {
		out = out.assign(p, assign)
	})
	return out
}

// SufficientForInsert reports whether every non-nullable scalar and
// non-nullable to-one property of the model has an assignment, and
// returns the names of any missing. To-many properties, nullable
// properties, and the engine-assigned primary key are exempt.
//
// This is a client-side precondition check; the engine is never asked to
// insert an insufficient set.
func (vs ValueSet) SufficientForInsert(m *schema.Model) (missing []string, ok bool) {
	for _, p := range m.Properties() {
		if p.Primary || p.Nullable || p.Kind == schema.KindToMany {
			continue
		}
		if _, assigned := vs.Get(p); !assigned {
			missing = append(missing, p.Name)
		}
	}
	return missing, len(missing) == 0
}
