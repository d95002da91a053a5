package schema

import "fmt"

// Type identifies the semantic scalar type of a property.
//
// Datetime values are stored as REAL seconds since the Unix epoch so that
// engine-evaluated time expressions and client-supplied times compare
// directly.
type Type int

const (
	TypeInteger Type = iota + 1
	TypeReal
	TypeText
	TypeBlob
	TypeBool
	TypeDatetime
)

// String returns the lowercase name used in YAML declarations and logs.
func (t Type) String() string {
	switch t {
	case TypeInteger:
		return "integer"
	case TypeReal:
		return "real"
	case TypeText:
		return "text"
	case TypeBlob:
		return "blob"
	case TypeBool:
		return "bool"
	case TypeDatetime:
		return "datetime"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Kind distinguishes the three property shapes.
type Kind int

const (
	// KindScalar is a plain typed column on the model's table.
	KindScalar Kind = iota + 1
	// KindToOne references one row of a related model via a foreign-key
	// column on the declaring table.
	KindToOne
	// KindToMany is the inverse of a to-one: the foreign key lives on the
	// related table, so the declaring table carries no column for it.
	KindToMany
)

// Property describes one declared property of a model.
//
// Properties are tokens: expressions reference them by identity, and two
// models never share a Property value. Name doubles as the storage
// (column) name.
type Property struct {
	Model    *Model
	Name     string
	Kind     Kind
	Type     Type
	Nullable bool
	Related  *Model // set for KindToOne and KindToMany
	Primary  bool

	// inverse is the to-one property on the related model that backs a
	// to-many relationship. Resolved at declaration time.
	inverse *Property
}

// IsRelationship reports whether the property is to-one or to-many.
func (p *Property) IsRelationship() bool {
	return p.Kind == KindToOne || p.Kind == KindToMany
}

// Column returns the storage column name on the declaring table.
// Panics for to-many properties, which have no column.
func (p *Property) Column() string {
	if p.Kind == KindToMany {
		panic(fmt.Sprintf("schema: to-many property %s.%s has no column", p.Model.Name, p.Name))
	}
	return p.Name
}

// Model is a typed entity schema: a name, a table name, and an ordered
// closed set of properties.
type Model struct {
	Name  string
	Table string

	props  []*Property
	byName map[string]*Property
}

// New creates a model with the given name and table name and declares its
// "id" primary-key property.
func New(name, table string) *Model {
	m := &Model{
		Name:   name,
		Table:  table,
		byName: make(map[string]*Property),
	}
	m.add(&Property{
		Model:   m,
		Name:    "id",
		Kind:    KindScalar,
		Type:    TypeInteger,
		Primary: true,
	})
	return m
}

func (m *Model) add(p *Property) *Property {
	if _, exists := m.byName[p.Name]; exists {
		panic(fmt.Sprintf("schema: duplicate property %s.%s", m.Name, p.Name))
	}
	m.props = append(m.props, p)
	m.byName[p.Name] = p
	return p
}

// Scalar declares a scalar property and returns its token.
func (m *Model) Scalar(name string, t Type, nullable bool) *Property {
	return m.add(&Property{
		Model:    m,
		Name:     name,
		Kind:     KindScalar,
		Type:     t,
		Nullable: nullable,
	})
}

// ToOne declares a to-one relationship. The storage column holds the
// related row's id.
func (m *Model) ToOne(name string, related *Model, nullable bool) *Property {
	return m.add(&Property{
		Model:    m,
		Name:     name,
		Kind:     KindToOne,
		Type:     TypeInteger,
		Nullable: nullable,
		Related:  related,
	})
}

// ToMany declares a to-many relationship. fk names the to-one property on
// the related model that points back at this model; it must already be
// declared there.
func (m *Model) ToMany(name string, related *Model, fk string) *Property {
	back, ok := related.byName[fk]
	if !ok || back.Kind != KindToOne || back.Related != m {
		panic(fmt.Sprintf("schema: %s.%s: %s.%s is not a to-one back to %s",
			m.Name, name, related.Name, fk, m.Name))
	}
	p := m.add(&Property{
		Model:   m,
		Name:    name,
		Kind:    KindToMany,
		Related: related,
	})
	p.inverse = back
	return p
}

// Inverse returns the to-one property backing a to-many relationship,
// or nil for other kinds.
func (p *Property) Inverse() *Property { return p.inverse }

// ID returns the model's primary-key property.
func (m *Model) ID() *Property { return m.byName["id"] }

// Property returns the named property, or nil.
func (m *Model) Property(name string) *Property { return m.byName[name] }

// Properties returns the declared properties in declaration order.
// The returned slice must not be mutated.
func (m *Model) Properties() []*Property { return m.props }
