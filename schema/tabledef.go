package schema

// ColumnDef describes one on-disk column for creation and compatibility
// checks. Compatibility is exact structural equality; there is no
// versioned migration protocol.
type ColumnDef struct {
	Name       string
	Type       Type
	Nullable   bool
	PrimaryKey bool
}

// TableDef describes one on-disk table.
type TableDef struct {
	Name    string
	Columns []ColumnDef
}

// Definition derives the model's table definition: the id column, every
// scalar property, and a foreign-key column per to-one relationship.
// To-many properties contribute nothing.
func (m *Model) Definition() TableDef {
	def := TableDef{Name: m.Table}
	for _, p := range m.props {
		switch p.Kind {
		case KindScalar, KindToOne:
			def.Columns = append(def.Columns, ColumnDef{
				Name:       p.Column(),
				Type:       p.Type,
				Nullable:   p.Nullable,
				PrimaryKey: p.Primary,
			})
		case KindToMany:
			// No column.
		}
	}
	return def
}

// Column returns the named column definition, or false.
func (d TableDef) Column(name string) (ColumnDef, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDef{}, false
}

// Equal reports exact structural equality with another table definition:
// the same column set, each matching on name, type, nullability, and
// primary-key flag. Column order is not significant.
func (d TableDef) Equal(other TableDef) bool {
	if d.Name != other.Name || len(d.Columns) != len(other.Columns) {
		return false
	}
	for _, c := range d.Columns {
		oc, ok := other.Column(c.Name)
		if !ok || oc != c {
			return false
		}
	}
	return true
}
