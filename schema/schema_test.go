package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModels(t *testing.T) (person, widget *Model) {
	t.Helper()
	person = New("Person", "people")
	person.Scalar("name", TypeText, false)
	widget = New("Widget", "widgets")
	widget.Scalar("name", TypeText, false)
	widget.ToOne("owner", person, true)
	person.ToMany("widgets", widget, "owner")
	return person, widget
}

func TestModel_DeclaresID(t *testing.T) {
	m := New("Widget", "widgets")

	id := m.ID()
	require.NotNil(t, id)
	assert.True(t, id.Primary)
	assert.Equal(t, TypeInteger, id.Type)
	assert.False(t, id.Nullable)
	assert.Equal(t, []*Property{id}, m.Properties())
}

func TestModel_DuplicateProperty_Panics(t *testing.T) {
	m := New("Widget", "widgets")
	m.Scalar("name", TypeText, false)

	assert.Panics(t, func() {
		m.Scalar("name", TypeText, false)
	})
}

func TestToMany_RequiresBackingToOne(t *testing.T) {
	person, widget := testModels(t)

	widgets := person.Property("widgets")
	require.NotNil(t, widgets)
	assert.Equal(t, KindToMany, widgets.Kind)
	assert.Equal(t, widget.Property("owner"), widgets.Inverse())

	other := New("Other", "others")
	assert.Panics(t, func() {
		other.ToMany("widgets", widget, "owner") // owner points at Person, not Other
	})
}

func TestToMany_HasNoColumn(t *testing.T) {
	person, _ := testModels(t)

	assert.Panics(t, func() {
		person.Property("widgets").Column()
	})
}

func TestDefinition_Columns(t *testing.T) {
	person, widget := testModels(t)

	def := widget.Definition()
	assert.Equal(t, "widgets", def.Name)
	assert.Equal(t, []ColumnDef{
		{Name: "id", Type: TypeInteger, PrimaryKey: true},
		{Name: "name", Type: TypeText},
		{Name: "owner", Type: TypeInteger, Nullable: true},
	}, def.Columns)

	// The to-many contributes no column to its declaring table.
	personDef := person.Definition()
	_, hasWidgets := personDef.Column("widgets")
	assert.False(t, hasWidgets)
}

func TestTableDef_Equal(t *testing.T) {
	a := TableDef{Name: "widgets", Columns: []ColumnDef{
		{Name: "id", Type: TypeInteger, PrimaryKey: true},
		{Name: "name", Type: TypeText},
	}}

	reordered := TableDef{Name: "widgets", Columns: []ColumnDef{
		{Name: "name", Type: TypeText},
		{Name: "id", Type: TypeInteger, PrimaryKey: true},
	}}
	assert.True(t, a.Equal(reordered), "column order is not structural")

	renamed := TableDef{Name: "things", Columns: a.Columns}
	assert.False(t, a.Equal(renamed))

	retyped := TableDef{Name: "widgets", Columns: []ColumnDef{
		{Name: "id", Type: TypeInteger, PrimaryKey: true},
		{Name: "name", Type: TypeBlob},
	}}
	assert.False(t, a.Equal(retyped))

	nullabilityFlip := TableDef{Name: "widgets", Columns: []ColumnDef{
		{Name: "id", Type: TypeInteger, PrimaryKey: true},
		{Name: "name", Type: TypeText, Nullable: true},
	}}
	assert.False(t, a.Equal(nullabilityFlip))

	extra := TableDef{Name: "widgets", Columns: append(
		append([]ColumnDef{}, a.Columns...),
		ColumnDef{Name: "size", Type: TypeInteger},
	)}
	assert.False(t, a.Equal(extra))
}
