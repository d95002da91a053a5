package compiler

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanekay/PersistDB/expr"
	"github.com/jordanekay/PersistDB/sqlast"
)

func TestCompileInsert(t *testing.T) {
	person, _ := testModels(t)

	vs := expr.ValueSet{}.
		Set(person.Property("name"), expr.Lit("Ada")).
		Set(person.Property("nickname"), expr.Null())
	ins, err := CompileInsert(person, vs)
	require.NoError(t, err)

	assert.Equal(t, "people", ins.Table)
	assert.Equal(t, []sqlast.ColumnValue{
		{Column: "name", Value: sqlast.Literal{V: "Ada"}},
		{Column: "nickname", Value: sqlast.Literal{V: nil}},
	}, ins.Values)
}

func TestCompileInsert_ResolvesGenerators(t *testing.T) {
	person, _ := testModels(t)

	vs := expr.ValueSet{}.SetGenerated(person.Property("name"), expr.GenerateID)

	first, err := CompileInsert(person, vs)
	require.NoError(t, err)
	second, err := CompileInsert(person, vs)
	require.NoError(t, err)

	// Each compilation mints a fresh value.
	a := first.Values[0].Value.(sqlast.Literal).V.(string)
	b := second.Values[0].Value.(sqlast.Literal).V.(string)
	assert.NotEqual(t, a, b)

	_, err = uuid.Parse(a)
	assert.NoError(t, err)
}

func TestCompileInsert_RejectsForeignProperty(t *testing.T) {
	person, widget := testModels(t)

	vs := expr.ValueSet{}.Set(widget.Property("name"), expr.Lit("sprocket"))
	_, err := CompileInsert(person, vs)
	assert.Error(t, err)
}

func TestCompileInsert_RejectsToMany(t *testing.T) {
	person, _ := testModels(t)

	vs := expr.ValueSet{}.Set(person.Property("widgets"), expr.Lit(int64(1)))
	_, err := CompileInsert(person, vs)
	assert.Error(t, err)
}

func TestCompileUpdate(t *testing.T) {
	_, widget := testModels(t)

	pred := expr.Where(widget, expr.Eq(expr.Path(widget.ID()), expr.Lit(int64(1))))
	vs := expr.ValueSet{}.Set(widget.Property("name"), expr.Lit("B"))
	upd, err := CompileUpdate(widget, pred, vs)
	require.NoError(t, err)

	assert.Equal(t, "widgets", upd.Table)
	assert.Equal(t, []sqlast.ColumnValue{{Column: "name", Value: sqlast.Literal{V: "B"}}}, upd.Values)
	assert.Equal(t, sqlast.Binary{
		Op: "=",
		L:  sqlast.Column{Table: "widgets", Name: "id"},
		R:  sqlast.Literal{V: int64(1)},
	}, upd.Where)
}

func TestCompileUpdate_NilPredicateMeansAllRows(t *testing.T) {
	_, widget := testModels(t)

	upd, err := CompileUpdate(widget, nil, expr.ValueSet{}.Set(widget.Property("name"), expr.Lit("B")))
	require.NoError(t, err)
	assert.Nil(t, upd.Where)
}

func TestCompileUpdate_RejectsForeignPredicate(t *testing.T) {
	person, widget := testModels(t)

	pred := expr.Where(person, expr.Eq(expr.Path(person.Property("name")), expr.Lit("Ada")))
	_, err := CompileUpdate(widget, pred, expr.ValueSet{}.Set(widget.Property("name"), expr.Lit("B")))
	assert.Error(t, err)
}

func TestCompileDelete(t *testing.T) {
	_, widget := testModels(t)

	del, err := CompileDelete(widget, expr.Where(widget, expr.Eq(expr.Path(widget.Property("name")), expr.Lit("B"))))
	require.NoError(t, err)
	assert.Equal(t, "widgets", del.Table)
	assert.NotNil(t, del.Where)

	all, err := CompileDelete(widget, nil)
	require.NoError(t, err)
	assert.Nil(t, all.Where)
}
