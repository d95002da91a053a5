package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jordanekay/PersistDB/schema"
	"github.com/jordanekay/PersistDB/sqlast"
)

func widgetDef() schema.TableDef {
	return schema.TableDef{
		Name: "widgets",
		Columns: []schema.ColumnDef{
			{Name: "id", Type: schema.TypeInteger, PrimaryKey: true},
			{Name: "name", Type: schema.TypeText},
			{Name: "price", Type: schema.TypeReal, Nullable: true},
			{Name: "active", Type: schema.TypeBool, Nullable: true},
			{Name: "created", Type: schema.TypeDatetime, Nullable: true},
		},
	}
}

func TestOpen_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(path, false)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database file not created: %v", err)
	}
}

func TestOpen_ReadOnlyMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")

	db, err := Open(path, true)
	if err == nil {
		db.Close()
		t.Fatal("expected error opening missing file read-only")
	}
}

func TestCreateTable_IntrospectRoundTrip(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	want := widgetDef()
	if err := db.CreateTable(ctx, want); err != nil {
		t.Fatalf("create table: %v", err)
	}

	defs, err := db.IntrospectSchema(ctx)
	if err != nil {
		t.Fatalf("introspect: %v", err)
	}
	if len(defs) != 1 {
		t.Fatalf("got %d tables, want 1", len(defs))
	}
	if !defs[0].Equal(want) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", defs[0], want)
	}
}

func TestIntrospectSchema_Empty(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	defs, err := db.IntrospectSchema(context.Background())
	if err != nil {
		t.Fatalf("introspect: %v", err)
	}
	if len(defs) != 0 {
		t.Errorf("got %d tables, want 0", len(defs))
	}
}

func TestIntrospectSchema_UnknownDeclaredType(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if _, err := db.db.ExecContext(ctx, "CREATE TABLE odd (x NUMERIC)"); err != nil {
		t.Fatalf("create: %v", err)
	}

	defs, err := db.IntrospectSchema(ctx)
	if err != nil {
		t.Fatalf("introspect: %v", err)
	}
	if defs[0].Columns[0].Type != 0 {
		t.Errorf("got type %v, want zero", defs[0].Columns[0].Type)
	}
}

func TestInsertSelectExec(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.CreateTable(ctx, widgetDef()); err != nil {
		t.Fatalf("create table: %v", err)
	}

	id, err := db.Insert(ctx, sqlast.Insert{Table: "widgets", Values: []sqlast.ColumnValue{
		{Column: "name", Value: sqlast.Literal{V: "A"}},
	}})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id != 1 {
		t.Errorf("got id %d, want 1", id)
	}

	sel := sqlast.Select{
		Table: "widgets",
		Results: []sqlast.ResultColumn{
			{Expr: sqlast.Column{Table: "widgets", Name: "id"}, Alias: "id"},
			{Expr: sqlast.Column{Table: "widgets", Name: "name"}, Alias: "name"},
		},
	}
	rows, err := db.Select(ctx, sel)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(rows) != 1 || len(rows[0]) != 2 {
		t.Fatalf("got rows %v", rows)
	}
	if rows[0][0] != int64(1) {
		t.Errorf("got id %v, want int64(1)", rows[0][0])
	}

	n, err := db.Exec(ctx, sqlast.Update{
		Table:  "widgets",
		Values: []sqlast.ColumnValue{{Column: "name", Value: sqlast.Literal{V: "B"}}},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if n != 1 {
		t.Errorf("updated %d rows, want 1", n)
	}

	n, err = db.Exec(ctx, sqlast.Delete{Table: "widgets"})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d rows, want 1", n)
	}

	rows, err = db.Select(ctx, sel)
	if err != nil {
		t.Fatalf("select after delete: %v", err)
	}
	if rows == nil {
		t.Error("empty result should be a non-nil slice")
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}

func TestExec_ZeroRowsAffected(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.CreateTable(ctx, widgetDef()); err != nil {
		t.Fatalf("create table: %v", err)
	}

	n, err := db.Exec(ctx, sqlast.Delete{
		Table: "widgets",
		Where: sqlast.Binary{Op: "=", L: sqlast.Column{Table: "widgets", Name: "name"}, R: sqlast.Literal{V: "nope"}},
	})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 0 {
		t.Errorf("deleted %d rows, want 0", n)
	}
}

func TestReadOnly_RejectsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	rw, err := Open(path, false)
	if err != nil {
		t.Fatalf("open read-write: %v", err)
	}
	ctx := context.Background()
	if err := rw.CreateTable(ctx, widgetDef()); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if err := rw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	ro, err := Open(path, true)
	if err != nil {
		t.Fatalf("open read-only: %v", err)
	}
	defer ro.Close()

	_, err = ro.Insert(ctx, sqlast.Insert{Table: "widgets", Values: []sqlast.ColumnValue{
		{Column: "name", Value: sqlast.Literal{V: "A"}},
	}})
	if err == nil {
		t.Fatal("expected insert on read-only connection to fail")
	}
}
