package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/jordanekay/PersistDB/schema"
)

// declaredTypes maps semantic types to the declared SQL type, chosen so
// PRAGMA table_info round-trips them exactly for structural comparison.
var declaredTypes = map[schema.Type]string{
	schema.TypeInteger:  "INTEGER",
	schema.TypeReal:     "REAL",
	schema.TypeText:     "TEXT",
	schema.TypeBlob:     "BLOB",
	schema.TypeBool:     "BOOLEAN",
	schema.TypeDatetime: "DATETIME",
}

// typeFromDecl inverts declaredTypes. Unknown declared types map to the
// zero Type, which never equals a declared semantic type, so structural
// comparison reports them incompatible rather than guessing.
func typeFromDecl(decl string) schema.Type {
	for t, d := range declaredTypes {
		if strings.EqualFold(decl, d) {
			return t
		}
	}
	return 0
}

// IntrospectSchema reads the on-disk table definitions.
func (d *DB) IntrospectSchema(ctx context.Context) ([]schema.TableDef, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("introspect schema: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("introspect schema: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("introspect schema: %w", err)
	}

	defs := make([]schema.TableDef, 0, len(names))
	for _, name := range names {
		def, err := d.introspectTable(ctx, name)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (d *DB) introspectTable(ctx context.Context, name string) (schema.TableDef, error) {
	rows, err := d.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", name))
	if err != nil {
		return schema.TableDef{}, fmt.Errorf("introspect %s: %w", name, err)
	}
	defer rows.Close()

	def := schema.TableDef{Name: name}
	for rows.Next() {
		var (
			cid     int
			colName string
			decl    string
			notNull int
			dflt    any
			pk      int
		)
		if err := rows.Scan(&cid, &colName, &decl, &notNull, &dflt, &pk); err != nil {
			return schema.TableDef{}, fmt.Errorf("introspect %s: %w", name, err)
		}
		def.Columns = append(def.Columns, schema.ColumnDef{
			Name: colName,
			Type: typeFromDecl(decl),
			// The primary key is NOT NULL even when table_info reports
			// notnull = 0 for an INTEGER PRIMARY KEY alias.
			Nullable:   notNull == 0 && pk == 0,
			PrimaryKey: pk != 0,
		})
	}
	if err := rows.Err(); err != nil {
		return schema.TableDef{}, fmt.Errorf("introspect %s: %w", name, err)
	}
	return def, nil
}

// CreateTable creates a table from its definition.
func (d *DB) CreateTable(ctx context.Context, def schema.TableDef) error {
	cols := make([]string, 0, len(def.Columns))
	for _, c := range def.Columns {
		decl, ok := declaredTypes[c.Type]
		if !ok {
			return fmt.Errorf("create table %s: column %s has unknown type", def.Name, c.Name)
		}
		col := fmt.Sprintf("%s %s", c.Name, decl)
		if c.PrimaryKey {
			col += " PRIMARY KEY"
		} else if !c.Nullable {
			col += " NOT NULL"
		}
		cols = append(cols, col)
	}
	stmt := fmt.Sprintf("CREATE TABLE %s (%s)", def.Name, strings.Join(cols, ", "))
	if _, err := d.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create table %s: %w", def.Name, err)
	}
	return nil
}
