package store

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/jordanekay/PersistDB/compiler"
	"github.com/jordanekay/PersistDB/internal/sqlite"
	"github.com/jordanekay/PersistDB/schema"
)

// Row is one decoded projection: result alias (the dotted key-path name)
// to semantic value. Nullable properties decode to nil when NULL.
type Row map[string]any

// Group is one group of a grouped query: the decoded group key and the
// group's rows in engine order.
type Group struct {
	Key  any
	Rows []Row
}

// decodeRows decodes an ungrouped result set.
func decodeRows(raw []sqlite.RawRow, cq compiler.CompiledQuery) []Row {
	rows := make([]Row, 0, len(raw))
	for _, rr := range raw {
		rows = append(rows, decodeRow(rr, cq, -1))
	}
	return rows
}

// decodeGroups decodes a grouped result set, splitting on the leading
// group-key column. The select orders by the group key first, so groups
// are contiguous; row order within each group is preserved.
func decodeGroups(raw []sqlite.RawRow, cq compiler.CompiledQuery) []Group {
	groups := make([]Group, 0)
	for _, rr := range raw {
		key := decodeValue(rr[cq.GroupIndex], cq.Columns[cq.GroupIndex])
		row := decodeRow(rr, cq, cq.GroupIndex)
		if n := len(groups); n > 0 && sameKey(groups[n-1].Key, key) {
			groups[n-1].Rows = append(groups[n-1].Rows, row)
		} else {
			groups = append(groups, Group{Key: key, Rows: []Row{row}})
		}
	}
	return groups
}

func decodeRow(raw sqlite.RawRow, cq compiler.CompiledQuery, skip int) Row {
	if len(raw) != len(cq.Columns) {
		panic(fmt.Sprintf("store: decode: %d values for %d columns", len(raw), len(cq.Columns)))
	}
	row := make(Row, len(cq.Columns))
	for i, col := range cq.Columns {
		if i == skip {
			continue
		}
		row[col.Name] = decodeValue(raw[i], col)
	}
	return row
}

// decodeValue converts an engine primitive into the column's semantic
// type. A mismatch means storage corruption or a compiler/schema bug,
// never expected in correct operation, so it fails fast instead of
// surfacing as a recoverable error.
func decodeValue(v any, col compiler.OutputColumn) any {
	if v == nil {
		if col.Nullable || col.Dynamic {
			return nil
		}
		panic(fmt.Sprintf("store: decode %s: NULL in non-nullable column", col.Name))
	}
	if col.Dynamic {
		return v
	}

	switch col.Type {
	case schema.TypeInteger:
		if n, ok := v.(int64); ok {
			return n
		}

	case schema.TypeReal:
		switch n := v.(type) {
		case float64:
			return n
		case int64:
			return float64(n)
		}

	case schema.TypeText:
		switch s := v.(type) {
		case string:
			return s
		case []byte:
			return string(s)
		}

	case schema.TypeBlob:
		if b, ok := v.([]byte); ok {
			return b
		}

	case schema.TypeBool:
		switch b := v.(type) {
		case bool:
			return b
		case int64:
			return b != 0
		}

	case schema.TypeDatetime:
		switch n := v.(type) {
		case float64:
			sec, frac := math.Modf(n)
			return time.Unix(int64(sec), int64(frac*1e9))
		case int64:
			return time.Unix(n, 0)
		}
	}

	panic(fmt.Sprintf("store: decode %s: engine value %T incompatible with %s",
		col.Name, v, col.Type))
}

// sameKey compares decoded group keys. Blobs compare by content; every
// other decoded type is comparable.
func sameKey(a, b any) bool {
	ab, aok := a.([]byte)
	bb, bok := b.([]byte)
	if aok || bok {
		return aok && bok && bytes.Equal(ab, bb)
	}
	return a == b
}
