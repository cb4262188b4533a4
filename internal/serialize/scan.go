// Package serialize renders query results for the viewer data endpoint,
// either as plain values for JSON or as a compressed Arrow IPC stream.
package serialize

import (
	"database/sql"
	"fmt"
)

// Table is a fully materialized query result.
// Values hold whatever the database driver produced; nil marks SQL NULL.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// ScanTable drains rows into a Table. The caller keeps ownership of rows
// and must still Close() them.
func ScanTable(rows *sql.Rows) (*Table, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("serialize: columns: %w", err)
	}

	t := &Table{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("serialize: scan: %w", err)
		}
		t.Rows = append(t.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("serialize: rows: %w", err)
	}
	return t, nil
}
