// Package dataset holds the ordered, column-named tables emitted by a run.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Row is anything that renders as a single table row in a fixed column order.
type Row interface {
	Values() []string
}

// Table is an ordered set of rows under a named header.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// New builds a table from typed rows.
func New[R Row](name string, columns []string, rows []R) Table {
	t := Table{
		Name:    name,
		Columns: append([]string(nil), columns...),
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, r.Values())
	}
	return t
}

// Len returns the number of data rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Empty reports whether the table has no data rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// ColumnIndex returns the position of name in the header or -1.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// WithColumn returns a copy of the table with a trailing column holding value
// on every row. The receiver is left untouched.
func (t Table) WithColumn(name, value string) Table {
	out := Table{
		Name:    t.Name,
		Columns: append(append([]string(nil), t.Columns...), name),
		Rows:    make([][]string, 0, len(t.Rows)),
	}
	for _, r := range t.Rows {
		row := make([]string, 0, len(r)+1)
		row = append(row, r...)
		out.Rows = append(out.Rows, append(row, value))
	}
	return out
}

// WriteCSV writes the header followed by every row. An empty table still
// produces its header line.
func (t Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write %s header: %w", t.Name, err)
	}
	for i, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write %s row %d: %w", t.Name, i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", t.Name, err)
	}
	return nil
}
