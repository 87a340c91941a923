// =============================================================================
// SAS7BDAT Converter - In-Memory Tables
// =============================================================================
//
// A Table is the hand-off point between the source readers (sas7bdat, xpt)
// and the output writers. It is column oriented: each Column holds one slice
// of values of a single Kind plus a parallel missing mask.
//
// =============================================================================

package dataset

import (
	"fmt"
	"time"
)

// Kind is the value type of a column.
type Kind int

const (
	// KindNumber columns hold float64 values.
	KindNumber Kind = iota

	// KindText columns hold string values.
	KindText

	// KindDate columns hold calendar dates (no time of day).
	KindDate

	// KindDateTime columns hold timestamps.
	KindDateTime
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindDate:
		return "date"
	case KindDateTime:
		return "datetime"
	default:
		return "unknown"
	}
}

// IsTime reports whether values of the kind are stored in Column.Times.
func (k Kind) IsTime() bool {
	return k == KindDate || k == KindDateTime
}

// Column is a single named variable of a data set.
type Column struct {
	// Name is the variable name.
	Name string

	// Label is the optional descriptive label.
	Label string

	// Format is the SAS display format, e.g. "DATE9" or "$CHAR20".
	Format string

	// Kind selects which of the value slices is populated.
	Kind Kind

	Numbers []float64
	Texts   []string
	Times   []time.Time

	// Missing marks cells with no value. It always has the column's length.
	Missing []bool
}

// Len returns the number of cells in the column.
func (c *Column) Len() int {
	return len(c.Missing)
}

// Value returns the cell at row and whether it is present. The concrete type
// is float64, string or time.Time depending on Kind.
func (c *Column) Value(row int) (interface{}, bool) {
	if c.Missing[row] {
		return nil, false
	}
	switch {
	case c.Kind == KindNumber:
		return c.Numbers[row], true
	case c.Kind == KindText:
		return c.Texts[row], true
	default:
		return c.Times[row], true
	}
}

// Table is a fully loaded data set.
type Table struct {
	// Name is the data set (member) name when the source records one.
	Name string

	// Columns in file order.
	Columns []*Column

	// Rows is the number of records.
	Rows int
}

// Validate checks that every column has exactly Rows cells.
func (t *Table) Validate() error {
	for _, col := range t.Columns {
		if col.Len() != t.Rows {
			return fmt.Errorf("column %q has %d values, table has %d rows", col.Name, col.Len(), t.Rows)
		}
		var n int
		switch {
		case col.Kind == KindNumber:
			n = len(col.Numbers)
		case col.Kind == KindText:
			n = len(col.Texts)
		default:
			n = len(col.Times)
		}
		if n != t.Rows {
			return fmt.Errorf("column %q stores %d %s values, table has %d rows", col.Name, n, col.Kind, t.Rows)
		}
	}
	return nil
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}
