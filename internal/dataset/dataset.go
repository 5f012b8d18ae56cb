// Package dataset provides the immutable in-memory table the engine reads.
package dataset

import (
	"strings"
	"sync"

	"github.com/spf13/cast"

	"tradelens/internal/errors"
)

// Dataset is an ordered table with named columns. Row order is source order
// and is never guaranteed chronological. Once built it is read-only; every
// evaluation works from the same snapshot.
type Dataset struct {
	columns  []string
	colIndex map[string]int
	rows     [][]string

	// lazily built numeric views, keyed by column index; the mutex keeps the
	// cache safe when baseline and filtered evaluations share one snapshot
	mu     sync.Mutex
	floats map[int]*FloatColumn
}

// FloatColumn is a parsed numeric view of one column. Valid[i] is false for
// blank cells; a cell that is non-blank but unparseable fails the whole view.
type FloatColumn struct {
	Values []float64
	Valid  []bool
}

// New creates a dataset over the given header. Column names are trimmed;
// duplicates and blanks are rejected.
func New(columns []string) (*Dataset, error) {
	if len(columns) == 0 {
		return nil, errors.ErrEmptyHeader
	}
	idx := make(map[string]int, len(columns))
	clean := make([]string, len(columns))
	for i, c := range columns {
		name := strings.TrimSpace(c)
		if name == "" {
			return nil, errors.NewValidationError("header", i, "blank column name")
		}
		if _, dup := idx[name]; dup {
			return nil, errors.NewValidationError("header", name, "duplicate column name")
		}
		idx[name] = i
		clean[i] = name
	}
	return &Dataset{
		columns:  clean,
		colIndex: idx,
		floats:   make(map[int]*FloatColumn),
	}, nil
}

// AppendRow adds one row. Short rows are padded with blanks, long rows are
// rejected. Only the loader calls this; after loading, the dataset is frozen.
func (d *Dataset) AppendRow(cells []string) error {
	if len(cells) > len(d.columns) {
		return errors.NewDataError("", len(d.rows), "row wider than header", nil)
	}
	row := make([]string, len(d.columns))
	copy(row, cells)
	d.rows = append(d.rows, row)
	return nil
}

// NumRows returns the number of data rows.
func (d *Dataset) NumRows() int {
	return len(d.rows)
}

// Columns returns the column names in source order.
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.columns))
	copy(out, d.columns)
	return out
}

// HasColumn reports whether a column exists.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.colIndex[name]
	return ok
}

// Value returns the raw cell at (row, column). The second result is false
// when the column does not exist.
func (d *Dataset) Value(row int, column string) (string, bool) {
	i, ok := d.colIndex[column]
	if !ok {
		return "", false
	}
	return d.rows[row][i], true
}

// Floats returns the parsed numeric view of a column, building it on first
// use. It fails with ErrUnknownColumn for a missing column and with
// ErrNonNumericColumn when any non-blank cell refuses to parse, naming the
// first offending row.
func (d *Dataset) Floats(column string) (*FloatColumn, error) {
	i, ok := d.colIndex[column]
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownColumn, "column %q", column)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if fc, ok := d.floats[i]; ok {
		return fc, nil
	}

	fc := &FloatColumn{
		Values: make([]float64, len(d.rows)),
		Valid:  make([]bool, len(d.rows)),
	}
	for r, row := range d.rows {
		cell := strings.TrimSpace(row[i])
		if cell == "" {
			continue
		}
		v, err := cast.ToFloat64E(strings.TrimSuffix(cell, "%"))
		if err != nil {
			return nil, errors.NewDataError(column, r, "non-numeric cell "+cell, errors.ErrNonNumericColumn)
		}
		fc.Values[r] = v
		fc.Valid[r] = true
	}
	d.floats[i] = fc
	return fc, nil
}

// IsNumeric reports whether every non-blank cell of the column parses as a
// number. Missing columns are not numeric.
func (d *Dataset) IsNumeric(column string) bool {
	_, err := d.Floats(column)
	return err == nil
}
