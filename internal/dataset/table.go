package dataset

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Table is the in-memory representation of a production dataset. It wraps a
// gota DataFrame with helpers scoped to the canonical schema.
type Table struct {
	frame dataframe.DataFrame
}

// New wraps a DataFrame in a Table.
func New(frame dataframe.DataFrame) Table {
	return Table{frame: frame}
}

// Frame exposes the underlying DataFrame for filtering and selection.
func (t Table) Frame() dataframe.DataFrame {
	return t.frame
}

// NRows returns the number of rows.
func (t Table) NRows() int {
	return t.frame.Nrow()
}

// Columns returns the column names in order.
func (t Table) Columns() []string {
	return t.frame.Names()
}

// HasColumn reports whether the named column exists.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.frame.Names() {
		if c == name {
			return true
		}
	}
	return false
}

// Column returns the named column as a Series.
func (t Table) Column(name string) series.Series {
	return t.frame.Col(name)
}

// Float returns the named column as a float slice. Missing values are NaN.
func (t Table) Float(name string) []float64 {
	return t.frame.Col(name).Float()
}

// Strings returns the named column as a string slice.
func (t Table) Strings(name string) []string {
	return t.frame.Col(name).Records()
}

// MissingCount returns the number of missing values in the named column.
func (t Table) MissingCount(name string) int {
	s := t.frame.Col(name)
	count := 0
	for i := 0; i < s.Len(); i++ {
		if s.Elem(i).IsNA() {
			count++
		}
	}
	return count
}

// Numeric returns the canonical numeric columns present in the table.
func (t Table) Numeric() []string {
	var cols []string
	for _, col := range NumericColumns {
		if t.HasColumn(col) {
			cols = append(cols, col)
		}
	}
	return cols
}

// Categorical returns the canonical categorical columns present in the table.
func (t Table) Categorical() []string {
	var cols []string
	for _, col := range CategoricalColumns {
		if t.HasColumn(col) {
			cols = append(cols, col)
		}
	}
	return cols
}

// Records returns the table as string records, header row first.
func (t Table) Records() [][]string {
	return t.frame.Records()
}

// Err returns the DataFrame error state, if any.
func (t Table) Err() error {
	return t.frame.Err
}
