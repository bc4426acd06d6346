package exporter

import (
	"github.com/go-gota/gota/series"

	"wellpulse/internal/dataset"
)

// TableRecords converts a table into CSV headers and records. Numeric
// values are rendered in round-trip form and missing cells become empty
// strings, so a written table re-loads to the same values.
func TableRecords(t dataset.Table) (headers []string, records [][]string) {
	headers = t.Columns()
	rows := t.NRows()

	columns := make([][]string, len(headers))
	for j, name := range headers {
		s := t.Column(name)
		col := make([]string, rows)
		if s.Type() == series.String {
			for i := 0; i < rows; i++ {
				if s.Elem(i).IsNA() {
					col[i] = ""
				} else {
					col[i] = s.Elem(i).String()
				}
			}
		} else {
			for i, v := range t.Float(name) {
				col[i] = formatFloat(v)
			}
		}
		columns[j] = col
	}

	records = make([][]string, rows)
	for i := 0; i < rows; i++ {
		row := make([]string, len(headers))
		for j := range headers {
			row[j] = columns[j][i]
		}
		records[i] = row
	}
	return headers, records
}

// WriteTable writes a table as a BOM-prefixed CSV artifact.
func (w *CSVWriter) WriteTable(t dataset.Table, filePath string) error {
	headers, records := TableRecords(t)
	return w.WriteSimpleCSV(filePath, headers, records)
}
