package dataset

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	apierrors "wellpulse/internal/errors"
)

// nanValues are the raw cell contents treated as missing on load.
var nanValues = []string{"", "NA", "N/A", "NaN", "nan", "null", "-"}

// utf8BOM is stripped from the start of CSV input when present.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Loader reads raw production files into Tables. Headers are normalized to
// the canonical schema and required columns are verified before the table
// is handed to any downstream component.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a dataset loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger: logger.With(slog.String("component", "dataset_loader")),
	}
}

// Load reads the file at path, dispatching on the extension. CSV and XLSX
// are supported.
func (l *Loader) Load(ctx context.Context, path string) (Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return l.LoadCSV(ctx, path)
	case ".xlsx":
		return l.LoadXLSX(ctx, path)
	default:
		return Table{}, apierrors.NewDataFormatError(
			fmt.Sprintf("unsupported input format %q, expected .csv or .xlsx", filepath.Ext(path)), nil)
	}
}

// LoadCSV reads a CSV file into a Table.
func (l *Loader) LoadCSV(ctx context.Context, path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, apierrors.NewDataFormatError("failed to open input file", err).
			WithContext("path", path)
	}
	defer f.Close()

	table, err := l.Read(ctx, f)
	if err != nil {
		if appErr, ok := err.(*apierrors.AppError); ok {
			appErr.WithContext("path", path)
		}
		return Table{}, err
	}

	l.logger.InfoContext(ctx, "loaded raw dataset",
		slog.String("path", path),
		slog.Int("rows", table.NRows()),
		slog.Int("columns", len(table.Columns())),
	)
	return table, nil
}

// Read parses CSV content from r into a Table. A UTF-8 BOM is tolerated.
func (l *Loader) Read(ctx context.Context, r io.Reader) (Table, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return Table{}, apierrors.NewDataFormatError("failed to parse CSV", err)
	}

	return l.fromRecords(ctx, records)
}

// LoadXLSX reads the first sheet of an XLSX workbook into a Table.
func (l *Loader) LoadXLSX(ctx context.Context, path string) (Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Table{}, apierrors.NewDataFormatError("failed to open workbook", err).
			WithContext("path", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, apierrors.NewDataFormatError("workbook contains no sheets", nil).
			WithContext("path", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Table{}, apierrors.NewDataFormatError("failed to read sheet", err).
			WithContext("path", path).
			WithContext("sheet", sheets[0])
	}

	table, err := l.fromRecords(ctx, padRecords(rows))
	if err != nil {
		if appErr, ok := err.(*apierrors.AppError); ok {
			appErr.WithContext("path", path)
		}
		return Table{}, err
	}

	l.logger.InfoContext(ctx, "loaded raw dataset",
		slog.String("path", path),
		slog.String("sheet", sheets[0]),
		slog.Int("rows", table.NRows()),
		slog.Int("columns", len(table.Columns())),
	)
	return table, nil
}

// fromRecords normalizes the header row, builds the DataFrame, and verifies
// required columns.
func (l *Loader) fromRecords(ctx context.Context, records [][]string) (Table, error) {
	if len(records) == 0 {
		return Table{}, apierrors.NewDataFormatError("input is empty", nil)
	}
	if len(records) < 2 {
		return Table{}, apierrors.NewDataFormatError("input contains no data rows", nil)
	}

	header := records[0]
	seen := make(map[string]string, len(header))
	for i, raw := range header {
		canonical := CanonicalHeader(raw)
		if canonical == "" {
			return Table{}, apierrors.NewDataFormatError(
				fmt.Sprintf("column %d has an empty header", i+1), nil)
		}
		if prev, dup := seen[canonical]; dup {
			return Table{}, apierrors.NewDataFormatError(
				fmt.Sprintf("columns %q and %q both normalize to %q", prev, raw, canonical), nil)
		}
		seen[canonical] = raw
		header[i] = canonical
	}

	frame := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DefaultType(series.Float),
		dataframe.WithTypes(map[string]series.Type{
			ColDate:      series.String,
			ColFieldName: series.String,
			ColWellID:    series.String,
			ColStatus:    series.String,
		}),
		dataframe.NaNValues(nanValues),
	)
	if frame.Err != nil {
		return Table{}, apierrors.NewDataFormatError("failed to build table", frame.Err)
	}

	table := New(frame)
	if err := CheckRequired(table); err != nil {
		return Table{}, err
	}
	return table, nil
}

// padRecords right-pads ragged rows to the header width. excelize omits
// trailing empty cells.
func padRecords(rows [][]string) [][]string {
	if len(rows) == 0 {
		return rows
	}
	width := len(rows[0])
	for i, row := range rows {
		for len(row) < width {
			row = append(row, "")
		}
		rows[i] = row[:width]
	}
	return rows
}
