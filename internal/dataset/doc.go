// Package dataset loads raw production files into in-memory tables.
//
// The Loader reads CSV or XLSX input, normalizes raw headers to the
// canonical snake_case schema (see schema.go), and verifies the required
// columns before any downstream component runs. Tables wrap a gota
// DataFrame together with schema-aware helpers; descriptive statistics for
// the numeric columns come from Describe.
//
// Typical usage:
//
//	loader := dataset.NewLoader(logger)
//	table, err := loader.Load(ctx, "data/raw/oil_field_production_data.csv")
//	if err != nil {
//	    return err // DataFormatError: unreadable file or missing columns
//	}
//	stats := dataset.Describe(table)
package dataset
