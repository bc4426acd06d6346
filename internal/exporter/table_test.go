package exporter

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellpulse/internal/config"
	"wellpulse/internal/dataset"
)

const exportCSV = `date,field_name,oil_production_bbl,wellhead_pressure_psi,choke_size_in,pump_efficiency_pct
2024-03-01,North Rumaila,1500.25,1850,0.5,82
2024-03-02,North Rumaila,1480,,0.5,81
2024-03-03,Zubair,903.125,1610,0.75,66
`

func loadExportTable(t *testing.T) dataset.Table {
	t.Helper()
	loader := dataset.NewLoader(slog.New(slog.NewTextHandler(io.Discard, nil)))
	tbl, err := loader.Read(context.Background(), strings.NewReader(exportCSV))
	require.NoError(t, err)
	return tbl
}

func TestTableRecords(t *testing.T) {
	tbl := loadExportTable(t)

	headers, records := TableRecords(tbl)
	assert.Equal(t, tbl.Columns(), headers)
	require.Len(t, records, 3)

	assert.Equal(t, "2024-03-01", records[0][0])
	assert.Equal(t, "North Rumaila", records[0][1])
	assert.Equal(t, "1500.25", records[0][2], "floats keep round-trip form")
	assert.Equal(t, "", records[1][3], "missing cells export as empty")
	assert.Equal(t, "903.125", records[2][2])
}

func TestWriteTableRoundTrip(t *testing.T) {
	paths, err := config.NewPaths(config.DataConfig{BaseDir: t.TempDir()})
	require.NoError(t, err)

	tbl := loadExportTable(t)
	name := config.CleanedFilePrefix + "20240304.csv"

	require.NoError(t, NewCSVWriter(paths).WriteTable(tbl, name))

	loader := dataset.NewLoader(slog.New(slog.NewTextHandler(io.Discard, nil)))
	reloaded, err := loader.Load(context.Background(), paths.CleanedFile(name))
	require.NoError(t, err)

	assert.Equal(t, tbl.Columns(), reloaded.Columns())
	assert.Equal(t, tbl.Records(), reloaded.Records())
	assert.Equal(t, 1, reloaded.MissingCount("wellhead_pressure_psi"))
}
