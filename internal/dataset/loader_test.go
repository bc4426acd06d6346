package dataset

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apierrors "wellpulse/internal/errors"
)

const sampleCSV = `Date,Field Name,Well ID,Status,Oil Production (bbl),Gas Production (MCF),Water Production (bbl),Wellhead Pressure (psi),Tubing Pressure (psi),Choke Size (in),Pump Efficiency %
2024-01-01,North Field,W-001,Active,1250.5,830.2,210.0,1450.0,1100.0,0.75,88.5
2024-01-01,South Field,W-014,Active,980.0,640.8,175.5,1380.0,1050.0,0.63,84.2
2024-01-02,North Field,W-001,Active,1244.1,828.9,212.3,1448.0,1097.5,0.75,88.1
`

func TestReadNormalizesHeaders(t *testing.T) {
	loader := NewLoader(nil)
	table, err := loader.Read(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 3, table.NRows())
	assert.Equal(t, []string{
		ColDate, ColFieldName, ColWellID, ColStatus,
		ColOilProduction, ColGasProduction, ColWaterProduction,
		ColWellheadPressure, ColTubingPressure, ColChokeSize, ColPumpEfficiency,
	}, table.Columns())

	oil := table.Float(ColOilProduction)
	require.Len(t, oil, 3)
	assert.InDelta(t, 1250.5, oil[0], 1e-9)

	dates := table.Strings(ColDate)
	assert.Equal(t, "2024-01-01", dates[0])
}

func TestReadStripsBOM(t *testing.T) {
	loader := NewLoader(nil)
	table, err := loader.Read(context.Background(), strings.NewReader("\xEF\xBB\xBF"+sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, ColDate, table.Columns()[0])
}

func TestReadMarksMissingValues(t *testing.T) {
	csvData := `date,field_name,oil_production_bbl,wellhead_pressure_psi,choke_size_in,pump_efficiency_pct
2024-01-01,North Field,1250.5,,0.75,88.5
2024-01-02,North Field,NA,1448.0,0.75,88.1
`
	loader := NewLoader(nil)
	table, err := loader.Read(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, 1, table.MissingCount(ColWellheadPressure))
	assert.Equal(t, 1, table.MissingCount(ColOilProduction))

	pressure := table.Float(ColWellheadPressure)
	assert.True(t, math.IsNaN(pressure[0]))
	assert.InDelta(t, 1448.0, pressure[1], 1e-9)
}

func TestReadMissingRequiredColumn(t *testing.T) {
	csvData := `date,field_name,wellhead_pressure_psi,choke_size_in,pump_efficiency_pct
2024-01-01,North Field,1450.0,0.75,88.5
`
	loader := NewLoader(nil)
	_, err := loader.Read(context.Background(), strings.NewReader(csvData))

	require.Error(t, err)
	assert.True(t, apierrors.IsDataFormatError(err))
	assert.Contains(t, err.Error(), ColOilProduction)
}

func TestReadRejectsDegenerateInput(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty input", ""},
		{"header only", "date,field_name,oil_production_bbl,wellhead_pressure_psi,choke_size_in,pump_efficiency_pct\n"},
		{"ragged row", "date,field_name,oil_production_bbl,wellhead_pressure_psi,choke_size_in,pump_efficiency_pct\n2024-01-01,North Field,1.0\n"},
	}

	loader := NewLoader(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.Read(context.Background(), strings.NewReader(tt.data))
			require.Error(t, err)
			assert.True(t, apierrors.IsDataFormatError(err))
		})
	}
}

func TestReadRejectsDuplicateNormalizedHeaders(t *testing.T) {
	csvData := `date,Field,field_name,oil_production_bbl,wellhead_pressure_psi,choke_size_in,pump_efficiency_pct
2024-01-01,North,North,1.0,2.0,3.0,4.0
`
	loader := NewLoader(nil)
	_, err := loader.Read(context.Background(), strings.NewReader(csvData))

	require.Error(t, err)
	assert.True(t, apierrors.IsDataFormatError(err))
	assert.Contains(t, err.Error(), "normalize")
}

func TestLoadCSVFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "production.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	loader := NewLoader(nil)
	table, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, table.NRows())
}

func TestLoadXLSXFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "production.xlsx")

	f := excelize.NewFile()
	defer f.Close()
	rows := [][]interface{}{
		{"Date", "Field Name", "Oil Production (bbl)", "Wellhead Pressure (psi)", "Choke Size (in)", "Pump Efficiency %"},
		{"2024-01-01", "North Field", 1250.5, 1450.0, 0.75, 88.5},
		{"2024-01-02", "South Field", 980.0, 1380.0, 0.63, 84.2},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))

	loader := NewLoader(nil)
	table, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 2, table.NRows())
	assert.True(t, table.HasColumn(ColOilProduction))
	oil := table.Float(ColOilProduction)
	assert.InDelta(t, 1250.5, oil[0], 1e-9)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	loader := NewLoader(nil)
	_, err := loader.Load(context.Background(), "data.parquet")

	require.Error(t, err)
	assert.True(t, apierrors.IsDataFormatError(err))
}

func TestLoadMissingFile(t *testing.T) {
	loader := NewLoader(nil)
	_, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))

	require.Error(t, err)
	assert.True(t, apierrors.IsDataFormatError(err))
}
