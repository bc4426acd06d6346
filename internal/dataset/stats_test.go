package dataset

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeColumn(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	cs := DescribeColumn("oil_production_bbl", values)

	assert.Equal(t, "oil_production_bbl", cs.Column)
	assert.Equal(t, 8, cs.Count)
	assert.Equal(t, 0, cs.Missing)
	assert.InDelta(t, 5.0, cs.Mean, 1e-9)
	assert.InDelta(t, 2.138, cs.Std, 0.01)
	assert.InDelta(t, 2.0, cs.Min, 1e-9)
	assert.InDelta(t, 9.0, cs.Max, 1e-9)
	// quantile interpolation details aside, the quartiles must bracket the median
	assert.LessOrEqual(t, cs.Q1, cs.Median)
	assert.LessOrEqual(t, cs.Median, cs.Q3)
	assert.GreaterOrEqual(t, cs.IQR(), 0.0)
}

func TestDescribeColumnWithMissing(t *testing.T) {
	values := []float64{1, math.NaN(), 3, math.NaN(), 5}
	cs := DescribeColumn("x", values)

	assert.Equal(t, 3, cs.Count)
	assert.Equal(t, 2, cs.Missing)
	assert.InDelta(t, 3.0, cs.Mean, 1e-9)
	assert.InDelta(t, 3.0, cs.Median, 1e-9)
}

func TestDescribeColumnEmpty(t *testing.T) {
	cs := DescribeColumn("x", nil)
	assert.Equal(t, 0, cs.Count)
	assert.Equal(t, 0, cs.Missing)

	cs = DescribeColumn("x", []float64{math.NaN()})
	assert.Equal(t, 0, cs.Count)
	assert.Equal(t, 1, cs.Missing)
}

func TestDescribeTable(t *testing.T) {
	csvData := `date,field_name,oil_production_bbl,wellhead_pressure_psi,choke_size_in,pump_efficiency_pct
2024-01-01,North,1000,1400,0.75,90
2024-01-02,North,1100,1420,0.75,88
2024-01-03,North,1050,,0.75,89
`
	loader := NewLoader(nil)
	table, err := loader.Read(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)

	stats := Describe(table)
	require.Len(t, stats, 4)

	byName := map[string]ColumnStats{}
	for _, cs := range stats {
		byName[cs.Column] = cs
	}

	oil := byName[ColOilProduction]
	assert.Equal(t, 3, oil.Count)
	assert.InDelta(t, 1050.0, oil.Mean, 1e-9)

	pressure := byName[ColWellheadPressure]
	assert.Equal(t, 2, pressure.Count)
	assert.Equal(t, 1, pressure.Missing)
}

func TestWithoutNaN(t *testing.T) {
	out := WithoutNaN([]float64{1, math.NaN(), 2})
	assert.Equal(t, []float64{1, 2}, out)

	assert.Empty(t, WithoutNaN([]float64{math.NaN()}))
	assert.Empty(t, WithoutNaN(nil))
}

func TestTableColumnHelpers(t *testing.T) {
	csvData := `date,field_name,oil_production_bbl,wellhead_pressure_psi,choke_size_in,pump_efficiency_pct
2024-01-01,North,1000,1400,0.75,90
`
	loader := NewLoader(nil)
	table, err := loader.Read(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, []string{ColOilProduction, ColWellheadPressure, ColChokeSize, ColPumpEfficiency}, table.Numeric())
	assert.Equal(t, []string{ColFieldName}, table.Categorical())
	assert.True(t, table.HasColumn(ColDate))
	assert.False(t, table.HasColumn(ColTubingPressure))
}
