package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellpulse/pkg/contracts/domain"
)

func TestWritePredictions(t *testing.T) {
	paths := testPaths(t)
	writer := NewCSVWriter(paths)

	pairs := []domain.PredictionPair{
		{Actual: 1500, Predicted: 1480.5},
		{Actual: 900, Predicted: 910},
	}
	require.NoError(t, writer.WritePredictions(pairs, "predictions_20240301.csv"))

	hadBOM, records := readCSVFile(t, paths.ReportFile("predictions_20240301.csv"))
	assert.True(t, hadBOM)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"actual", "predicted", "residual"}, records[0])
	assert.Equal(t, []string{"1500", "1480.5", "19.5"}, records[1])
	assert.Equal(t, []string{"900", "910", "-10"}, records[2])
}

func TestWritePredictionsEmpty(t *testing.T) {
	paths := testPaths(t)
	writer := NewCSVWriter(paths)

	require.NoError(t, writer.WritePredictions(nil, "predictions_empty.csv"))

	_, records := readCSVFile(t, paths.ReportFile("predictions_empty.csv"))
	require.Len(t, records, 1, "only the header row")
}
