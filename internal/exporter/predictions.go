package exporter

import (
	"fmt"

	"wellpulse/pkg/contracts/domain"
)

var predictionHeaders = []string{"actual", "predicted", "residual"}

// WritePredictions streams held-out prediction pairs to a BOM-prefixed CSV
// artifact, one row per observation.
func (w *CSVWriter) WritePredictions(pairs []domain.PredictionPair, filePath string) error {
	stream, err := w.CreateStreamWriter(filePath, predictionHeaders)
	if err != nil {
		return err
	}

	for i, pair := range pairs {
		record := []string{
			formatFloat(pair.Actual),
			formatFloat(pair.Predicted),
			formatFloat(pair.Actual - pair.Predicted),
		}
		if err := stream.WriteRecord(record); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write prediction %d: %w", i, err)
		}
	}

	return stream.Close()
}
