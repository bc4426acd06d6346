package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"wellpulse/internal/config"
	"wellpulse/internal/dataset"
	apierrors "wellpulse/internal/errors"
	"wellpulse/pkg/contracts/domain"
)

const (
	summarySheet     = "Summary"
	datasetSheet     = "Dataset"
	metricsSheet     = "Metrics"
	importancesSheet = "Importances"
	predictionsSheet = "Predictions"
)

// sheetWriter populates workbook cells, keeping the first error it hits so
// call sites stay flat.
type sheetWriter struct {
	f   *excelize.File
	err error
}

func (w *sheetWriter) setCell(sheet string, col, row int, value interface{}) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellValue(sheet, cell, value)
}

func (w *sheetWriter) setRow(sheet string, row int, values ...interface{}) {
	for i, value := range values {
		w.setCell(sheet, i+1, row, value)
	}
}

func (w *sheetWriter) setColWidth(sheet, start, end string, width float64) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetColWidth(sheet, start, end, width)
}

// writeWorkbook exports the model evaluation as an XLSX workbook: run
// metadata, dataset statistics, metrics, importances, and a sample of the
// held-out predictions. sampleLimit caps the prediction rows; zero or a
// negative value keeps them all.
func writeWorkbook(summary *domain.ModelSummary, stats []dataset.ColumnStats, sampleLimit int, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to rename summary sheet: %w", err)
	}
	for _, sheet := range []string{datasetSheet, metricsSheet, importancesSheet, predictionsSheet} {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
	}

	w := &sheetWriter{f: f}

	w.setRow(summarySheet, 1, "Report", config.AppName+" model report")
	w.setRow(summarySheet, 2, "Version", config.AppVersion)
	w.setRow(summarySheet, 3, "Target", summary.Target)
	w.setRow(summarySheet, 4, "Features", strings.Join(summary.Features, ", "))
	w.setRow(summarySheet, 5, "Train rows", summary.TrainRows)
	w.setRow(summarySheet, 6, "Test rows", summary.TestRows)
	w.setRow(summarySheet, 7, "Trees", summary.Trees)
	w.setRow(summarySheet, 8, "Seed", summary.Seed)

	w.setRow(datasetSheet, 1, "Column", "Count", "Missing", "Mean", "Std", "Min", "Q1", "Median", "Q3", "Max")
	for i, cs := range stats {
		w.setRow(datasetSheet, i+2, cs.Column, cs.Count, cs.Missing, cs.Mean, cs.Std, cs.Min, cs.Q1, cs.Median, cs.Q3, cs.Max)
	}

	w.setRow(metricsSheet, 1, "Metric", "Value")
	w.setRow(metricsSheet, 2, "MSE", summary.Metrics.MSE)
	w.setRow(metricsSheet, 3, "RMSE", summary.Metrics.RMSE)
	w.setRow(metricsSheet, 4, "MAE", summary.Metrics.MAE)
	w.setRow(metricsSheet, 5, "R2", summary.Metrics.R2)

	w.setRow(importancesSheet, 1, "Feature", "Importance")
	for i, imp := range summary.Importances {
		w.setRow(importancesSheet, i+2, imp.Feature, imp.Importance)
	}

	w.setRow(predictionsSheet, 1, "Actual", "Predicted", "Residual")
	pairs := summary.Predictions
	if sampleLimit > 0 && len(pairs) > sampleLimit {
		pairs = pairs[:sampleLimit]
	}
	for i, pair := range pairs {
		w.setRow(predictionsSheet, i+2, pair.Actual, pair.Predicted, pair.Actual-pair.Predicted)
	}

	w.setColWidth(summarySheet, "A", "A", 14)
	w.setColWidth(summarySheet, "B", "B", 60)
	w.setColWidth(datasetSheet, "A", "A", 24)
	w.setColWidth(importancesSheet, "A", "A", 30)

	if w.err != nil {
		return fmt.Errorf("failed to populate workbook: %w", w.err)
	}
	if err := f.SaveAs(path); err != nil {
		return apierrors.NewStorageError(fmt.Sprintf("failed to write %s", filepath.Base(path)), err)
	}
	return nil
}
