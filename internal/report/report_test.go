package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellpulse/internal/config"
	"wellpulse/internal/dataset"
	apierrors "wellpulse/internal/errors"
	"wellpulse/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// sampleTable builds a 30-row dataset spanning ten days and three fields.
func sampleTable(t *testing.T) dataset.Table {
	t.Helper()

	var b strings.Builder
	b.WriteString("date,field_name,well_id,status,oil_production_bbl,gas_production_mcf," +
		"water_production_bbl,wellhead_pressure_psi,tubing_pressure_psi,choke_size_in,pump_efficiency_pct\n")
	fields := []string{"Majnoon", "North Rumaila", "Zubair"}
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, "2024-03-%02d,%s,W-%03d,Active,%d,%d,%d,%d,%d,%.2f,%d\n",
			i%10+1, fields[i%3], i+1,
			500+i*7, 1200+i*11, 300+i*5, 1100+i*13, 800+i*9,
			0.25+float64(i%4)*0.25, 60+i%30)
	}

	tbl, err := dataset.NewLoader(testLogger()).Read(context.Background(), strings.NewReader(b.String()))
	require.NoError(t, err)
	return tbl
}

func sampleSummary() *domain.ModelSummary {
	return &domain.ModelSummary{
		Target:    dataset.TargetColumn,
		Features:  []string{"wellhead_pressure_psi", "choke_size_in"},
		TrainRows: 24,
		TestRows:  6,
		Trees:     25,
		Seed:      42,
		Metrics:   domain.RegressionMetrics{MSE: 110.5, RMSE: 10.51, MAE: 8.4, R2: 0.87},
		Importances: []domain.FeatureImportance{
			{Feature: "wellhead_pressure_psi", Importance: 0.74},
			{Feature: "choke_size_in", Importance: 0.26},
		},
		Predictions: []domain.PredictionPair{
			{Actual: 520, Predicted: 512.5},
			{Actual: 610, Predicted: 618},
			{Actual: 700, Predicted: 690},
		},
	}
}

func newTestGenerator(t *testing.T, cfg config.ReportConfig) (*Generator, *config.Paths) {
	t.Helper()

	paths, err := config.NewPaths(config.DataConfig{BaseDir: t.TempDir()})
	require.NoError(t, err)
	return NewGenerator(paths, cfg, testLogger()), paths
}

func TestGenerateWritesAllArtifacts(t *testing.T) {
	gen, paths := newTestGenerator(t, config.ReportConfig{IncludeHTML: true, PredictionSample: 200})
	stamp := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	arts, err := gen.Generate(context.Background(), Input{
		Table:   sampleTable(t),
		Summary: sampleSummary(),
		Stamp:   stamp,
	})
	require.NoError(t, err)

	wantCharts := []string{
		"histogram_oil_production_bbl_20240315.png",
		"scatter_wellhead_pressure_vs_oil_20240315.png",
		"box_oil_by_field_20240315.png",
		"correlation_heatmap_20240315.png",
		"production_timeseries_20240315.png",
		"predictions_vs_actual_20240315.png",
		"feature_importance_20240315.png",
	}
	require.Len(t, arts.Charts, len(wantCharts))
	for i, path := range arts.Charts {
		assert.Equal(t, wantCharts[i], filepath.Base(path))
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0), "chart %s is empty", wantCharts[i])
	}

	require.Len(t, arts.Pages, 1)
	assert.Equal(t, "production_charts_20240315.html", filepath.Base(arts.Pages[0]))
	html, err := os.ReadFile(arts.Pages[0])
	require.NoError(t, err)
	assert.Contains(t, string(html), "echarts")

	require.FileExists(t, arts.PDF)
	assert.Equal(t, paths.ReportFile("production_report_20240315.pdf"), arts.PDF)
	pdf, err := os.ReadFile(arts.PDF)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF-"))

	require.FileExists(t, arts.Workbook)
	assert.Equal(t, paths.ReportFile("model_report_20240315.xlsx"), arts.Workbook)

	require.FileExists(t, arts.Predictions)
	assert.Equal(t, paths.ReportFile("predictions_20240315.csv"), arts.Predictions)
	pred, err := os.ReadFile(arts.Predictions)
	require.NoError(t, err)
	content := strings.TrimPrefix(string(pred), "﻿")
	assert.NotEqual(t, string(pred), content, "predictions CSV should carry a BOM")
	assert.True(t, strings.HasPrefix(content, "actual,predicted,residual\n"))
}

func TestGenerateWithoutModelSummary(t *testing.T) {
	gen, _ := newTestGenerator(t, config.ReportConfig{IncludeHTML: true})

	arts, err := gen.Generate(context.Background(), Input{
		Table: sampleTable(t),
		Stamp: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Len(t, arts.Charts, 5, "evaluation charts need a model summary")
	for _, path := range arts.Charts {
		assert.NotContains(t, filepath.Base(path), "predictions_vs_actual")
		assert.NotContains(t, filepath.Base(path), "feature_importance")
	}
	assert.Empty(t, arts.Workbook)
	assert.Empty(t, arts.Predictions)
	require.FileExists(t, arts.PDF)
}

func TestChartsRendersOnlyChartArtifacts(t *testing.T) {
	gen, paths := newTestGenerator(t, config.ReportConfig{IncludeHTML: true})

	arts, err := gen.Charts(context.Background(), Input{
		Table: sampleTable(t),
		Stamp: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Len(t, arts.Charts, 5)
	require.Len(t, arts.Pages, 1)
	assert.Empty(t, arts.PDF)
	assert.Empty(t, arts.Workbook)
	assert.Empty(t, arts.Predictions)

	assert.NoFileExists(t, paths.ReportFile("production_report_20240315.pdf"))
}

func TestGenerateSkipsHTMLWhenDisabled(t *testing.T) {
	gen, _ := newTestGenerator(t, config.ReportConfig{IncludeHTML: false})

	arts, err := gen.Generate(context.Background(), Input{
		Table: sampleTable(t),
		Stamp: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Empty(t, arts.Pages)
}

func TestGenerateEmptyDatasetFails(t *testing.T) {
	gen, _ := newTestGenerator(t, config.ReportConfig{})

	_, err := gen.Generate(context.Background(), Input{Table: dataset.Table{}})
	require.Error(t, err)
	assert.True(t, apierrors.IsDataFormatError(err))
}

func TestGenerateCanceledContext(t *testing.T) {
	gen, _ := newTestGenerator(t, config.ReportConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gen.Generate(ctx, Input{Table: sampleTable(t)})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateMissingArabicFontFails(t *testing.T) {
	gen, _ := newTestGenerator(t, config.ReportConfig{ArabicFontFile: "missing.ttf"})

	_, err := gen.Generate(context.Background(), Input{
		Table: sampleTable(t),
		Stamp: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "arabic font")
}
