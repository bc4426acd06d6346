package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellpulse/internal/config"
)

func TestRenderPDFLatinFallback(t *testing.T) {
	gen, paths := newTestGenerator(t, config.ReportConfig{})
	in := Input{
		Table:   sampleTable(t),
		Summary: sampleSummary(),
		Stamp:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}
	path := filepath.Join(paths.BaseDir, "report.pdf")

	err := gen.renderPDF(in, buildChartInputs(in.Table), nil, nil, path)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "%PDF-"))
	assert.Contains(t, string(content), "%%EOF")
}

func TestRenderPDFEmbedsCharts(t *testing.T) {
	gen, paths := newTestGenerator(t, config.ReportConfig{})
	in := Input{
		Table: sampleTable(t),
		Stamp: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}
	ci := buildChartInputs(in.Table)

	chartPath := filepath.Join(paths.BaseDir, "histogram.png")
	p, err := histogramPlot(ci.target, "oil_production_bbl")
	require.NoError(t, err)
	require.NoError(t, savePlot(p, chartPath))

	plain := filepath.Join(paths.BaseDir, "plain.pdf")
	require.NoError(t, gen.renderPDF(in, ci, nil, nil, plain))

	specs := []chartSpec{{name: "histogram_oil_production_bbl"}}
	illustrated := filepath.Join(paths.BaseDir, "illustrated.pdf")
	require.NoError(t, gen.renderPDF(in, ci, specs, []string{chartPath}, illustrated))

	plainInfo, err := os.Stat(plain)
	require.NoError(t, err)
	illustratedInfo, err := os.Stat(illustrated)
	require.NoError(t, err)
	assert.Greater(t, illustratedInfo.Size(), plainInfo.Size(),
		"the embedded chart must grow the document")
}

func TestRenderPDFWithoutSummarySkipsEvaluation(t *testing.T) {
	gen, paths := newTestGenerator(t, config.ReportConfig{})
	in := Input{
		Table: sampleTable(t),
		Stamp: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}
	path := filepath.Join(paths.BaseDir, "report.pdf")

	require.NoError(t, gen.renderPDF(in, buildChartInputs(in.Table), nil, nil, path))
	require.FileExists(t, path)
}

func TestNewPDFWriterMissingFontFails(t *testing.T) {
	_, err := newPDFWriter(filepath.Join(t.TempDir(), "missing.ttf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not readable")
}

func TestNewPDFWriterLatinOnly(t *testing.T) {
	w, err := newPDFWriter("")
	require.NoError(t, err)
	assert.False(t, w.arabic)
}

func TestFmtFloat(t *testing.T) {
	assert.Equal(t, "1500.25", fmtFloat(1500.25))
	assert.Equal(t, "0.87", fmtFloat(0.87))
	assert.Equal(t, "10.00", fmtFloat(10))
}
