package report

import (
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"wellpulse/internal/config"
	"wellpulse/internal/dataset"
	apierrors "wellpulse/internal/errors"
	"wellpulse/pkg/contracts/domain"
)

const (
	chartWidth  = 10 * vg.Inch
	chartHeight = 6 * vg.Inch

	histogramBins = 30
)

// fieldPalette colors the per-field series of scatter and box charts.
var fieldPalette = []color.RGBA{
	{R: 31, G: 119, B: 180, A: 255},
	{R: 255, G: 127, B: 14, A: 255},
	{R: 44, G: 160, B: 44, A: 255},
	{R: 214, G: 39, B: 40, A: 255},
	{R: 148, G: 103, B: 189, A: 255},
	{R: 140, G: 86, B: 75, A: 255},
}

// chartSpec names one chart artifact and knows how to build it.
type chartSpec struct {
	name  string
	build func() (*plot.Plot, error)
}

// chartSpecs assembles the chart set that the available data supports. The
// exploratory charts need the cleaned table, the evaluation charts need a
// model summary.
func chartSpecs(ci chartInputs, summary *domain.ModelSummary) []chartSpec {
	var specs []chartSpec

	if len(ci.target) > 0 {
		specs = append(specs, chartSpec{
			name:  "histogram_" + dataset.TargetColumn,
			build: func() (*plot.Plot, error) { return histogramPlot(ci.target, dataset.TargetColumn) },
		})
	}
	if len(ci.scatter) > 0 {
		specs = append(specs, chartSpec{
			name:  "scatter_wellhead_pressure_vs_oil",
			build: func() (*plot.Plot, error) { return scatterPlot(ci.scatter, dataset.ColWellheadPressure, dataset.TargetColumn) },
		})
	}
	if len(ci.boxes) > 0 {
		specs = append(specs, chartSpec{
			name:  "box_oil_by_field",
			build: func() (*plot.Plot, error) { return boxPlot(ci.boxes, dataset.TargetColumn) },
		})
	}
	if len(ci.corrCols) >= 2 {
		specs = append(specs, chartSpec{
			name:  "correlation_heatmap",
			build: func() (*plot.Plot, error) { return heatmapPlot(ci.corrCols, ci.corrMatrix) },
		})
	}
	if len(ci.days) > 0 {
		specs = append(specs, chartSpec{
			name:  "production_timeseries",
			build: func() (*plot.Plot, error) { return timeSeriesPlot(ci.days, ci.dailyOil, dataset.TargetColumn) },
		})
	}

	if summary != nil {
		if len(summary.Predictions) > 0 {
			specs = append(specs, chartSpec{
				name:  "predictions_vs_actual",
				build: func() (*plot.Plot, error) { return predictionsPlot(summary.Predictions) },
			})
		}
		if len(summary.Importances) > 0 {
			specs = append(specs, chartSpec{
				name:  "feature_importance",
				build: func() (*plot.Plot, error) { return importancePlot(summary.Importances) },
			})
		}
	}

	return specs
}

func histogramPlot(values []float64, column string) (*plot.Plot, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("histogram of %s: no values", column)
	}

	p := plot.New()
	p.Title.Text = "Distribution of " + column
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = column
	p.Y.Label.Text = "Count"

	h, err := plotter.NewHist(plotter.Values(values), histogramBins)
	if err != nil {
		return nil, fmt.Errorf("histogram of %s: %w", column, err)
	}
	h.FillColor = color.RGBA{R: 70, G: 130, B: 180, A: 255}

	p.Add(h)
	p.Add(plotter.NewGrid())
	return p, nil
}

func scatterPlot(groups []fieldSeries, xLabel, yLabel string) (*plot.Plot, error) {
	if len(groups) == 0 {
		return nil, fmt.Errorf("scatter %s vs %s: no data", yLabel, xLabel)
	}

	p := plot.New()
	p.Title.Text = yLabel + " vs " + xLabel
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	for i, group := range groups {
		scatter, err := plotter.NewScatter(group.Points)
		if err != nil {
			return nil, fmt.Errorf("scatter series %s: %w", group.Field, err)
		}
		scatter.GlyphStyle.Color = fieldPalette[i%len(fieldPalette)]
		scatter.GlyphStyle.Radius = vg.Points(3)
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}

		p.Add(scatter)
		p.Legend.Add(group.Field, scatter)
	}
	p.Legend.Top = true

	p.Add(plotter.NewGrid())
	return p, nil
}

func boxPlot(groups []fieldValues, column string) (*plot.Plot, error) {
	if len(groups) == 0 {
		return nil, fmt.Errorf("box plot of %s: no data", column)
	}

	p := plot.New()
	p.Title.Text = column + " by field"
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Y.Label.Text = column

	labels := make([]string, len(groups))
	for i, group := range groups {
		box, err := plotter.NewBoxPlot(vg.Points(40), float64(i), plotter.Values(group.Values))
		if err != nil {
			return nil, fmt.Errorf("box for field %s: %w", group.Field, err)
		}
		box.FillColor = fieldPalette[i%len(fieldPalette)]

		p.Add(box)
		labels[i] = group.Field
	}

	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 3
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Tick.Label.XAlign = draw.XCenter
	return p, nil
}

// corrGrid adapts a correlation matrix to the heat map grid interface.
// Cells are centered on integer coordinates matching the tick positions.
type corrGrid struct {
	cols []string
	z    [][]float64
}

func (g corrGrid) Dims() (c, r int)   { return len(g.cols), len(g.cols) }
func (g corrGrid) Z(c, r int) float64 { return g.z[r][c] }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(r) }

func heatmapPlot(cols []string, matrix [][]float64) (*plot.Plot, error) {
	if len(cols) < 2 || len(matrix) != len(cols) {
		return nil, fmt.Errorf("correlation heatmap: need at least two numeric columns")
	}

	p := plot.New()
	p.Title.Text = "Correlation heatmap"
	p.Title.TextStyle.Font.Size = vg.Points(16)

	colors := moreland.SmoothBlueRed()
	colors.SetMin(-1)
	colors.SetMax(1)

	heat := plotter.NewHeatMap(corrGrid{cols: cols, z: matrix}, colors.Palette(64))
	heat.Min = -1
	heat.Max = 1
	p.Add(heat)

	ticks := make([]plot.Tick, len(cols))
	for i, col := range cols {
		ticks[i] = plot.Tick{Value: float64(i), Label: col}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.Y.Tick.Marker = plot.ConstantTicks(ticks)
	p.X.Tick.Label.Rotation = math.Pi / 3
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Tick.Label.XAlign = draw.XCenter
	return p, nil
}

func timeSeriesPlot(days []time.Time, totals []float64, column string) (*plot.Plot, error) {
	if len(days) == 0 || len(days) != len(totals) {
		return nil, fmt.Errorf("time series of %s: no data", column)
	}

	p := plot.New()
	p.Title.Text = "Daily " + column
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = "Date"
	p.Y.Label.Text = column
	p.X.Tick.Marker = plot.TimeTicks{Format: config.DateLayout}

	points := make(plotter.XYs, len(days))
	for i := range days {
		points[i].X = float64(days[i].Unix())
		points[i].Y = totals[i]
	}

	line, err := plotter.NewLine(points)
	if err != nil {
		return nil, fmt.Errorf("time series of %s: %w", column, err)
	}
	line.Color = color.RGBA{R: 0, G: 100, B: 0, A: 255}
	line.Width = vg.Points(2)

	p.Add(line)
	p.Add(plotter.NewGrid())
	return p, nil
}

func predictionsPlot(pairs []domain.PredictionPair) (*plot.Plot, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("predictions plot: no pairs")
	}

	p := plot.New()
	p.Title.Text = "Predicted vs actual"
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = "Actual"
	p.Y.Label.Text = "Predicted"

	points := make(plotter.XYs, len(pairs))
	for i, pair := range pairs {
		points[i].X = pair.Actual
		points[i].Y = pair.Predicted
	}

	scatter, err := plotter.NewScatter(points)
	if err != nil {
		return nil, fmt.Errorf("predictions plot: %w", err)
	}
	scatter.GlyphStyle.Color = color.RGBA{R: 139, G: 0, B: 0, A: 255}
	scatter.GlyphStyle.Radius = vg.Points(3)
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}

	p.Add(scatter)
	p.Add(plotter.NewGrid())

	ideal := plotter.NewFunction(func(x float64) float64 { return x })
	ideal.Color = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	ideal.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
	p.Add(ideal)
	p.Legend.Add("ideal", ideal)
	return p, nil
}

func importancePlot(importances []domain.FeatureImportance) (*plot.Plot, error) {
	if len(importances) == 0 {
		return nil, fmt.Errorf("importance plot: no features")
	}

	p := plot.New()
	p.Title.Text = "Feature importance"
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Y.Label.Text = "Importance"

	values := make(plotter.Values, len(importances))
	labels := make([]string, len(importances))
	for i, imp := range importances {
		values[i] = imp.Importance
		labels[i] = imp.Feature
	}

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return nil, fmt.Errorf("importance plot: %w", err)
	}
	bars.Color = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	bars.LineStyle.Width = vg.Length(0)

	p.Add(bars)
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 3
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Tick.Label.XAlign = draw.XCenter
	return p, nil
}

// savePlot writes a rendered plot as a PNG artifact.
func savePlot(p *plot.Plot, path string) error {
	if err := p.Save(chartWidth, chartHeight, path); err != nil {
		return apierrors.NewStorageError(fmt.Sprintf("failed to save chart %s", filepath.Base(path)), err)
	}
	return nil
}
