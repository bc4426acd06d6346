package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"wellpulse/internal/config"
	"wellpulse/internal/dataset"
	apierrors "wellpulse/internal/errors"
	"wellpulse/pkg/contracts/domain"
)

// viridisRamp matches the color scale of the static heatmap era of the
// project, oldest to hottest.
var viridisRamp = []string{"#440154", "#21908c", "#fde725"}

// chartAssetsHost serves the echarts runtime. The security middleware
// allows this origin in its script-src policy.
const chartAssetsHost = "https://cdn.jsdelivr.net/npm/echarts@5.4.3/dist/"

// ChartsPage renders the interactive chart set for a dataset to w. The
// evaluation charts are included when a model summary is given. The
// dashboard uses this to serve filtered slices on demand.
func ChartsPage(w io.Writer, t dataset.Table, summary *domain.ModelSummary) error {
	return renderPage(w, buildChartInputs(t), summary)
}

func renderPage(w io.Writer, ci chartInputs, summary *domain.ModelSummary) error {
	page := components.NewPage()
	page.PageTitle = config.AppName + " production charts"
	page.SetLayout(components.PageFlexLayout)

	if len(ci.target) > 0 {
		page.AddCharts(histogramHTML(ci.target, dataset.TargetColumn))
	}
	if len(ci.scatter) > 0 {
		page.AddCharts(scatterHTML(ci.scatter, dataset.ColWellheadPressure, dataset.TargetColumn))
	}
	if len(ci.boxes) > 0 {
		page.AddCharts(boxHTML(ci.boxes, dataset.TargetColumn))
	}
	if len(ci.corrCols) >= 2 {
		page.AddCharts(heatmapHTML(ci.corrCols, ci.corrMatrix))
	}
	if len(ci.days) > 0 {
		page.AddCharts(timeSeriesHTML(ci.days, ci.dailyOil, dataset.TargetColumn))
	}
	if summary != nil {
		if len(summary.Predictions) > 0 {
			page.AddCharts(predictionsHTML(summary.Predictions))
		}
		if len(summary.Importances) > 0 {
			page.AddCharts(importanceHTML(summary.Importances))
		}
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart page: %w", err)
	}
	return nil
}

// renderHTMLFile writes the interactive chart page to a file artifact.
func renderHTMLFile(ci chartInputs, summary *domain.ModelSummary, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return apierrors.NewStorageError(fmt.Sprintf("failed to create %s", filepath.Base(path)), err)
	}
	defer file.Close()

	return renderPage(file, ci, summary)
}

// histogramBin is one equal-width interval of a binned numeric column.
type histogramBin struct {
	Label string
	Count int
}

// binValues splits values into equal-width bins across their range.
// A constant column collapses to a single bin.
func binValues(values []float64, bins int) []histogramBin {
	if len(values) == 0 || bins < 1 {
		return nil
	}

	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min == max {
		return []histogramBin{{Label: fmt.Sprintf("%.0f", min), Count: len(values)}}
	}

	width := (max - min) / float64(bins)
	out := make([]histogramBin, bins)
	for i := range out {
		lo := min + float64(i)*width
		out[i].Label = fmt.Sprintf("%.0f-%.0f", lo, lo+width)
	}
	for _, v := range values {
		idx := int((v - min) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out
}

func histogramHTML(values []float64, column string) *charts.Bar {
	bins := binValues(values, histogramBins)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{AssetsHost: chartAssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: "Distribution of " + column}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
		charts.WithXAxisOpts(opts.XAxis{Name: column, AxisLabel: &opts.AxisLabel{Show: true, Rotate: 45}}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Count"}),
	)

	labels := make([]string, len(bins))
	data := make([]opts.BarData, len(bins))
	for i, bin := range bins {
		labels[i] = bin.Label
		data[i] = opts.BarData{Value: bin.Count}
	}
	bar.SetXAxis(labels).AddSeries(column, data)
	return bar
}

func scatterHTML(groups []fieldSeries, xLabel, yLabel string) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{AssetsHost: chartAssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: yLabel + " vs " + xLabel}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
		charts.WithLegendOpts(opts.Legend{Show: true, Top: "30"}),
		charts.WithXAxisOpts(opts.XAxis{Name: xLabel, Type: "value", Scale: true}),
		charts.WithYAxisOpts(opts.YAxis{Name: yLabel, Type: "value", Scale: true}),
	)

	for _, group := range groups {
		data := make([]opts.ScatterData, len(group.Points))
		for i, pt := range group.Points {
			data[i] = opts.ScatterData{Value: []interface{}{pt.X, pt.Y}, SymbolSize: 8}
		}
		scatter.AddSeries(group.Field, data)
	}
	return scatter
}

func boxHTML(groups []fieldValues, column string) *charts.BoxPlot {
	box := charts.NewBoxPlot()
	box.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{AssetsHost: chartAssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: column + " by field"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
		charts.WithYAxisOpts(opts.YAxis{Name: column, Scale: true}),
	)

	fields := make([]string, len(groups))
	data := make([]opts.BoxPlotData, len(groups))
	for i, group := range groups {
		fields[i] = group.Field
		data[i] = opts.BoxPlotData{Value: fiveNumber(group.Values)}
	}
	box.SetXAxis(fields).AddSeries(column, data)
	return box
}

// fiveNumber computes the box plot summary [min, q1, median, q3, max].
func fiveNumber(values []float64) []float64 {
	sorted := dataset.WithoutNaN(values)
	if len(sorted) == 0 {
		return nil
	}
	sort.Float64s(sorted)
	return []float64{
		sorted[0],
		dataset.Quantile(sorted, 0.25),
		dataset.Quantile(sorted, 0.5),
		dataset.Quantile(sorted, 0.75),
		sorted[len(sorted)-1],
	}
}

func heatmapHTML(cols []string, matrix [][]float64) *charts.HeatMap {
	heat := charts.NewHeatMap()
	heat.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{AssetsHost: chartAssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: "Correlation heatmap"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			Data:      cols,
			SplitArea: &opts.SplitArea{Show: true},
			AxisLabel: &opts.AxisLabel{Show: true, Rotate: 45},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			Data:      cols,
			SplitArea: &opts.SplitArea{Show: true},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: true,
			Min:        -1,
			Max:        1,
			InRange:    &opts.VisualMapInRange{Color: viridisRamp},
		}),
	)

	var data []opts.HeatMapData
	for y, row := range matrix {
		for x, v := range row {
			if math.IsNaN(v) {
				continue
			}
			rounded := math.Round(v*100) / 100
			data = append(data, opts.HeatMapData{Value: [3]interface{}{x, y, rounded}})
		}
	}
	heat.AddSeries("correlation", data)
	return heat
}

func timeSeriesHTML(days []time.Time, totals []float64, column string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{AssetsHost: chartAssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: "Daily " + column}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date"}),
		charts.WithYAxisOpts(opts.YAxis{Name: column, Scale: true}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)

	labels := make([]string, len(days))
	data := make([]opts.LineData, len(totals))
	for i := range days {
		labels[i] = days[i].Format(config.DateLayout)
		data[i] = opts.LineData{Value: totals[i]}
	}
	line.SetXAxis(labels).AddSeries(column, data)
	return line
}

func predictionsHTML(pairs []domain.PredictionPair) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{AssetsHost: chartAssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: "Predicted vs actual"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
		charts.WithLegendOpts(opts.Legend{Show: true, Top: "30"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Actual", Type: "value", Scale: true}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Predicted", Type: "value", Scale: true}),
	)

	lo, hi := pairs[0].Actual, pairs[0].Actual
	data := make([]opts.ScatterData, len(pairs))
	for i, pair := range pairs {
		data[i] = opts.ScatterData{Value: []interface{}{pair.Actual, pair.Predicted}, SymbolSize: 8}
		if pair.Actual < lo {
			lo = pair.Actual
		}
		if pair.Actual > hi {
			hi = pair.Actual
		}
	}
	scatter.AddSeries("predicted", data)

	ideal := charts.NewLine()
	ideal.AddSeries("ideal", []opts.LineData{
		{Value: []interface{}{lo, lo}},
		{Value: []interface{}{hi, hi}},
	}, charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}))
	scatter.Overlap(ideal)
	return scatter
}

func importanceHTML(importances []domain.FeatureImportance) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{AssetsHost: chartAssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: "Feature importance"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Show: true, Rotate: 45}}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Importance"}),
	)

	labels := make([]string, len(importances))
	data := make([]opts.BarData, len(importances))
	for i, imp := range importances {
		labels[i] = imp.Feature
		data[i] = opts.BarData{Value: imp.Importance}
	}
	bar.SetXAxis(labels).AddSeries("importance", data)
	return bar
}
