package report

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot/plotter"

	"wellpulse/internal/config"
	"wellpulse/internal/dataset"
)

// fieldSeries holds the (x, y) points of one oil field, for scatter charts.
type fieldSeries struct {
	Field  string
	Points plotter.XYs
}

// fieldValues holds one numeric column grouped by oil field, for box plots.
type fieldValues struct {
	Field  string
	Values []float64
}

// chartInputs is the chart-ready view of a cleaned dataset. Building it
// once up front lets the PNG and HTML renderers share the same data.
type chartInputs struct {
	target     []float64
	scatter    []fieldSeries
	boxes      []fieldValues
	corrCols   []string
	corrMatrix [][]float64
	days       []time.Time
	dailyOil   []float64
}

func buildChartInputs(t dataset.Table) chartInputs {
	ci := chartInputs{}
	if t.HasColumn(dataset.TargetColumn) {
		ci.target = dataset.WithoutNaN(t.Float(dataset.TargetColumn))
	}
	ci.scatter = fieldGroups(t, dataset.ColWellheadPressure, dataset.TargetColumn)
	ci.boxes = valuesByField(t, dataset.TargetColumn)
	ci.corrCols, ci.corrMatrix = correlationMatrix(t)
	ci.days, ci.dailyOil = dailyTotals(t, dataset.TargetColumn)
	return ci
}

// fieldGroups splits the (xCol, yCol) pairs by field name. Rows with a
// missing field or a missing value on either axis are skipped. Groups come
// back sorted by field name so series order and colors are stable.
func fieldGroups(t dataset.Table, xCol, yCol string) []fieldSeries {
	if !t.HasColumn(dataset.ColFieldName) || !t.HasColumn(xCol) || !t.HasColumn(yCol) {
		return nil
	}

	fieldCol := t.Column(dataset.ColFieldName)
	xs := t.Float(xCol)
	ys := t.Float(yCol)

	groups := make(map[string]plotter.XYs)
	for i := 0; i < fieldCol.Len(); i++ {
		if fieldCol.Elem(i).IsNA() || math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		field := fieldCol.Elem(i).String()
		groups[field] = append(groups[field], plotter.XY{X: xs[i], Y: ys[i]})
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]fieldSeries, 0, len(names))
	for _, name := range names {
		out = append(out, fieldSeries{Field: name, Points: groups[name]})
	}
	return out
}

// valuesByField groups a numeric column by field name, sorted by field.
func valuesByField(t dataset.Table, col string) []fieldValues {
	if !t.HasColumn(dataset.ColFieldName) || !t.HasColumn(col) {
		return nil
	}

	fieldCol := t.Column(dataset.ColFieldName)
	values := t.Float(col)

	groups := make(map[string][]float64)
	for i := 0; i < fieldCol.Len(); i++ {
		if fieldCol.Elem(i).IsNA() || math.IsNaN(values[i]) {
			continue
		}
		field := fieldCol.Elem(i).String()
		groups[field] = append(groups[field], values[i])
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]fieldValues, 0, len(names))
	for _, name := range names {
		out = append(out, fieldValues{Field: name, Values: groups[name]})
	}
	return out
}

// correlationMatrix computes the Pearson correlation of every pair of
// canonical numeric columns, over the rows where both values are present.
// Pairs with fewer than two complete rows yield NaN cells.
func correlationMatrix(t dataset.Table) ([]string, [][]float64) {
	cols := t.Numeric()
	if len(cols) < 2 {
		return cols, nil
	}

	data := make([][]float64, len(cols))
	for i, col := range cols {
		data[i] = t.Float(col)
	}

	n := t.NRows()
	matrix := make([][]float64, len(cols))
	for i := range cols {
		matrix[i] = make([]float64, len(cols))
		for j := range cols {
			switch {
			case j < i:
				matrix[i][j] = matrix[j][i]
			case j == i:
				matrix[i][j] = 1
			default:
				var xs, ys []float64
				for r := 0; r < n; r++ {
					if math.IsNaN(data[i][r]) || math.IsNaN(data[j][r]) {
						continue
					}
					xs = append(xs, data[i][r])
					ys = append(ys, data[j][r])
				}
				if len(xs) < 2 {
					matrix[i][j] = math.NaN()
					continue
				}
				matrix[i][j] = stat.Correlation(xs, ys, nil)
			}
		}
	}
	return cols, matrix
}

// dailyTotals sums a value column per calendar day, ascending by date.
// Rows with an unparseable date or a missing value are skipped.
func dailyTotals(t dataset.Table, valueCol string) ([]time.Time, []float64) {
	if !t.HasColumn(dataset.ColDate) || !t.HasColumn(valueCol) {
		return nil, nil
	}

	dates := t.Strings(dataset.ColDate)
	values := t.Float(valueCol)

	totals := make(map[time.Time]float64)
	for i, raw := range dates {
		day, err := time.Parse(config.DateLayout, raw)
		if err != nil || math.IsNaN(values[i]) {
			continue
		}
		totals[day] += values[i]
	}
	if len(totals) == 0 {
		return nil, nil
	}

	days := make([]time.Time, 0, len(totals))
	for day := range totals {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	out := make([]float64, len(days))
	for i, day := range days {
		out[i] = totals[day]
	}
	return days, out
}
