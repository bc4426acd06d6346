package dataset

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ColumnStats holds the descriptive statistics of one numeric column.
type ColumnStats struct {
	Column  string  `json:"column"`
	Count   int     `json:"count"`
	Missing int     `json:"missing"`
	Mean    float64 `json:"mean"`
	Std     float64 `json:"std"`
	Min     float64 `json:"min"`
	Q1      float64 `json:"q1"`
	Median  float64 `json:"median"`
	Q3      float64 `json:"q3"`
	Max     float64 `json:"max"`
}

// IQR returns the interquartile range.
func (s ColumnStats) IQR() float64 {
	return s.Q3 - s.Q1
}

// Describe computes descriptive statistics for every canonical numeric
// column present in the table.
func Describe(t Table) []ColumnStats {
	cols := t.Numeric()
	out := make([]ColumnStats, 0, len(cols))
	for _, col := range cols {
		out = append(out, DescribeColumn(col, t.Float(col)))
	}
	return out
}

// DescribeColumn computes descriptive statistics for a single column.
// Missing (NaN) values are excluded from every statistic except Missing.
func DescribeColumn(name string, values []float64) ColumnStats {
	clean := WithoutNaN(values)
	cs := ColumnStats{
		Column:  name,
		Count:   len(clean),
		Missing: len(values) - len(clean),
	}
	if len(clean) == 0 {
		return cs
	}

	sort.Float64s(clean)
	cs.Min = clean[0]
	cs.Max = clean[len(clean)-1]
	cs.Mean = stat.Mean(clean, nil)
	if len(clean) > 1 {
		cs.Std = stat.StdDev(clean, nil)
	}
	cs.Q1 = Quantile(clean, 0.25)
	cs.Median = Quantile(clean, 0.5)
	cs.Q3 = Quantile(clean, 0.75)
	return cs
}

// WithoutNaN returns a copy of values with NaN entries removed.
func WithoutNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Quantile returns the p-quantile of sorted using linear interpolation.
// sorted must be ascending and free of NaN.
func Quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	return stat.Quantile(p, stat.LinInterp, sorted, nil)
}
