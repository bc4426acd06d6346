package features

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"wellpulse/internal/dataset"
	apierrors "wellpulse/internal/errors"
)

// DrawdownColumn is the derived pressure-drawdown feature, present when the
// table carries both wellhead and tubing pressure.
const DrawdownColumn = "drawdown_psi"

// Matrix is the model-ready view of a cleaned table: one row per
// observation, features in Names order, target in Y. Features never include
// the target column.
type Matrix struct {
	Target string
	Names  []string
	X      [][]float64
	Y      []float64
}

// Rows returns the number of observations.
func (m *Matrix) Rows() int {
	return len(m.Y)
}

// Features returns the number of feature columns.
func (m *Matrix) Features() int {
	return len(m.Names)
}

// Builder turns a cleaned table into a Matrix. Predictors are the numeric
// columns in schema order, a derived drawdown when both pressures are
// present, and a drop-first one-hot encoding of the field name. The input
// is expected to be cleaned; missing values are not handled here.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a feature builder.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger.With(slog.String("component", "feature_builder"))}
}

// Build assembles the feature matrix and target vector.
func (b *Builder) Build(ctx context.Context, t dataset.Table) (*Matrix, error) {
	if !t.HasColumn(dataset.TargetColumn) {
		return nil, apierrors.NewSchemaError(
			fmt.Sprintf("target column %s is missing", dataset.TargetColumn), nil)
	}

	y := t.Float(dataset.TargetColumn)
	rows := len(y)

	var names []string
	var columns [][]float64

	for _, col := range dataset.NumericColumns {
		if col == dataset.TargetColumn || !t.HasColumn(col) {
			continue
		}
		names = append(names, col)
		columns = append(columns, t.Float(col))
	}

	if t.HasColumn(dataset.ColWellheadPressure) && t.HasColumn(dataset.ColTubingPressure) {
		wellhead := t.Float(dataset.ColWellheadPressure)
		tubing := t.Float(dataset.ColTubingPressure)
		drawdown := make([]float64, rows)
		for i := range drawdown {
			drawdown[i] = wellhead[i] - tubing[i]
		}
		names = append(names, DrawdownColumn)
		columns = append(columns, drawdown)
	}

	oneHotNames, oneHotColumns := encodeFieldName(t, rows)
	names = append(names, oneHotNames...)
	columns = append(columns, oneHotColumns...)

	if len(names) == 0 {
		return nil, apierrors.NewSchemaError("no predictor columns available", nil)
	}

	x := make([][]float64, rows)
	for i := range x {
		row := make([]float64, len(columns))
		for j, col := range columns {
			row[j] = col[i]
		}
		x[i] = row
	}

	b.logger.InfoContext(ctx, "built feature matrix",
		slog.Int("rows", rows),
		slog.Int("features", len(names)),
		slog.String("target", dataset.TargetColumn),
	)

	return &Matrix{
		Target: dataset.TargetColumn,
		Names:  names,
		X:      x,
		Y:      y,
	}, nil
}

// encodeFieldName one-hot encodes the field identifier. The first distinct
// value in sort order is dropped to avoid collinearity, so a table with a
// single field contributes no columns.
func encodeFieldName(t dataset.Table, rows int) ([]string, [][]float64) {
	if !t.HasColumn(dataset.ColFieldName) {
		return nil, nil
	}

	values := t.Strings(dataset.ColFieldName)
	distinct := make(map[string]bool, 4)
	for _, v := range values {
		distinct[v] = true
	}

	levels := make([]string, 0, len(distinct))
	for v := range distinct {
		levels = append(levels, v)
	}
	sort.Strings(levels)
	if len(levels) < 2 {
		return nil, nil
	}
	levels = levels[1:]

	names := make([]string, len(levels))
	columns := make([][]float64, len(levels))
	for j, level := range levels {
		names[j] = fmt.Sprintf("%s_%s", dataset.ColFieldName, dataset.NormalizeHeader(level))
		col := make([]float64, rows)
		for i, v := range values {
			if v == level {
				col[i] = 1.0
			}
		}
		columns[j] = col
	}
	return names, columns
}
