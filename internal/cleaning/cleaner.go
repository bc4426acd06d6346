package cleaning

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"wellpulse/internal/config"
	"wellpulse/internal/dataset"
	apierrors "wellpulse/internal/errors"
)

// Outlier strategies.
const (
	StrategyClip   = "clip"
	StrategyZScore = "zscore"
)

// Cleaner repairs a raw production table. Rows with unparseable dates or
// missing categorical values are dropped, missing numeric values are
// imputed, and outliers are treated per the configured strategy. Cleaning
// is deterministic for identical input and idempotent under the default
// clip strategy.
type Cleaner struct {
	logger *slog.Logger
	cfg    config.CleaningConfig
}

// NewCleaner creates a cleaner with the given policy configuration.
func NewCleaner(logger *slog.Logger, cfg config.CleaningConfig) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.OutlierStrategy == "" {
		cfg.OutlierStrategy = StrategyClip
	}
	if cfg.ZScoreLimit <= 0 {
		cfg.ZScoreLimit = config.DefaultZScoreLimit
	}
	if cfg.MeanImputeShare <= 0 {
		cfg.MeanImputeShare = config.DefaultMeanImputeShare
	}
	return &Cleaner{
		logger: logger.With(slog.String("component", "cleaner")),
		cfg:    cfg,
	}
}

// CleanResult reports what cleaning did to the table.
type CleanResult struct {
	Table dataset.Table

	RowsIn  int
	RowsOut int

	DroppedDateRows        int
	DroppedCategoricalRows int
	RemovedOutlierRows     int

	ImputedCells     map[string]int
	ImputationMethod map[string]string
	ClippedCells     int
	DroppedColumns   []string

	Strategy string
}

// Clean runs the full cleaning pass and returns the cleaned table together
// with per-step counters.
func (c *Cleaner) Clean(ctx context.Context, t dataset.Table) (*CleanResult, error) {
	if err := dataset.CheckRequired(t); err != nil {
		return nil, err
	}

	rowsIn := t.NRows()
	if rowsIn == 0 {
		return nil, apierrors.NewDataFormatError("table has no rows", nil)
	}

	result := &CleanResult{
		RowsIn:           rowsIn,
		ImputedCells:     make(map[string]int),
		ImputationMethod: make(map[string]string),
		Strategy:         c.cfg.OutlierStrategy,
	}

	cols := c.extractColumns(t)

	keep := c.markInvalidRows(t, cols, result)
	cols = filterRows(cols, keep)

	rows := len(keep) - countFalse(keep)
	if rows == 0 {
		return nil, apierrors.NewDataFormatError("no valid rows remain after dropping invalid dates and categories", nil)
	}

	if err := c.imputeNumeric(cols, rows, result); err != nil {
		return nil, err
	}

	switch c.cfg.OutlierStrategy {
	case StrategyClip:
		c.clipOutliers(cols, result)
	case StrategyZScore:
		cols = c.removeOutliers(cols, rows, result)
	default:
		return nil, apierrors.NewConfigError(
			fmt.Sprintf("unknown outlier strategy %q", c.cfg.OutlierStrategy), nil)
	}

	cleaned, err := rebuildTable(cols, result.DroppedColumns)
	if err != nil {
		return nil, err
	}
	result.Table = cleaned
	result.RowsOut = cleaned.NRows()

	c.logger.InfoContext(ctx, "cleaned dataset",
		slog.Int("rows_in", result.RowsIn),
		slog.Int("rows_out", result.RowsOut),
		slog.Int("dropped_date_rows", result.DroppedDateRows),
		slog.Int("dropped_categorical_rows", result.DroppedCategoricalRows),
		slog.Int("removed_outlier_rows", result.RemovedOutlierRows),
		slog.Int("clipped_cells", result.ClippedCells),
		slog.Int("imputed_cells", sumCounts(result.ImputedCells)),
		slog.String("strategy", result.Strategy),
	)
	return result, nil
}

// workingColumn is the mutable columnar form the cleaner operates on.
type workingColumn struct {
	name     string
	isString bool
	strs     []string
	floats   []float64
	missing  []bool
}

func (c *Cleaner) extractColumns(t dataset.Table) []*workingColumn {
	names := t.Columns()
	cols := make([]*workingColumn, 0, len(names))
	for _, name := range names {
		s := t.Column(name)
		wc := &workingColumn{
			name:     name,
			isString: s.Type() == series.String,
			missing:  make([]bool, s.Len()),
		}
		for i := 0; i < s.Len(); i++ {
			wc.missing[i] = s.Elem(i).IsNA()
		}
		if wc.isString {
			wc.strs = s.Records()
		} else {
			wc.floats = s.Float()
		}
		cols = append(cols, wc)
	}
	return cols
}

// markInvalidRows flags rows whose date fails to parse or whose categorical
// values are missing.
func (c *Cleaner) markInvalidRows(t dataset.Table, cols []*workingColumn, result *CleanResult) []bool {
	rows := t.NRows()
	keep := make([]bool, rows)
	for i := range keep {
		keep[i] = true
	}

	categorical := make(map[string]bool, len(dataset.CategoricalColumns))
	for _, name := range dataset.CategoricalColumns {
		categorical[name] = true
	}

	for _, col := range cols {
		switch {
		case col.name == dataset.ColDate:
			for i := 0; i < rows; i++ {
				if !keep[i] {
					continue
				}
				if col.missing[i] {
					keep[i] = false
					result.DroppedDateRows++
					continue
				}
				if _, err := time.Parse(config.DateLayout, col.strs[i]); err != nil {
					keep[i] = false
					result.DroppedDateRows++
				}
			}
		case categorical[col.name]:
			for i := 0; i < rows; i++ {
				if keep[i] && col.missing[i] {
					keep[i] = false
					result.DroppedCategoricalRows++
				}
			}
		}
	}
	return keep
}

// imputeNumeric fills missing values in the modeled numeric columns. The
// column mean is used while the missing share stays under the configured
// threshold, the median beyond it. A required column with no values at all
// is a data format failure; an optional one is dropped.
func (c *Cleaner) imputeNumeric(cols []*workingColumn, rows int, result *CleanResult) error {
	required := make(map[string]bool, len(dataset.RequiredColumns))
	for _, name := range dataset.RequiredColumns {
		required[name] = true
	}
	modeled := make(map[string]bool, len(dataset.NumericColumns))
	for _, name := range dataset.NumericColumns {
		modeled[name] = true
	}

	for _, col := range cols {
		if col.isString || !modeled[col.name] {
			continue
		}

		present := dataset.WithoutNaN(col.floats)
		missing := rows - len(present)
		if missing == 0 {
			continue
		}
		if len(present) == 0 {
			if required[col.name] {
				return apierrors.NewDataFormatError(
					fmt.Sprintf("required column %s has no valid values", col.name), nil)
			}
			result.DroppedColumns = append(result.DroppedColumns, col.name)
			continue
		}

		share := float64(missing) / float64(rows)
		var fill float64
		var method string
		if share < c.cfg.MeanImputeShare {
			fill = mean(present)
			method = "mean"
		} else {
			sort.Float64s(present)
			fill = dataset.Quantile(present, 0.5)
			method = "median"
		}

		for i, v := range col.floats {
			if math.IsNaN(v) {
				col.floats[i] = fill
				result.ImputedCells[col.name]++
			}
		}
		result.ImputationMethod[col.name] = method
	}
	return nil
}

// clipOutliers clips every modeled numeric value into
// [Q1 - 1.5*IQR, Q3 + 1.5*IQR].
func (c *Cleaner) clipOutliers(cols []*workingColumn, result *CleanResult) {
	dropped := toSet(result.DroppedColumns)
	modeled := toSet(dataset.NumericColumns)

	for _, col := range cols {
		if col.isString || !modeled[col.name] || dropped[col.name] {
			continue
		}

		sorted := append([]float64(nil), col.floats...)
		sort.Float64s(sorted)
		q1 := dataset.Quantile(sorted, 0.25)
		q3 := dataset.Quantile(sorted, 0.75)
		iqr := q3 - q1
		lo := q1 - 1.5*iqr
		hi := q3 + 1.5*iqr

		for i, v := range col.floats {
			if v < lo {
				col.floats[i] = lo
				result.ClippedCells++
			} else if v > hi {
				col.floats[i] = hi
				result.ClippedCells++
			}
		}
	}
}

// removeOutliers drops rows where any modeled numeric value sits more than
// ZScoreLimit standard deviations from its column mean.
func (c *Cleaner) removeOutliers(cols []*workingColumn, rows int, result *CleanResult) []*workingColumn {
	dropped := toSet(result.DroppedColumns)
	modeled := toSet(dataset.NumericColumns)

	keep := make([]bool, rows)
	for i := range keep {
		keep[i] = true
	}

	for _, col := range cols {
		if col.isString || !modeled[col.name] || dropped[col.name] {
			continue
		}

		m := mean(col.floats)
		sd := stddev(col.floats, m)
		if sd == 0 {
			continue
		}
		for i, v := range col.floats {
			if keep[i] && math.Abs(v-m)/sd > c.cfg.ZScoreLimit {
				keep[i] = false
				result.RemovedOutlierRows++
			}
		}
	}

	return filterRows(cols, keep)
}

// rebuildTable assembles the cleaned columns back into a Table, skipping
// dropped columns and preserving order.
func rebuildTable(cols []*workingColumn, droppedColumns []string) (dataset.Table, error) {
	dropped := toSet(droppedColumns)

	ss := make([]series.Series, 0, len(cols))
	for _, col := range cols {
		if dropped[col.name] {
			continue
		}
		if col.isString {
			ss = append(ss, series.New(col.strs, series.String, col.name))
		} else {
			ss = append(ss, series.New(col.floats, series.Float, col.name))
		}
	}

	frame := dataframe.New(ss...)
	if frame.Err != nil {
		return dataset.Table{}, apierrors.NewDataFormatError("failed to rebuild cleaned table", frame.Err)
	}
	return dataset.New(frame), nil
}

func filterRows(cols []*workingColumn, keep []bool) []*workingColumn {
	for _, col := range cols {
		if col.isString {
			kept := make([]string, 0, len(col.strs))
			for i, v := range col.strs {
				if keep[i] {
					kept = append(kept, v)
				}
			}
			col.strs = kept
		} else {
			kept := make([]float64, 0, len(col.floats))
			for i, v := range col.floats {
				if keep[i] {
					kept = append(kept, v)
				}
			}
			col.floats = kept
		}

		keptMissing := make([]bool, 0, len(col.missing))
		for i, v := range col.missing {
			if keep[i] {
				keptMissing = append(keptMissing, v)
			}
		}
		col.missing = keptMissing
	}
	return cols
}

func countFalse(mask []bool) int {
	n := 0
	for _, v := range mask {
		if !v {
			n++
		}
	}
	return n
}

func sumCounts(m map[string]int) int {
	total := 0
	for _, v := range m {
		total += v
	}
	return total
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64, m float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}
