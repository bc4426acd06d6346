package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/stat"

	"wellpulse/internal/config"
	"wellpulse/internal/dataset"
	apierrors "wellpulse/internal/errors"
	"wellpulse/internal/files"
)

// DashboardService serves the latest cleaned dataset to the web dashboard.
// The dataset is loaded once and shared read-only between handlers; Reload
// swaps in a fresh snapshot when a newer cleaned export appears.
type DashboardService struct {
	paths     *config.Paths
	loader    *dataset.Loader
	discovery *files.Discovery
	logger    *slog.Logger

	mu   sync.RWMutex
	snap *Snapshot
}

// Snapshot is one immutable load of the cleaned dataset.
type Snapshot struct {
	Table      dataset.Table
	SourceFile string
	LoadedAt   time.Time
}

// NewDashboardService creates a dashboard service over the configured
// directory layout.
func NewDashboardService(paths *config.Paths, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		paths:     paths,
		loader:    dataset.NewLoader(logger),
		discovery: files.NewDiscovery(paths.BaseDir),
		logger:    logger.With(slog.String("component", "dashboard_service")),
	}
}

// Reload discovers the newest cleaned export, loads it, and swaps the
// shared snapshot. In-flight requests keep reading the snapshot they
// started with.
func (s *DashboardService) Reload(ctx context.Context) (*Snapshot, error) {
	latest, ok, err := s.discovery.LatestCleaned(s.paths.ProcessedDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apierrors.NewAppError(apierrors.ErrTypeNotFound,
			fmt.Sprintf("no cleaned dataset under %s; run the clean step first", s.paths.ProcessedDir), nil)
	}

	t, err := s.loader.Load(ctx, latest.Path)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Table: t, SourceFile: latest.Path, LoadedAt: time.Now()}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "dashboard dataset loaded",
		slog.String("path", latest.Path),
		slog.Int("rows", t.NRows()))
	return snap, nil
}

// Snapshot returns the current dataset snapshot, if one is loaded.
func (s *DashboardService) Snapshot() (*Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, s.snap != nil
}

func (s *DashboardService) table() (dataset.Table, error) {
	snap, ok := s.Snapshot()
	if !ok {
		return dataset.Table{}, apierrors.NewAppError(apierrors.ErrTypeNotFound,
			"no dataset loaded; run the pipeline and reload the dashboard", nil)
	}
	return snap.Table, nil
}

// Filter narrows the dataset to one field and an inclusive date range.
// Empty values leave the axis unconstrained; Field "all" means every field.
type Filter struct {
	Field string
	From  string
	To    string
}

func (f Filter) normalize() (Filter, error) {
	f.Field = strings.TrimSpace(f.Field)
	if strings.EqualFold(f.Field, "all") {
		f.Field = ""
	}

	var err error
	if f.From, err = normalizeDay("from", f.From); err != nil {
		return f, err
	}
	if f.To, err = normalizeDay("to", f.To); err != nil {
		return f, err
	}
	if f.From != "" && f.To != "" && f.From > f.To {
		return f, apierrors.NewAppValidationError(
			fmt.Sprintf("empty date range: from %s is after to %s", f.From, f.To))
	}
	return f, nil
}

func normalizeDay(name, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	day, err := time.Parse(config.DateLayout, value)
	if err != nil {
		return "", apierrors.NewAppValidationError(
			fmt.Sprintf("invalid %s date %q, expected %s", name, value, config.DateLayout))
	}
	return day.Format(config.DateLayout), nil
}

// applyFilter narrows the table per the normalized filter. Dates are
// canonical YYYY-MM-DD strings, so lexicographic comparison orders them.
func applyFilter(t dataset.Table, f Filter) (dataset.Table, error) {
	frame := t.Frame()
	if f.Field != "" {
		frame = frame.Filter(dataframe.F{Colname: dataset.ColFieldName, Comparator: series.Eq, Comparando: f.Field})
	}
	if f.From != "" {
		frame = frame.Filter(dataframe.F{Colname: dataset.ColDate, Comparator: series.GreaterEq, Comparando: f.From})
	}
	if f.To != "" {
		frame = frame.Filter(dataframe.F{Colname: dataset.ColDate, Comparator: series.LessEq, Comparando: f.To})
	}
	if frame.Err != nil {
		return dataset.Table{}, apierrors.NewDataFormatError("failed to filter dataset", frame.Err)
	}
	return dataset.New(frame), nil
}

// Filtered returns the dataset slice matching the filter. The HTML chart
// page renders straight from this table.
func (s *DashboardService) Filtered(ctx context.Context, f Filter) (dataset.Table, error) {
	f, err := f.normalize()
	if err != nil {
		return dataset.Table{}, err
	}
	t, err := s.table()
	if err != nil {
		return dataset.Table{}, err
	}
	return applyFilter(t, f)
}

// Summary carries the headline production KPIs for a filtered slice.
type Summary struct {
	TotalOilBBL    float64 `json:"total_oil_bbl"`
	AvgDailyOilBBL float64 `json:"avg_daily_oil_bbl"`
	ActiveWells    int     `json:"active_wells"`
	Rows           int     `json:"rows"`
	FirstDate      string  `json:"first_date,omitempty"`
	LastDate       string  `json:"last_date,omitempty"`
	SpanDays       int     `json:"span_days"`
}

// Summary computes the KPIs over the filtered slice.
func (s *DashboardService) Summary(ctx context.Context, f Filter) (*Summary, error) {
	t, err := s.Filtered(ctx, f)
	if err != nil {
		return nil, err
	}
	sum := computeSummary(t)
	s.logger.DebugContext(ctx, "dashboard summary computed",
		slog.Int("rows", sum.Rows),
		slog.String("field", f.Field))
	return &sum, nil
}

func computeSummary(t dataset.Table) Summary {
	sum := Summary{Rows: t.NRows()}
	if sum.Rows == 0 {
		return sum
	}

	dates := t.Strings(dataset.ColDate)
	days := make(map[string]bool, len(dates))
	for _, d := range dates {
		if d == "" {
			continue
		}
		days[d] = true
		if sum.FirstDate == "" || d < sum.FirstDate {
			sum.FirstDate = d
		}
		if d > sum.LastDate {
			sum.LastDate = d
		}
	}

	for _, v := range t.Float(dataset.ColOilProduction) {
		if !math.IsNaN(v) {
			sum.TotalOilBBL += v
		}
	}
	if len(days) > 0 {
		sum.AvgDailyOilBBL = sum.TotalOilBBL / float64(len(days))
	}
	if sum.FirstDate != "" {
		first, _ := time.Parse(config.DateLayout, sum.FirstDate)
		last, _ := time.Parse(config.DateLayout, sum.LastDate)
		sum.SpanDays = int(last.Sub(first).Hours()/24) + 1
	}
	sum.ActiveWells = countActiveWells(t)
	return sum
}

// countActiveWells counts distinct active wells. Without a well ID column
// every active row counts as its own well.
func countActiveWells(t dataset.Table) int {
	if !t.HasColumn(dataset.ColStatus) {
		return 0
	}
	status := t.Strings(dataset.ColStatus)

	if !t.HasColumn(dataset.ColWellID) {
		n := 0
		for _, v := range status {
			if v == "Active" {
				n++
			}
		}
		return n
	}

	wells := t.Strings(dataset.ColWellID)
	active := make(map[string]bool)
	for i, v := range status {
		if v == "Active" && i < len(wells) {
			active[wells[i]] = true
		}
	}
	return len(active)
}

// ProductionPoint is one day of aggregated production.
type ProductionPoint struct {
	Date     string  `json:"date"`
	OilBBL   float64 `json:"oil_bbl"`
	GasMCF   float64 `json:"gas_mcf"`
	WaterBBL float64 `json:"water_bbl"`
}

// Production aggregates the filtered slice into a daily time series,
// oldest day first.
func (s *DashboardService) Production(ctx context.Context, f Filter) ([]ProductionPoint, error) {
	t, err := s.Filtered(ctx, f)
	if err != nil {
		return nil, err
	}
	return aggregateDaily(t), nil
}

func aggregateDaily(t dataset.Table) []ProductionPoint {
	if t.NRows() == 0 {
		return nil
	}

	dates := t.Strings(dataset.ColDate)
	oil := optionalFloats(t, dataset.ColOilProduction)
	gas := optionalFloats(t, dataset.ColGasProduction)
	water := optionalFloats(t, dataset.ColWaterProduction)

	byDay := make(map[string]*ProductionPoint)
	for i, d := range dates {
		if d == "" {
			continue
		}
		p := byDay[d]
		if p == nil {
			p = &ProductionPoint{Date: d}
			byDay[d] = p
		}
		p.OilBBL += valueAt(oil, i)
		p.GasMCF += valueAt(gas, i)
		p.WaterBBL += valueAt(water, i)
	}

	points := make([]ProductionPoint, 0, len(byDay))
	for _, p := range byDay {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

func optionalFloats(t dataset.Table, name string) []float64 {
	if !t.HasColumn(name) {
		return nil
	}
	return t.Float(name)
}

func valueAt(values []float64, i int) float64 {
	if i >= len(values) || math.IsNaN(values[i]) {
		return 0
	}
	return values[i]
}

// FieldNames returns the distinct field names in the loaded dataset,
// sorted, for the dashboard filter options.
func (s *DashboardService) FieldNames(ctx context.Context) ([]string, error) {
	t, err := s.table()
	if err != nil {
		return nil, err
	}
	return distinctFields(t), nil
}

func distinctFields(t dataset.Table) []string {
	if !t.HasColumn(dataset.ColFieldName) {
		return nil
	}
	seen := make(map[string]bool)
	var fields []string
	for _, name := range t.Strings(dataset.ColFieldName) {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return fields
}

// Insights is the automated narrative over a filtered slice.
type Insights struct {
	Summary        Summary  `json:"summary"`
	TopField       string   `json:"top_field,omitempty"`
	TopFieldOilBBL float64  `json:"top_field_oil_bbl,omitempty"`
	Correlation    *float64 `json:"pressure_oil_correlation,omitempty"`
	Sentences      []string `json:"sentences"`
}

// Insights derives the headline findings for a filtered slice: the KPI
// sentences, the top producing field, and the wellhead-pressure to oil
// correlation.
func (s *DashboardService) Insights(ctx context.Context, f Filter) (*Insights, error) {
	t, err := s.Filtered(ctx, f)
	if err != nil {
		return nil, err
	}

	ins := &Insights{Summary: computeSummary(t)}
	if ins.Summary.Rows == 0 {
		ins.Sentences = []string{"No production rows match the selected filters."}
		return ins, nil
	}

	ins.Sentences = append(ins.Sentences,
		fmt.Sprintf("Total oil production of %.0f bbl across %d rows between %s and %s.",
			ins.Summary.TotalOilBBL, ins.Summary.Rows, ins.Summary.FirstDate, ins.Summary.LastDate),
		fmt.Sprintf("Average daily production of %.0f bbl over a %d day span.",
			ins.Summary.AvgDailyOilBBL, ins.Summary.SpanDays))

	fields := distinctFields(t)
	if ins.Summary.ActiveWells > 0 {
		ins.Sentences = append(ins.Sentences,
			fmt.Sprintf("%d active wells across %d fields.", ins.Summary.ActiveWells, len(fields)))
	}

	if name, total, ok := topField(t); ok && len(fields) > 1 {
		ins.TopField = name
		ins.TopFieldOilBBL = total
		share := 0.0
		if ins.Summary.TotalOilBBL > 0 {
			share = total / ins.Summary.TotalOilBBL * 100
		}
		ins.Sentences = append(ins.Sentences,
			fmt.Sprintf("%s is the top producing field with %.0f bbl (%.1f%% of the total).", name, total, share))
	}

	if r, ok := pressureOilCorrelation(t); ok {
		ins.Correlation = &r
		ins.Sentences = append(ins.Sentences,
			fmt.Sprintf("Wellhead pressure shows a %s %s correlation with oil production (r = %.2f).",
				correlationStrength(r), correlationDirection(r), r))
	}

	s.logger.DebugContext(ctx, "dashboard insights computed",
		slog.Int("rows", ins.Summary.Rows),
		slog.Int("sentences", len(ins.Sentences)))
	return ins, nil
}

// topField returns the field with the largest oil sum. Ties break toward
// the lexicographically smaller name so the answer is stable.
func topField(t dataset.Table) (string, float64, bool) {
	if !t.HasColumn(dataset.ColFieldName) || !t.HasColumn(dataset.ColOilProduction) {
		return "", 0, false
	}
	names := t.Strings(dataset.ColFieldName)
	oil := t.Float(dataset.ColOilProduction)

	totals := make(map[string]float64)
	for i, name := range names {
		if name == "" || i >= len(oil) || math.IsNaN(oil[i]) {
			continue
		}
		totals[name] += oil[i]
	}
	if len(totals) == 0 {
		return "", 0, false
	}

	var best string
	var bestTotal float64
	for name, total := range totals {
		if best == "" || total > bestTotal || (total == bestTotal && name < best) {
			best = name
			bestTotal = total
		}
	}
	return best, bestTotal, true
}

// pressureOilCorrelation computes the Pearson correlation between wellhead
// pressure and oil production over rows where both are present.
func pressureOilCorrelation(t dataset.Table) (float64, bool) {
	if !t.HasColumn(dataset.ColWellheadPressure) || !t.HasColumn(dataset.ColOilProduction) {
		return 0, false
	}
	xs := t.Float(dataset.ColWellheadPressure)
	ys := t.Float(dataset.ColOilProduction)

	var px, py []float64
	for i := range xs {
		if i >= len(ys) || math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		px = append(px, xs[i])
		py = append(py, ys[i])
	}
	if len(px) < 2 {
		return 0, false
	}

	r := stat.Correlation(px, py, nil)
	if math.IsNaN(r) {
		return 0, false
	}
	return r, true
}

func correlationStrength(r float64) string {
	switch abs := math.Abs(r); {
	case abs >= 0.7:
		return "strong"
	case abs >= 0.4:
		return "moderate"
	default:
		return "weak"
	}
}

func correlationDirection(r float64) string {
	if r < 0 {
		return "negative"
	}
	return "positive"
}
