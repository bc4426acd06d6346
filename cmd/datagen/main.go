package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"wellpulse/internal/config"
	"wellpulse/internal/dataset"
	"wellpulse/internal/infrastructure"
)

// fieldPool holds real southern Iraq field names used round-robin
var fieldPool = []string{
	"Majnoon", "North Rumaila", "Zubair", "West Qurna", "Halfaya",
	"Gharraf", "Nahr Umr", "Kirkuk", "Buzurgan", "Subba",
}

type genOptions struct {
	Rows     int
	Fields   int
	Seed     int64
	Missing  float64 // fraction of numeric cells blanked
	Outliers int     // rows with injected production spikes
	Start    time.Time
}

func main() {
	rows := flag.Int("rows", 1000, "number of rows to generate")
	fields := flag.Int("fields", 3, "number of distinct oil fields")
	out := flag.String("out", "", "output CSV path (defaults to data/raw under the base directory)")
	seed := flag.Int64("seed", 42, "random seed")
	missing := flag.Float64("missing", 0.02, "fraction of numeric cells left empty")
	outliers := flag.Int("outliers", 5, "rows with injected production spikes")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	paths, err := cfg.BuildPaths()
	if err != nil {
		logger.Error("Failed to resolve paths", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		logger.Error("Failed to create required directories", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *out == "" {
		*out = filepath.Join(paths.RawDir, config.RawFilePrefix+".csv")
	}

	opts := genOptions{
		Rows:     *rows,
		Fields:   *fields,
		Seed:     *seed,
		Missing:  *missing,
		Outliers: *outliers,
		Start:    time.Now().AddDate(0, -6, 0),
	}

	records, err := generate(opts)
	if err != nil {
		logger.Error("Generation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := writeCSV(*out, records); err != nil {
		logger.Error("Failed to write output", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Dataset generated",
		slog.String("path", *out),
		slog.Int("rows", *rows),
		slog.Int("fields", *fields),
		slog.Int64("seed", *seed))
	fmt.Printf("wrote %d rows to %s\n", *rows, *out)
}

// generate builds the header plus data records for a synthetic
// production history. The same options always produce the same output.
func generate(opts genOptions) ([][]string, error) {
	if opts.Rows <= 0 {
		return nil, fmt.Errorf("rows must be positive, got %d", opts.Rows)
	}
	if opts.Fields <= 0 || opts.Fields > len(fieldPool) {
		return nil, fmt.Errorf("fields must be between 1 and %d, got %d", len(fieldPool), opts.Fields)
	}
	if opts.Missing < 0 || opts.Missing >= 1 {
		return nil, fmt.Errorf("missing fraction must be in [0,1), got %g", opts.Missing)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	fields := fieldPool[:opts.Fields]

	// Per-field baseline production so fields are distinguishable
	baselines := make(map[string]float64, len(fields))
	for i, f := range fields {
		baselines[f] = 450 + float64(i)*120 + rng.Float64()*60
	}

	header := []string{
		dataset.ColDate, dataset.ColFieldName, dataset.ColWellID, dataset.ColStatus,
		dataset.ColOilProduction, dataset.ColGasProduction, dataset.ColWaterProduction,
		dataset.ColWellheadPressure, dataset.ColTubingPressure,
		dataset.ColChokeSize, dataset.ColPumpEfficiency,
	}
	records := [][]string{header}

	chokes := []float64{0.25, 0.375, 0.5, 0.625, 0.75}
	wellsPerField := 4

	for i := 0; i < opts.Rows; i++ {
		field := fields[i%len(fields)]
		well := fmt.Sprintf("W-%03d", (i/len(fields))%wellsPerField+1+wellsPerField*indexOf(fields, field))
		day := opts.Start.AddDate(0, 0, i/(len(fields)*wellsPerField))

		pressure := 950 + rng.NormFloat64()*140 + baselines[field]*0.3
		choke := chokes[rng.Intn(len(chokes))]
		pumpEff := clamp(58+rng.NormFloat64()*12, 20, 98)

		oil := baselines[field] + 0.6*(pressure-1000) + 280*choke + 2.1*(pumpEff-60) + rng.NormFloat64()*40
		oil = math.Max(oil, 0)

		status := "Active"
		switch roll := rng.Float64(); {
		case roll < 0.03:
			status = "Shut-in"
			oil = 0
		case roll < 0.08:
			status = "Maintenance"
			oil *= 0.15
		}

		gas := math.Max(oil*2.4+rng.NormFloat64()*80, 0)
		water := math.Max(oil*0.55+rng.NormFloat64()*35, 0)
		tubing := pressure - (120 + rng.NormFloat64()*25)

		records = append(records, []string{
			day.Format(config.DateLayout),
			field,
			well,
			status,
			formatFloat(oil),
			formatFloat(gas),
			formatFloat(water),
			formatFloat(pressure),
			formatFloat(tubing),
			strconv.FormatFloat(choke, 'f', 3, 64),
			formatFloat(pumpEff),
		})
	}

	injectOutliers(rng, records, opts.Outliers)
	injectMissing(rng, records, opts.Missing)

	return records, nil
}

// injectOutliers multiplies the oil production of n random rows so the
// cleaning step has spikes to clip.
func injectOutliers(rng *rand.Rand, records [][]string, n int) {
	if len(records) <= 1 {
		return
	}
	const oilCol = 4
	for i := 0; i < n; i++ {
		row := records[1+rng.Intn(len(records)-1)]
		if v, err := strconv.ParseFloat(row[oilCol], 64); err == nil {
			row[oilCol] = formatFloat(v*8 + 5000)
		}
	}
}

// injectMissing blanks a fraction of the numeric cells. Date and field
// name stay intact so every row remains attributable.
func injectMissing(rng *rand.Rand, records [][]string, fraction float64) {
	if fraction <= 0 || len(records) <= 1 {
		return
	}
	// Numeric and optional text columns only
	candidates := []int{2, 3, 4, 5, 6, 7, 8, 9, 10}
	for _, row := range records[1:] {
		for _, col := range candidates {
			if rng.Float64() < fraction {
				row[col] = ""
			}
		}
	}
}

func writeCSV(path string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func indexOf(ss []string, s string) int {
	for i, v := range ss {
		if v == s {
			return i
		}
	}
	return 0
}
