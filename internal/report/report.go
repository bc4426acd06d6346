package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"wellpulse/internal/config"
	"wellpulse/internal/dataset"
	apierrors "wellpulse/internal/errors"
	"wellpulse/internal/exporter"
	"wellpulse/pkg/contracts/domain"
)

// Input carries everything a report run needs: the cleaned dataset, the
// model evaluation when the modeling step ran, and the artifact date stamp.
type Input struct {
	Table   dataset.Table
	Summary *domain.ModelSummary
	Stamp   time.Time
}

// Artifacts lists the files a report run wrote, for logging and the
// artifacts API.
type Artifacts struct {
	Charts      []string `json:"charts"`
	Pages       []string `json:"pages,omitempty"`
	PDF         string   `json:"pdf"`
	Workbook    string   `json:"workbook,omitempty"`
	Predictions string   `json:"predictions,omitempty"`
}

// Generator renders the report artifact set for a pipeline run.
type Generator struct {
	logger *slog.Logger
	paths  *config.Paths
	cfg    config.ReportConfig
	csv    *exporter.CSVWriter
}

// NewGenerator creates a report generator writing under the given layout.
func NewGenerator(paths *config.Paths, cfg config.ReportConfig, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		logger: logger,
		paths:  paths,
		cfg:    cfg,
		csv:    exporter.NewCSVWriter(paths),
	}
}

// Charts renders only the chart artifacts: the PNG set and, when enabled,
// the interactive HTML page. The exploratory pipeline step uses it to chart
// a dataset without producing the report documents.
func (g *Generator) Charts(ctx context.Context, in Input) (*Artifacts, error) {
	if in.Stamp.IsZero() {
		in.Stamp = time.Now()
	}
	_, _, arts, err := g.renderCharts(ctx, in)
	return arts, err
}

// Generate writes the full artifact set: PNG charts (rendered in a bounded
// worker group), the interactive HTML page, the PDF report, and, when a
// model summary is present, the XLSX workbook and predictions CSV. The
// first failure aborts the run.
func (g *Generator) Generate(ctx context.Context, in Input) (*Artifacts, error) {
	if in.Stamp.IsZero() {
		in.Stamp = time.Now()
	}

	inputs, specs, arts, err := g.renderCharts(ctx, in)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(g.paths.ReportsDir, 0755); err != nil {
		return nil, apierrors.NewStorageError(fmt.Sprintf("failed to create directory %s", g.paths.ReportsDir), err)
	}

	pdfPath := g.paths.ReportFile(config.DatedName(config.PDFReportPrefix, in.Stamp, ".pdf"))
	if err := g.renderPDF(in, inputs, specs, arts.Charts, pdfPath); err != nil {
		return nil, fmt.Errorf("pdf report: %w", err)
	}
	arts.PDF = pdfPath

	if in.Summary != nil {
		wbPath := g.paths.ReportFile(config.DatedName(config.ModelReportPrefix, in.Stamp, ".xlsx"))
		if err := writeWorkbook(in.Summary, dataset.Describe(in.Table), g.cfg.PredictionSample, wbPath); err != nil {
			return nil, fmt.Errorf("model workbook: %w", err)
		}
		arts.Workbook = wbPath

		if len(in.Summary.Predictions) > 0 {
			predName := config.DatedName(config.PredictionsPrefix, in.Stamp, ".csv")
			if err := g.csv.WritePredictions(in.Summary.Predictions, predName); err != nil {
				return nil, fmt.Errorf("predictions export: %w", err)
			}
			arts.Predictions = g.paths.ReportFile(predName)
		}
	}

	g.logger.InfoContext(ctx, "report artifacts written",
		slog.Int("charts", len(arts.Charts)),
		slog.Int("pages", len(arts.Pages)),
		slog.String("pdf", filepath.Base(arts.PDF)))
	return arts, nil
}

// renderCharts renders the PNG chart set (and the HTML page when enabled)
// for in and returns the shared chart inputs and specs so the document
// renderers do not recompute them. Expects a normalized stamp.
func (g *Generator) renderCharts(ctx context.Context, in Input) (chartInputs, []chartSpec, *Artifacts, error) {
	if err := ctx.Err(); err != nil {
		return chartInputs{}, nil, nil, err
	}
	if in.Table.NRows() == 0 {
		return chartInputs{}, nil, nil, apierrors.NewDataFormatError("cannot generate a report from an empty dataset", nil)
	}

	if err := os.MkdirAll(g.paths.ChartsDir, 0755); err != nil {
		return chartInputs{}, nil, nil, apierrors.NewStorageError(fmt.Sprintf("failed to create directory %s", g.paths.ChartsDir), err)
	}

	inputs := buildChartInputs(in.Table)
	specs := chartSpecs(inputs, in.Summary)

	g.logger.InfoContext(ctx, "rendering chart set",
		slog.Int("rows", in.Table.NRows()),
		slog.Int("charts", len(specs)),
		slog.String("stamp", in.Stamp.Format(config.DateStampLayout)))

	chartPaths := make([]string, len(specs))
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(runtime.GOMAXPROCS(0))
	for i, spec := range specs {
		grp.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := spec.build()
			if err != nil {
				return fmt.Errorf("chart %s: %w", spec.name, err)
			}
			path := g.paths.ChartFile(config.DatedName(spec.name+"_", in.Stamp, ".png"))
			if err := savePlot(p, path); err != nil {
				return err
			}
			chartPaths[i] = path
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return chartInputs{}, nil, nil, fmt.Errorf("chart rendering: %w", err)
	}

	arts := &Artifacts{Charts: chartPaths}

	if g.cfg.IncludeHTML {
		htmlPath := g.paths.ChartFile(config.DatedName("production_charts_", in.Stamp, ".html"))
		if err := renderHTMLFile(inputs, in.Summary, htmlPath); err != nil {
			return chartInputs{}, nil, nil, fmt.Errorf("interactive charts: %w", err)
		}
		arts.Pages = append(arts.Pages, htmlPath)
	}

	return inputs, specs, arts, nil
}
