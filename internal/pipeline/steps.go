package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"wellpulse/internal/cleaning"
	"wellpulse/internal/config"
	"wellpulse/internal/dataset"
	apierrors "wellpulse/internal/errors"
	"wellpulse/internal/exporter"
	"wellpulse/internal/features"
	"wellpulse/internal/files"
	"wellpulse/internal/regress"
	"wellpulse/internal/report"
)

// loadStep brings the working table into the run: the newest raw drop (or
// an explicit input file) when cleaning is part of the plan, the newest
// cleaned export otherwise.
type loadStep struct {
	loader    *dataset.Loader
	discovery *files.Discovery
	paths     *config.Paths
	logger    *slog.Logger
}

func newLoadStep(loader *dataset.Loader, discovery *files.Discovery, paths *config.Paths, logger *slog.Logger) *loadStep {
	return &loadStep{
		loader:    loader,
		discovery: discovery,
		paths:     paths,
		logger:    logger.With(slog.String("step", StepIDLoad)),
	}
}

func (s *loadStep) ID() string   { return StepIDLoad }
func (s *loadStep) Name() string { return StepNameLoad }

func (s *loadStep) Execute(ctx context.Context, state *State) error {
	path := state.InputFile
	if path == "" {
		var err error
		if state.LoadRaw {
			path, err = s.discoverRaw()
		} else {
			path, err = s.discoverCleaned(state)
		}
		if err != nil {
			return err
		}
	}

	t, err := s.loader.Load(ctx, path)
	if err != nil {
		return err
	}
	state.Table = t
	state.SourceFile = path

	if ss := state.GetStep(s.ID()); ss != nil {
		ss.SetMessage(fmt.Sprintf("loaded %d rows from %s", t.NRows(), filepath.Base(path)))
	}
	s.logger.InfoContext(ctx, "dataset loaded",
		slog.String("path", path),
		slog.Int("rows", t.NRows()),
		slog.Int("columns", len(t.Columns())))
	return nil
}

func (s *loadStep) discoverRaw() (string, error) {
	latest, ok, err := s.discovery.LatestRaw(s.paths.RawDir)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apierrors.NewNotFoundError(
			fmt.Sprintf("raw dataset %s* under %s", config.RawFilePrefix, s.paths.RawDir))
	}
	return latest.Path, nil
}

func (s *loadStep) discoverCleaned(state *State) (string, error) {
	latest, ok, err := s.discovery.LatestCleaned(s.paths.ProcessedDir)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apierrors.NewAppError(apierrors.ErrTypeNotFound,
			fmt.Sprintf("no cleaned dataset under %s; run the clean step first", s.paths.ProcessedDir), nil)
	}
	state.CleanedFile = latest.Path
	return latest.Path, nil
}

// cleanStep repairs the working table and exports the dated cleaned CSV.
type cleanStep struct {
	cleaner *cleaning.Cleaner
	csv     *exporter.CSVWriter
	paths   *config.Paths
	logger  *slog.Logger
}

func newCleanStep(cleaner *cleaning.Cleaner, csv *exporter.CSVWriter, paths *config.Paths, logger *slog.Logger) *cleanStep {
	return &cleanStep{
		cleaner: cleaner,
		csv:     csv,
		paths:   paths,
		logger:  logger.With(slog.String("step", StepIDClean)),
	}
}

func (s *cleanStep) ID() string   { return StepIDClean }
func (s *cleanStep) Name() string { return StepNameClean }

func (s *cleanStep) Execute(ctx context.Context, state *State) error {
	result, err := s.cleaner.Clean(ctx, state.Table)
	if err != nil {
		return err
	}
	state.Table = result.Table
	state.CleanResult = result

	name := config.CleanedFileName(state.Stamp)
	if err := s.csv.WriteTable(result.Table, name); err != nil {
		return apierrors.NewStorageError(fmt.Sprintf("failed to export cleaned dataset %s", name), err)
	}
	state.CleanedFile = s.paths.CleanedFile(name)

	if ss := state.GetStep(s.ID()); ss != nil {
		ss.SetMessage(fmt.Sprintf("%d rows in, %d rows out", result.RowsIn, result.RowsOut))
	}
	s.logger.InfoContext(ctx, "cleaned dataset exported",
		slog.String("path", state.CleanedFile),
		slog.Int("rows_in", result.RowsIn),
		slog.Int("rows_out", result.RowsOut))
	return nil
}

// edaStep renders the exploratory chart set for the working table.
type edaStep struct {
	reporter *report.Generator
	logger   *slog.Logger
}

func newEDAStep(reporter *report.Generator, logger *slog.Logger) *edaStep {
	return &edaStep{
		reporter: reporter,
		logger:   logger.With(slog.String("step", StepIDEDA)),
	}
}

func (s *edaStep) ID() string   { return StepIDEDA }
func (s *edaStep) Name() string { return StepNameEDA }

func (s *edaStep) Execute(ctx context.Context, state *State) error {
	arts, err := s.reporter.Charts(ctx, report.Input{
		Table:   state.Table,
		Summary: state.Summary,
		Stamp:   state.Stamp,
	})
	if err != nil {
		return err
	}
	state.Artifacts = arts

	if ss := state.GetStep(s.ID()); ss != nil {
		ss.SetMessage(fmt.Sprintf("%d charts rendered", len(arts.Charts)))
	}
	s.logger.InfoContext(ctx, "exploratory charts rendered",
		slog.Int("charts", len(arts.Charts)),
		slog.Int("pages", len(arts.Pages)))
	return nil
}

// modelStep builds the feature matrix and fits the forest.
type modelStep struct {
	builder *features.Builder
	trainer *regress.Trainer
	logger  *slog.Logger
}

func newModelStep(builder *features.Builder, trainer *regress.Trainer, logger *slog.Logger) *modelStep {
	return &modelStep{
		builder: builder,
		trainer: trainer,
		logger:  logger.With(slog.String("step", StepIDModel)),
	}
}

func (s *modelStep) ID() string   { return StepIDModel }
func (s *modelStep) Name() string { return StepNameModel }

func (s *modelStep) Execute(ctx context.Context, state *State) error {
	matrix, err := s.builder.Build(ctx, state.Table)
	if err != nil {
		return err
	}
	summary, err := s.trainer.Train(ctx, matrix)
	if err != nil {
		return err
	}
	state.Summary = summary

	if ss := state.GetStep(s.ID()); ss != nil {
		ss.SetMessage(fmt.Sprintf("RMSE %.2f, R2 %.3f on %d test rows",
			summary.Metrics.RMSE, summary.Metrics.R2, summary.TestRows))
	}
	s.logger.InfoContext(ctx, "model trained",
		slog.Int("features", len(summary.Features)),
		slog.Int("train_rows", summary.TrainRows),
		slog.Int("test_rows", summary.TestRows),
		slog.Float64("rmse", summary.Metrics.RMSE),
		slog.Float64("r2", summary.Metrics.R2))
	return nil
}

// reportStep writes the full artifact set for the run. It is
// self-contained: the chart set is rendered here as well, so a report-only
// run needs nothing from the eda step.
type reportStep struct {
	reporter *report.Generator
	logger   *slog.Logger
}

func newReportStep(reporter *report.Generator, logger *slog.Logger) *reportStep {
	return &reportStep{
		reporter: reporter,
		logger:   logger.With(slog.String("step", StepIDReport)),
	}
}

func (s *reportStep) ID() string   { return StepIDReport }
func (s *reportStep) Name() string { return StepNameReport }

func (s *reportStep) Execute(ctx context.Context, state *State) error {
	arts, err := s.reporter.Generate(ctx, report.Input{
		Table:   state.Table,
		Summary: state.Summary,
		Stamp:   state.Stamp,
	})
	if err != nil {
		return err
	}
	state.Artifacts = arts

	if ss := state.GetStep(s.ID()); ss != nil {
		ss.SetMessage(fmt.Sprintf("report written to %s", filepath.Base(arts.PDF)))
	}
	s.logger.InfoContext(ctx, "report artifacts written",
		slog.Int("charts", len(arts.Charts)),
		slog.String("pdf", filepath.Base(arts.PDF)),
		slog.Bool("workbook", arts.Workbook != ""))
	return nil
}
