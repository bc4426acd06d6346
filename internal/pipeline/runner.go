package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"wellpulse/internal/cleaning"
	"wellpulse/internal/config"
	"wellpulse/internal/dataset"
	"wellpulse/internal/exporter"
	"wellpulse/internal/features"
	"wellpulse/internal/files"
	"wellpulse/internal/infrastructure"
	"wellpulse/internal/regress"
	"wellpulse/internal/report"
)

// Runner executes pipeline runs sequentially and fail-fast: the first
// step error aborts the run with a diagnostic naming the failing step.
type Runner struct {
	cfg     *config.Config
	paths   *config.Paths
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
	steps   map[string]Step
}

// NewRunner wires the pipeline steps from the configuration. A nil
// metrics handle disables instrumentation; a nil logger falls back to
// slog.Default.
func NewRunner(cfg *config.Config, paths *config.Paths, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}

	loader := dataset.NewLoader(logger)
	discovery := files.NewDiscovery(paths.BaseDir)
	cleaner := cleaning.NewCleaner(logger, cfg.Cleaning)
	builder := features.NewBuilder(logger)
	trainer := regress.NewTrainer(logger, cfg.Model)
	reporter := report.NewGenerator(paths, cfg.Report, logger)
	csv := exporter.NewCSVWriter(paths)

	return &Runner{
		cfg:     cfg,
		paths:   paths,
		logger:  logger.With(slog.String("component", "pipeline")),
		metrics: metrics,
		steps: map[string]Step{
			StepIDLoad:   newLoadStep(loader, discovery, paths, logger),
			StepIDClean:  newCleanStep(cleaner, csv, paths, logger),
			StepIDEDA:    newEDAStep(reporter, logger),
			StepIDModel:  newModelStep(builder, trainer, logger),
			StepIDReport: newReportStep(reporter, logger),
		},
	}
}

// Run executes the requested steps against a fresh run state and returns
// the outcome snapshot. The returned error, when non-nil, names the
// failing step; the Result is still populated for reporting.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	plan, err := ResolveSteps(req.Steps)
	if err != nil {
		return nil, err
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.InputFile == "" {
		req.InputFile = r.cfg.Data.InputFile
	}

	state := NewState(req.ID)
	state.InputFile = req.InputFile
	state.LoadRaw = containsStep(plan, StepIDClean)
	for _, id := range plan {
		state.AddStep(NewStepState(id, stepName(id)))
	}

	ctx, cancel := context.WithTimeout(ctx, config.DefaultPipelineTimeout)
	defer cancel()

	state.Start()
	r.logger.InfoContext(ctx, "pipeline run started",
		slog.String("run_id", state.ID),
		slog.Any("steps", plan),
		slog.String("input", req.InputFile))

	for _, id := range plan {
		step := r.steps[id]
		ss := state.GetStep(id)

		if err := ctx.Err(); err != nil {
			runErr := NewStepError(id, "run aborted", err)
			ss.Fail(runErr)
			return r.fail(ctx, state, runErr)
		}

		ss.Start()
		r.logger.InfoContext(ctx, "step started",
			slog.String("run_id", state.ID),
			slog.String("step", id))

		stepCtx, stepCancel := context.WithTimeout(ctx, config.DefaultStepTimeout)
		start := time.Now()
		err := step.Execute(stepCtx, state)
		stepCancel()
		duration := time.Since(start)

		if err != nil {
			runErr := WrapStepError(err, id, "execution failed")
			ss.Fail(runErr)
			r.metrics.RecordStep(ctx, id, duration, false)
			return r.fail(ctx, state, runErr)
		}

		ss.Complete()
		r.metrics.RecordStep(ctx, id, duration, true)
		r.metrics.RecordRows(ctx, id, state.Table.NRows())
		r.logger.InfoContext(ctx, "step completed",
			slog.String("run_id", state.ID),
			slog.String("step", id),
			slog.Duration("duration", duration))
	}

	state.Complete()
	r.metrics.RecordRun(ctx, true)
	r.logger.InfoContext(ctx, "pipeline run completed",
		slog.String("run_id", state.ID),
		slog.Duration("duration", state.Duration()),
		slog.Int("rows", state.Table.NRows()))
	return state.Result(), nil
}

// fail finalizes a failed run and returns its snapshot with the error.
func (r *Runner) fail(ctx context.Context, state *State, err error) (*Result, error) {
	state.Fail(err)
	r.metrics.RecordRun(ctx, false)
	r.logger.ErrorContext(ctx, "pipeline run failed",
		slog.String("run_id", state.ID),
		slog.String("step", FailingStep(err)),
		slog.Duration("duration", state.Duration()),
		slog.String("error", err.Error()))
	return state.Result(), err
}

// stepName maps a step ID to its display name.
func stepName(id string) string {
	switch id {
	case StepIDLoad:
		return StepNameLoad
	case StepIDClean:
		return StepNameClean
	case StepIDEDA:
		return StepNameEDA
	case StepIDModel:
		return StepNameModel
	case StepIDReport:
		return StepNameReport
	}
	return id
}
