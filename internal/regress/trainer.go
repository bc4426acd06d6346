package regress

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"wellpulse/internal/config"
	apierrors "wellpulse/internal/errors"
	"wellpulse/internal/features"
	"wellpulse/pkg/contracts/domain"
)

// Trainer fits a production forecast model from a feature matrix and
// evaluates it on a held-out split.
type Trainer struct {
	logger *slog.Logger
	cfg    config.ModelConfig
}

// NewTrainer creates a trainer with the given model configuration.
func NewTrainer(logger *slog.Logger, cfg config.ModelConfig) *Trainer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Trees <= 0 {
		cfg.Trees = config.DefaultForestTrees
	}
	if cfg.TestRatio <= 0 || cfg.TestRatio >= 1 {
		cfg.TestRatio = config.DefaultTestRatio
	}
	if cfg.MinSamplesSplit < 2 {
		cfg.MinSamplesSplit = config.DefaultMinSplit
	}
	if cfg.MinRows <= 0 {
		cfg.MinRows = config.DefaultMinTrainRows
	}
	return &Trainer{
		logger: logger.With(slog.String("component", "trainer")),
		cfg:    cfg,
	}
}

// Train splits the matrix, fits the forest and reports held-out metrics
// with normalized feature importances.
func (t *Trainer) Train(ctx context.Context, m *features.Matrix) (*domain.ModelSummary, error) {
	rows := m.Rows()
	if rows < t.cfg.MinRows {
		return nil, apierrors.NewFitError(
			fmt.Sprintf("need at least %d rows to train, got %d", t.cfg.MinRows, rows), nil)
	}

	xTrain, xTest, yTrain, yTest := TrainTestSplit(m.X, m.Y, t.cfg.TestRatio, t.cfg.Seed)
	if len(xTest) == 0 {
		return nil, apierrors.NewFitError("test split is empty", nil)
	}
	if len(xTrain) == 0 {
		return nil, apierrors.NewFitError("train split is empty", nil)
	}

	t.logger.InfoContext(ctx, "training forest",
		slog.Int("train_rows", len(xTrain)),
		slog.Int("test_rows", len(xTest)),
		slog.Int("features", m.Features()),
		slog.Int("trees", t.cfg.Trees),
		slog.Int64("seed", t.cfg.Seed),
	)

	forest := NewForest(Options{
		Trees:           t.cfg.Trees,
		MaxDepth:        t.cfg.MaxDepth,
		MinSamplesSplit: t.cfg.MinSamplesSplit,
		MaxFeatures:     t.cfg.MaxFeatures,
		Seed:            t.cfg.Seed,
		Bootstrap:       true,
	})
	if err := forest.Fit(ctx, xTrain, yTrain); err != nil {
		return nil, err
	}

	yPred := forest.Predict(xTest)
	metrics := Evaluate(yTest, yPred)

	importances := rankImportances(m.Names, forest.Importances())

	predictions := make([]domain.PredictionPair, len(yTest))
	for i := range yTest {
		predictions[i] = domain.PredictionPair{Actual: yTest[i], Predicted: yPred[i]}
	}

	summary := &domain.ModelSummary{
		Target:      m.Target,
		Features:    m.Names,
		TrainRows:   len(xTrain),
		TestRows:    len(xTest),
		Trees:       t.cfg.Trees,
		Seed:        t.cfg.Seed,
		Metrics:     metrics,
		Importances: importances,
		Predictions: predictions,
	}

	t.logger.InfoContext(ctx, "model evaluated",
		slog.Float64("rmse", metrics.RMSE),
		slog.Float64("mae", metrics.MAE),
		slog.Float64("r2", metrics.R2),
	)
	return summary, nil
}

// rankImportances pairs features with their scores, highest first. Ties
// fall back to feature order so the ranking is stable.
func rankImportances(names []string, scores []float64) []domain.FeatureImportance {
	out := make([]domain.FeatureImportance, len(names))
	for i, name := range names {
		out[i] = domain.FeatureImportance{Feature: name, Importance: scores[i]}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Importance > out[b].Importance
	})
	return out
}
