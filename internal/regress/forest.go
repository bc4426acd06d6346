package regress

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"wellpulse/internal/config"
	apierrors "wellpulse/internal/errors"
)

// Options configures a Forest. Zero values select the defaults.
type Options struct {
	Trees           int
	MaxDepth        int
	MinSamplesSplit int
	// MaxFeatures is "", "all", "sqrt", or a fraction in (0,1] of the
	// feature count tried at each split.
	MaxFeatures string
	Seed        int64
	Bootstrap   bool
}

func (o Options) withDefaults() Options {
	if o.Trees <= 0 {
		o.Trees = config.DefaultForestTrees
	}
	if o.MinSamplesSplit < 2 {
		o.MinSamplesSplit = config.DefaultMinSplit
	}
	return o
}

// Forest is a random forest of CART regression trees. Trees fit in
// parallel; each tree derives its rand source from Seed plus its index, so
// a fitted forest is reproducible regardless of goroutine scheduling.
type Forest struct {
	opts        Options
	trees       []*regressionTree
	importances []float64
	features    int
}

// NewForest creates an unfitted forest.
func NewForest(opts Options) *Forest {
	return &Forest{opts: opts.withDefaults()}
}

// Fit trains the forest on x (row major) and y.
func (f *Forest) Fit(ctx context.Context, x [][]float64, y []float64) error {
	n := len(x)
	if n == 0 {
		return apierrors.NewFitError("training matrix is empty", nil)
	}
	if len(y) != n {
		return apierrors.NewFitError(
			fmt.Sprintf("feature rows (%d) and target length (%d) differ", n, len(y)), nil)
	}
	p := len(x[0])
	for i := range x {
		if len(x[i]) != p {
			return apierrors.NewFitError(fmt.Sprintf("row %d has %d features, want %d", i, len(x[i]), p), nil)
		}
	}

	maxFeatures, err := resolveMaxFeatures(f.opts.MaxFeatures, p)
	if err != nil {
		return err
	}
	cfg := treeConfig{
		maxDepth:        f.opts.MaxDepth,
		minSamplesSplit: f.opts.MinSamplesSplit,
		maxFeatures:     maxFeatures,
	}

	trees := make([]*regressionTree, f.opts.Trees)
	perTree := make([][]float64, f.opts.Trees)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range trees {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			rnd := rand.New(rand.NewSource(f.opts.Seed + int64(i)))
			samples := make([]int, n)
			for j := range samples {
				if f.opts.Bootstrap {
					samples[j] = rnd.Intn(n)
				} else {
					samples[j] = j
				}
			}

			imp := make([]float64, p)
			tree := &regressionTree{cfg: cfg}
			tree.fit(x, y, samples, rnd, imp)

			trees[i] = tree
			perTree[i] = imp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("forest fit: %w", err)
	}

	f.trees = trees
	f.features = p
	f.importances = aggregateImportances(perTree, p)
	return nil
}

// Predict returns the mean tree prediction for every row.
func (f *Forest) Predict(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = f.PredictOne(row)
	}
	return out
}

// PredictOne returns the mean tree prediction for a single row.
func (f *Forest) PredictOne(row []float64) float64 {
	sum := 0.0
	for _, tree := range f.trees {
		sum += tree.predict(row)
	}
	return sum / float64(len(f.trees))
}

// Importances returns per-feature importance scores normalized to sum to
// 1.0. All zeros means no split ever reduced variance.
func (f *Forest) Importances() []float64 {
	out := make([]float64, len(f.importances))
	copy(out, f.importances)
	return out
}

func aggregateImportances(perTree [][]float64, p int) []float64 {
	total := make([]float64, p)
	for _, imp := range perTree {
		for j, v := range imp {
			total[j] += v
		}
	}
	sum := 0.0
	for _, v := range total {
		sum += v
	}
	if sum > 0 {
		for j := range total {
			total[j] /= sum
		}
	}
	return total
}

// resolveMaxFeatures turns the textual policy into a feature count.
func resolveMaxFeatures(spec string, p int) (int, error) {
	switch spec {
	case "", "all":
		return 0, nil
	case "sqrt":
		k := int(math.Round(math.Sqrt(float64(p))))
		if k < 1 {
			k = 1
		}
		return k, nil
	}

	frac, err := strconv.ParseFloat(spec, 64)
	if err != nil || frac <= 0 || frac > 1 {
		return 0, apierrors.NewConfigError(fmt.Sprintf("invalid max_features %q", spec), err)
	}
	k := int(frac * float64(p))
	if k < 1 {
		k = 1
	}
	return k, nil
}
