package regress

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "wellpulse/internal/errors"
)

// linearDataset builds a noise-free y = 3*x0 + 7 with an irrelevant second
// feature so split quality is easy to assert.
func linearDataset(n int) (x [][]float64, y []float64) {
	x = make([][]float64, n)
	y = make([]float64, n)
	for i := 0; i < n; i++ {
		x0 := float64(i % 100)
		x1 := float64((i * 7) % 13)
		x[i] = []float64{x0, x1}
		y[i] = 3*x0 + 7
	}
	return x, y
}

func TestForestLearnsLinearTarget(t *testing.T) {
	x, y := linearDataset(200)
	xTrain, xTest, yTrain, yTest := TrainTestSplit(x, y, 0.2, 42)

	forest := NewForest(Options{Trees: 30, Seed: 42, Bootstrap: true})
	require.NoError(t, forest.Fit(context.Background(), xTrain, yTrain))

	r2 := R2(yTest, forest.Predict(xTest))
	assert.Greater(t, r2, 0.9, "forest should capture a clean linear signal")
}

func TestForestIsReproducible(t *testing.T) {
	x, y := linearDataset(120)

	a := NewForest(Options{Trees: 20, Seed: 7, Bootstrap: true})
	b := NewForest(Options{Trees: 20, Seed: 7, Bootstrap: true})
	require.NoError(t, a.Fit(context.Background(), x, y))
	require.NoError(t, b.Fit(context.Background(), x, y))

	probe := [][]float64{{12.5, 3}, {55, 9}, {99, 0}}
	assert.Equal(t, a.Predict(probe), b.Predict(probe))
	assert.Equal(t, a.Importances(), b.Importances())
}

func TestForestImportances(t *testing.T) {
	x, y := linearDataset(200)

	forest := NewForest(Options{Trees: 20, Seed: 42, Bootstrap: true})
	require.NoError(t, forest.Fit(context.Background(), x, y))

	imp := forest.Importances()
	require.Len(t, imp, 2)

	sum := imp[0] + imp[1]
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Greater(t, imp[0], 0.8, "the generating feature should dominate")
}

func TestForestFitValidation(t *testing.T) {
	tests := []struct {
		name string
		x    [][]float64
		y    []float64
	}{
		{name: "empty matrix", x: nil, y: nil},
		{name: "length mismatch", x: [][]float64{{1}, {2}}, y: []float64{1}},
		{name: "ragged rows", x: [][]float64{{1, 2}, {3}}, y: []float64{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forest := NewForest(Options{Trees: 2, Seed: 1})
			err := forest.Fit(context.Background(), tt.x, tt.y)
			require.Error(t, err)
			assert.True(t, apierrors.IsFitError(err))
		})
	}
}

func TestForestFitCanceledContext(t *testing.T) {
	x, y := linearDataset(50)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	forest := NewForest(Options{Trees: 4, Seed: 1})
	err := forest.Fit(ctx, x, y)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolveMaxFeatures(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		p       int
		want    int
		wantErr bool
	}{
		{name: "default all", spec: "", p: 9, want: 0},
		{name: "explicit all", spec: "all", p: 9, want: 0},
		{name: "sqrt", spec: "sqrt", p: 9, want: 3},
		{name: "sqrt floor one", spec: "sqrt", p: 2, want: 1},
		{name: "half fraction", spec: "0.5", p: 8, want: 4},
		{name: "small fraction floor one", spec: "0.1", p: 4, want: 1},
		{name: "full fraction", spec: "1", p: 6, want: 6},
		{name: "fraction above one", spec: "2", p: 6, wantErr: true},
		{name: "negative fraction", spec: "-0.5", p: 6, wantErr: true},
		{name: "not a number", spec: "abc", p: 6, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveMaxFeatures(tt.spec, tt.p)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTreePredictsConstantLeaf(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}, {4}}
	y := []float64{10, 10, 10, 10}

	forest := NewForest(Options{Trees: 3, Seed: 5})
	require.NoError(t, forest.Fit(context.Background(), x, y))

	assert.InDelta(t, 10.0, forest.PredictOne([]float64{2.5}), 1e-9)

	imp := forest.Importances()
	assert.Equal(t, []float64{0}, imp, "constant target admits no useful split")
}
