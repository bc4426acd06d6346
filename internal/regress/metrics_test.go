package regress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricsPerfectPrediction(t *testing.T) {
	y := []float64{1, 2, 3, 4}

	assert.Equal(t, 0.0, MSE(y, y))
	assert.Equal(t, 0.0, RMSE(y, y))
	assert.Equal(t, 0.0, MAE(y, y))
	assert.Equal(t, 1.0, R2(y, y))
}

func TestMetricsConstantOffset(t *testing.T) {
	yTrue := []float64{1, 2, 3, 4}
	yPred := []float64{2, 3, 4, 5}

	assert.InDelta(t, 1.0, MSE(yTrue, yPred), 1e-9)
	assert.InDelta(t, 1.0, RMSE(yTrue, yPred), 1e-9)
	assert.InDelta(t, 1.0, MAE(yTrue, yPred), 1e-9)
	// ssRes = 4, ssTot = 5
	assert.InDelta(t, 0.2, R2(yTrue, yPred), 1e-9)
}

func TestR2ConstantTarget(t *testing.T) {
	yTrue := []float64{5, 5, 5}
	yPred := []float64{4, 5, 6}

	assert.Equal(t, 0.0, R2(yTrue, yPred))
}

func TestMetricsEmptyInput(t *testing.T) {
	assert.Equal(t, 0.0, MSE(nil, nil))
	assert.Equal(t, 0.0, MAE(nil, nil))
	assert.Equal(t, 0.0, R2(nil, nil))
}

func TestEvaluateBundlesMetrics(t *testing.T) {
	yTrue := []float64{10, 20, 30}
	yPred := []float64{12, 18, 33}

	m := Evaluate(yTrue, yPred)
	assert.InDelta(t, MSE(yTrue, yPred), m.MSE, 1e-12)
	assert.InDelta(t, RMSE(yTrue, yPred), m.RMSE, 1e-12)
	assert.InDelta(t, MAE(yTrue, yPred), m.MAE, 1e-12)
	assert.InDelta(t, R2(yTrue, yPred), m.R2, 1e-12)
}
