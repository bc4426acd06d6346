package regress

import (
	"math"

	"wellpulse/pkg/contracts/domain"
)

// MSE is the mean squared error.
func MSE(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	sum := 0.0
	for i := range yTrue {
		d := yPred[i] - yTrue[i]
		sum += d * d
	}
	return sum / float64(len(yTrue))
}

// RMSE is the root mean squared error.
func RMSE(yTrue, yPred []float64) float64 {
	return math.Sqrt(MSE(yTrue, yPred))
}

// MAE is the mean absolute error.
func MAE(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	sum := 0.0
	for i := range yTrue {
		sum += math.Abs(yPred[i] - yTrue[i])
	}
	return sum / float64(len(yTrue))
}

// R2 is the coefficient of determination. A constant target yields 0.
func R2(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range yTrue {
		mean += v
	}
	mean /= float64(len(yTrue))

	ssTot := 0.0
	ssRes := 0.0
	for i := range yTrue {
		d := yTrue[i] - mean
		ssTot += d * d
		r := yTrue[i] - yPred[i]
		ssRes += r * r
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// Evaluate bundles the held-out error metrics.
func Evaluate(yTrue, yPred []float64) domain.RegressionMetrics {
	return domain.RegressionMetrics{
		MSE:  MSE(yTrue, yPred),
		RMSE: RMSE(yTrue, yPred),
		MAE:  MAE(yTrue, yPred),
		R2:   R2(yTrue, yPred),
	}
}
