package domain

// RegressionMetrics holds the held-out evaluation of a fitted regressor.
type RegressionMetrics struct {
	MSE  float64 `json:"mse"`
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	R2   float64 `json:"r2"`
}

// FeatureImportance scores one predictor's contribution to the model.
// Importances across a model sum to approximately 1.0.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// PredictionPair is one held-out observation with its model prediction.
type PredictionPair struct {
	Actual    float64 `json:"actual"`
	Predicted float64 `json:"predicted"`
}

// ModelSummary is the portable result of a training run, consumed by the
// reporter and exposed through the artifacts API.
type ModelSummary struct {
	Target       string              `json:"target"`
	Features     []string            `json:"features"`
	TrainRows    int                 `json:"train_rows"`
	TestRows     int                 `json:"test_rows"`
	Trees        int                 `json:"trees"`
	Seed         int64               `json:"seed"`
	Metrics      RegressionMetrics   `json:"metrics"`
	Importances  []FeatureImportance `json:"importances"`
	Predictions  []PredictionPair    `json:"predictions,omitempty"`
}
