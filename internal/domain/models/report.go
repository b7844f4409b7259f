package models

import "time"

// ClassMetrics mirrors one row of a per-class classification report.
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1_score"`
	Support   int     `json:"support"`
}

// ClassificationResult is the direction-model outcome for one horizon.
type ClassificationResult struct {
	Accuracy        float64                 `json:"accuracy"`
	TodayPrediction int                     `json:"today_prediction"` // 0 = down/flat, 1 = up
	Report          map[string]ClassMetrics `json:"classification_report"`
}

// RegressionResult is the price-model outcome for one horizon.
type RegressionResult struct {
	MSE        float64 `json:"mse"`
	MAE        float64 `json:"mae"`
	R2         float64 `json:"r2"`
	Prediction float64 `json:"prediction"`
}

// HorizonResult bundles both model outcomes for one horizon.
type HorizonResult struct {
	Classification ClassificationResult `json:"classification"`
	Regression     RegressionResult     `json:"regression"`
	FitRows        int                  `json:"fit_rows"`
	EvalRows       int                  `json:"eval_rows"`
}

// PredictionReport is the aggregated result of a prediction run. Horizons
// that failed are absent from Horizons and explained in Errors; horizons
// cancelled by the caller's deadline are listed in Incomplete. The report is
// built fresh per request and never persisted by the pipeline itself.
type PredictionReport struct {
	Symbol      string                    `json:"symbol"`
	GeneratedAt time.Time                 `json:"generated_at"`
	From        time.Time                 `json:"from"`
	To          time.Time                 `json:"to"`
	Rows        int                       `json:"rows"`
	Horizons    map[string]*HorizonResult `json:"horizons"`
	Errors      map[string]string         `json:"errors,omitempty"`
	Incomplete  []string                  `json:"incomplete,omitempty"`
}
