package model

import (
	"StockCast/internal/domain/models"
	"StockCast/internal/services/dataset"
)

// Trainer fits the direction classifier and the price regressor for one
// horizon's dataset and evaluates both on the held-out partition. Each call
// owns its own model and scaler state; nothing is shared across horizons.
type Trainer struct{}

func NewTrainer() *Trainer { return &Trainer{} }

// Train fits, evaluates and produces the live prediction for one horizon.
func (t *Trainer) Train(ds *dataset.Dataset) (*models.HorizonResult, error) {
	clf := NewLogistic()
	weights := InverseFrequencyWeights(ds.FitDir)
	if err := clf.Fit(ds.FitX, ds.FitDir, weights); err != nil {
		return nil, &models.ModelFitError{Stage: "classifier", Err: err}
	}

	predDir := make([]int, len(ds.EvalX))
	for i, row := range ds.EvalX {
		predDir[i] = clf.Predict(row)
	}

	reg := NewRidge()
	if err := reg.Fit(ds.FitX, ds.FitTarget); err != nil {
		return nil, &models.ModelFitError{Stage: "regressor", Err: err}
	}
	predTgt := make([]float64, len(ds.EvalX))
	for i, row := range ds.EvalX {
		predTgt[i] = reg.Predict(row)
	}
	mse, mae, r2 := RegressionMetrics(ds.EvalTarget, predTgt)

	res := &models.HorizonResult{
		Classification: models.ClassificationResult{
			Accuracy: Accuracy(ds.EvalDir, predDir),
			Report:   ClassificationReport(ds.EvalDir, predDir),
		},
		Regression: models.RegressionResult{
			MSE: mse,
			MAE: mae,
			R2:  r2,
		},
		FitRows:  len(ds.FitX),
		EvalRows: len(ds.EvalX),
	}

	// live row: the latest feature-complete row that has no label yet;
	// fall back to the newest eval row when the series ends labeled
	live := ds.Live
	if live == nil && len(ds.EvalX) > 0 {
		live = ds.EvalX[len(ds.EvalX)-1]
	}
	res.Classification.TodayPrediction = clf.Predict(live)
	res.Regression.Prediction = reg.Predict(live)

	return res, nil
}
