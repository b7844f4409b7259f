package model

import (
	"math"
	"reflect"
	"testing"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/services/dataset"
	"StockCast/internal/services/indicator"
)

func risingDataset(t *testing.T, n int, h models.Horizon) *dataset.Dataset {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, n)
	for i := 0; i < n; i++ {
		price := float64(i + 1)
		candles[i] = models.Candle{
			Date:   base.AddDate(0, 0, i),
			Symbol: "TEST",
			Open:   price,
			High:   price + 0.5,
			Low:    price - 0.5,
			Close:  price,
			Volume: 1000 + float64(i),
		}
	}
	ds, err := dataset.Build(indicator.NewFrame(candles), h, dataset.DefaultOptions())
	if err != nil {
		t.Fatalf("dataset build failed: %v", err)
	}
	return ds
}

func TestLogisticSeparable(t *testing.T) {
	X := [][]float64{{-2}, {-1.5}, {-1}, {1}, {1.5}, {2}}
	y := []int{0, 0, 0, 1, 1, 1}

	clf := NewLogistic()
	if err := clf.Fit(X, y, InverseFrequencyWeights(y)); err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	for i, row := range X {
		if got := clf.Predict(row); got != y[i] {
			t.Fatalf("row %d predicted %d, want %d", i, got, y[i])
		}
	}
}

func TestLogisticDeterministic(t *testing.T) {
	X := [][]float64{{-1, 0.5}, {0, -0.5}, {1, 1}, {2, -1}}
	y := []int{0, 0, 1, 1}
	w := InverseFrequencyWeights(y)

	a := NewLogistic()
	b := NewLogistic()
	if err := a.Fit(X, y, w); err != nil {
		t.Fatalf("fit a: %v", err)
	}
	if err := b.Fit(X, y, w); err != nil {
		t.Fatalf("fit b: %v", err)
	}
	if !reflect.DeepEqual(a.Weights, b.Weights) || a.Bias != b.Bias {
		t.Fatalf("repeated fits diverged: %v/%v vs %v/%v", a.Weights, a.Bias, b.Weights, b.Bias)
	}
}

func TestInverseFrequencyWeights(t *testing.T) {
	w := InverseFrequencyWeights([]int{0, 0, 0, 1})
	// n/(k*count): 4/(2*3) and 4/(2*1)
	if math.Abs(w[0]-4.0/6.0) > 1e-12 {
		t.Fatalf("w[0] = %v", w[0])
	}
	if math.Abs(w[1]-2.0) > 1e-12 {
		t.Fatalf("w[1] = %v", w[1])
	}
}

func TestRidgeRecoversLine(t *testing.T) {
	X := [][]float64{{0}, {1}, {2}, {3}, {4}}
	y := []float64{1, 3, 5, 7, 9} // y = 2x + 1

	reg := NewRidge()
	if err := reg.Fit(X, y); err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	if math.Abs(reg.Weights[0]-2) > 1e-2 {
		t.Fatalf("slope %v, want ~2", reg.Weights[0])
	}
	if math.Abs(reg.Intercept-1) > 1e-2 {
		t.Fatalf("intercept %v, want ~1", reg.Intercept)
	}
	if got := reg.Predict([]float64{5}); math.Abs(got-11) > 0.1 {
		t.Fatalf("predict(5) = %v, want ~11", got)
	}
}

func TestRidgeSingularWithoutRows(t *testing.T) {
	reg := NewRidge()
	if err := reg.Fit(nil, nil); err == nil {
		t.Fatalf("expected error on empty input")
	}
}

func TestAccuracy(t *testing.T) {
	got := Accuracy([]int{1, 0, 1, 1}, []int{1, 1, 1, 0})
	if got != 0.5 {
		t.Fatalf("accuracy = %v, want 0.5", got)
	}
}

func TestClassificationReport(t *testing.T) {
	actual := []int{1, 1, 0, 0}
	predicted := []int{1, 0, 0, 0}
	report := ClassificationReport(actual, predicted)

	one := report["1"]
	if one.Precision != 1 {
		t.Fatalf("class 1 precision %v, want 1", one.Precision)
	}
	if one.Recall != 0.5 {
		t.Fatalf("class 1 recall %v, want 0.5", one.Recall)
	}
	if one.Support != 2 {
		t.Fatalf("class 1 support %v, want 2", one.Support)
	}
	zero := report["0"]
	if zero.Recall != 1 {
		t.Fatalf("class 0 recall %v, want 1", zero.Recall)
	}
}

func TestRegressionMetricsPerfectFit(t *testing.T) {
	mse, mae, r2 := RegressionMetrics([]float64{1, 2, 3}, []float64{1, 2, 3})
	if mse != 0 || mae != 0 || r2 != 1 {
		t.Fatalf("perfect fit gave mse=%v mae=%v r2=%v", mse, mae, r2)
	}
}

func TestTrainerMonotonicSeries(t *testing.T) {
	ds := risingDataset(t, 40, models.HorizonDay)
	res, err := NewTrainer().Train(ds)
	if err != nil {
		t.Fatalf("train failed: %v", err)
	}

	// every label in a strictly rising series is up
	if res.Classification.Accuracy != 1 {
		t.Fatalf("accuracy %v, want 1", res.Classification.Accuracy)
	}
	if res.Classification.TodayPrediction != 1 {
		t.Fatalf("today prediction %d, want 1", res.Classification.TodayPrediction)
	}
	// next close is linear in the features, so ridge tracks it closely
	if res.Regression.R2 < 0.9 {
		t.Fatalf("r2 %v, want >= 0.9", res.Regression.R2)
	}
	if res.FitRows == 0 || res.EvalRows == 0 {
		t.Fatalf("expected non-empty partitions: %d/%d", res.FitRows, res.EvalRows)
	}
}

func TestTrainerFallsBackToNewestEvalRow(t *testing.T) {
	ds := risingDataset(t, 40, models.HorizonDay)
	ds.Live = nil

	res, err := NewTrainer().Train(ds)
	if err != nil {
		t.Fatalf("train failed: %v", err)
	}
	if res.Classification.TodayPrediction != 1 {
		t.Fatalf("today prediction %d, want 1 on a rising series", res.Classification.TodayPrediction)
	}
	if res.Regression.Prediction == 0 {
		t.Fatalf("expected a regression prediction from the newest eval row")
	}
}

func TestTrainerDeterministic(t *testing.T) {
	a, err := NewTrainer().Train(risingDataset(t, 40, models.HorizonWeek))
	if err != nil {
		t.Fatalf("first train: %v", err)
	}
	b, err := NewTrainer().Train(risingDataset(t, 40, models.HorizonWeek))
	if err != nil {
		t.Fatalf("second train: %v", err)
	}
	if a.Classification.Accuracy != b.Classification.Accuracy {
		t.Fatalf("accuracy differs: %v vs %v", a.Classification.Accuracy, b.Classification.Accuracy)
	}
	if a.Regression.Prediction != b.Regression.Prediction {
		t.Fatalf("prediction differs: %v vs %v", a.Regression.Prediction, b.Regression.Prediction)
	}
}
