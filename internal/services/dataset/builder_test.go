package dataset

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/services/indicator"
)

func linearFrame(n int) *indicator.Frame {
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
	return indicator.NewFrame(candles)
}

func TestMakeLabelsAlignment(t *testing.T) {
	closes := []float64{1, 2, 3, 4}
	l := MakeLabels(closes, 1)

	if l.DefinedCount() != 3 {
		t.Fatalf("expected 3 defined labels, got %d", l.DefinedCount())
	}
	if l.Defined[3] {
		t.Fatalf("trailing row must be undefined")
	}
	if l.Target[0] != 2 || l.Target[2] != 4 {
		t.Fatalf("unexpected targets %v", l.Target)
	}
	for i := 0; i < 3; i++ {
		if l.Direction[i] != 1 {
			t.Fatalf("rising series must label direction 1 at %d", i)
		}
	}
}

func TestMakeLabelsFlatSeriesIsDown(t *testing.T) {
	l := MakeLabels([]float64{5, 5, 5}, 1)
	// equality is not a rise
	if l.Direction[0] != 0 || l.Direction[1] != 0 {
		t.Fatalf("flat series must label direction 0, got %v", l.Direction)
	}
}

func TestBuildChronologicalSplit(t *testing.T) {
	f := linearFrame(30)
	ds, err := Build(f, models.HorizonDay, DefaultOptions())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	// 29 labeled rows, 80% split -> 23 fit / 6 eval
	if len(ds.FitX) != 23 || len(ds.EvalX) != 6 {
		t.Fatalf("unexpected split %d/%d", len(ds.FitX), len(ds.EvalX))
	}
	lastFit := ds.FitDates[len(ds.FitDates)-1]
	firstEval := ds.EvalDates[0]
	if !lastFit.Before(firstEval) {
		t.Fatalf("split not chronological: fit ends %v, eval starts %v", lastFit, firstEval)
	}
}

func TestBuildFeatureNamesAreRawOHLCV(t *testing.T) {
	ds, err := Build(linearFrame(20), models.HorizonDay, DefaultOptions())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	want := []string{"Open", "High", "Low", "Close", "Volume"}
	if !reflect.DeepEqual(ds.FeatureNames, want) {
		t.Fatalf("unexpected features %v", ds.FeatureNames)
	}
}

func TestBuildInsufficientRows(t *testing.T) {
	_, err := Build(linearFrame(5), models.HorizonDay, DefaultOptions())
	var insufficient *models.InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
	if insufficient.Horizon != models.HorizonDay {
		t.Fatalf("error carries wrong horizon %v", insufficient.Horizon)
	}
}

func TestBuildEmptyFrame(t *testing.T) {
	_, err := Build(linearFrame(0), models.HorizonDay, DefaultOptions())
	var missing *models.TargetColumnMissingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected TargetColumnMissingError, got %v", err)
	}
}

func TestBuildHorizonStarvesIndependently(t *testing.T) {
	f := linearFrame(25)
	if _, err := Build(f, models.HorizonDay, DefaultOptions()); err != nil {
		t.Fatalf("day horizon should build: %v", err)
	}
	// 25-21=4 labeled rows is below the floor
	if _, err := Build(f, models.HorizonMonth, DefaultOptions()); err == nil {
		t.Fatalf("month horizon should starve on 25 rows")
	}
}

func TestScalerFitPartitionOnly(t *testing.T) {
	ds, err := Build(linearFrame(40), models.HorizonDay, DefaultOptions())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	// fit partition is standardized: zero mean, unit variance per column
	for j := range ds.FeatureNames {
		var sum, ss float64
		for _, row := range ds.FitX {
			sum += row[j]
		}
		mean := sum / float64(len(ds.FitX))
		for _, row := range ds.FitX {
			d := row[j] - mean
			ss += d * d
		}
		variance := ss / float64(len(ds.FitX))
		if math.Abs(mean) > 1e-9 {
			t.Fatalf("fit column %d mean %v, want ~0", j, mean)
		}
		if math.Abs(variance-1) > 1e-6 {
			t.Fatalf("fit column %d variance %v, want ~1", j, variance)
		}
	}

	// eval rows come later in a rising series, so the same scaler maps them
	// strictly above the fit mean; a refit would recentre them near zero
	var evalMean float64
	closeIdx := 3
	for _, row := range ds.EvalX {
		evalMean += row[closeIdx]
	}
	evalMean /= float64(len(ds.EvalX))
	if evalMean <= 1 {
		t.Fatalf("eval close mean %v, want > 1 under fit-partition scaling", evalMean)
	}
}

func TestScalerConstantColumnPassesThrough(t *testing.T) {
	s := &StandardScaler{}
	s.Fit([][]float64{{7, 1}, {7, 2}, {7, 3}})
	out := s.Transform([]float64{7, 2})
	if out[0] != 0 {
		t.Fatalf("constant column should scale to 0, got %v", out[0])
	}
	if math.Abs(out[1]) > 1e-9 {
		t.Fatalf("centered value should be 0, got %v", out[1])
	}
}

func TestBuildLiveRow(t *testing.T) {
	f := linearFrame(30)
	ds, err := Build(f, models.HorizonDay, DefaultOptions())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if ds.Live == nil {
		t.Fatalf("expected a live row")
	}
	wantDate := f.Dates[f.Len()-1]
	if !ds.LiveDate.Equal(wantDate) {
		t.Fatalf("live date %v, want %v", ds.LiveDate, wantDate)
	}
	if len(ds.Live) != len(ds.FeatureNames) {
		t.Fatalf("live row width %d, want %d", len(ds.Live), len(ds.FeatureNames))
	}
}

func TestBuildLiveRowFallsBackThroughIncompleteTail(t *testing.T) {
	f := linearFrame(30)
	aux := make([]float64, f.Len())
	for i := range aux {
		aux[i] = float64(i)
	}
	aux[len(aux)-1] = math.NaN()
	f.SetCol("Momentum", aux)

	// week horizon leaves a 5-row unlabeled tail; the newest row is not
	// feature-complete, so the live row walks back one day
	ds, err := Build(f, models.HorizonWeek, DefaultOptions())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if ds.Live == nil {
		t.Fatalf("expected a live row from the older unlabeled tail")
	}
	wantDate := f.Dates[f.Len()-2]
	if !ds.LiveDate.Equal(wantDate) {
		t.Fatalf("live date %v, want %v", ds.LiveDate, wantDate)
	}

	// day horizon's only unlabeled row is the incomplete one, so no live
	// row is produced and the trainer uses the newest eval row instead
	ds, err = Build(f, models.HorizonDay, DefaultOptions())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if ds.Live != nil {
		t.Fatalf("expected no live row when the unlabeled tail is incomplete")
	}
}
