package dataset

import (
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/services/indicator"
)

// Options controls dataset construction.
type Options struct {
	SplitRatio float64 // chronological fit share, (0,1)
	MinRows    int     // statistical floor after NaN/label filtering
}

// DefaultOptions mirrors the historical pipeline: 80/20 split, 10-row floor.
func DefaultOptions() Options {
	return Options{SplitRatio: 0.8, MinRows: 10}
}

// Dataset is one horizon's feature/label table after filtering, scaling and
// the chronological split. All feature matrices are already standardized by
// the scaler fit on the fit partition.
type Dataset struct {
	Horizon      models.Horizon
	FeatureNames []string

	FitX      [][]float64
	FitDir    []int
	FitTarget []float64
	FitDates  []time.Time

	EvalX      [][]float64
	EvalDir    []int
	EvalTarget []float64
	EvalDates  []time.Time

	// Live is the most recent feature-complete row without a label,
	// scaled with the fitted scaler. Nil when no such row exists.
	Live     []float64
	LiveDate time.Time

	Scaler *StandardScaler
}

// Build merges frame features with one horizon's labels, drops rows with
// any non-finite feature or undefined label, splits chronologically and
// standardizes. Rows arrive date-ascending from the frame, so the split
// boundary is strictly temporal: max(fit dates) < min(eval dates).
func Build(f *indicator.Frame, h models.Horizon, opts Options) (*Dataset, error) {
	if opts.SplitRatio <= 0 || opts.SplitRatio >= 1 {
		opts.SplitRatio = 0.8
	}
	if opts.MinRows < 2 {
		opts.MinRows = 2
	}

	closes := f.Col(indicator.ColClose)
	if len(closes) == 0 {
		return nil, &models.TargetColumnMissingError{Horizon: h}
	}
	labels := MakeLabels(closes, h.Offset())
	if labels.DefinedCount() == 0 {
		return nil, &models.InsufficientDataError{Horizon: h, Rows: 0, Floor: opts.MinRows}
	}

	columns := f.Columns()
	n := f.Len()

	var (
		rows    [][]float64
		dirs    []int
		targets []float64
		dates   []time.Time
	)
	for i := 0; i < n; i++ {
		if !labels.Defined[i] || !f.RowComplete(i, columns) {
			continue
		}
		rows = append(rows, f.Row(i, columns))
		dirs = append(dirs, labels.Direction[i])
		targets = append(targets, labels.Target[i])
		dates = append(dates, f.Dates[i])
	}

	if len(rows) < opts.MinRows {
		return nil, &models.InsufficientDataError{Horizon: h, Rows: len(rows), Floor: opts.MinRows}
	}
	split := int(float64(len(rows)) * opts.SplitRatio)
	if split == 0 || split == len(rows) {
		return nil, &models.InsufficientDataError{Horizon: h, Rows: len(rows), Floor: opts.MinRows}
	}

	scaler := &StandardScaler{}
	scaler.Fit(rows[:split])

	ds := &Dataset{
		Horizon:      h,
		FeatureNames: columns,
		FitX:         scaler.TransformAll(rows[:split]),
		FitDir:       dirs[:split],
		FitTarget:    targets[:split],
		FitDates:     dates[:split],
		EvalX:        scaler.TransformAll(rows[split:]),
		EvalDir:      dirs[split:],
		EvalTarget:   targets[split:],
		EvalDates:    dates[split:],
		Scaler:       scaler,
	}

	// latest unlabeled feature-complete row becomes the live prediction input
	for i := n - 1; i >= 0; i-- {
		if labels.Defined[i] {
			break
		}
		if f.RowComplete(i, columns) {
			ds.Live = scaler.Transform(f.Row(i, columns))
			ds.LiveDate = f.Dates[i]
			break
		}
	}

	return ds, nil
}
