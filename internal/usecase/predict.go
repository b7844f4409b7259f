package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	"StockCast/internal/services/dataset"
	"StockCast/internal/services/indicator"
	"StockCast/internal/services/model"
	applogger "StockCast/pkg/logger"
)

// PredictUseCase runs the full prediction pipeline: fetch history, compute
// indicators, then train and evaluate the per-horizon models concurrently.
// Horizons are independent failure domains; one horizon's error never
// aborts its siblings. The input candle series is read-only and shared
// across horizon goroutines; every horizon owns its own dataset, scaler and
// models.
type PredictUseCase struct {
	source  domrepo.CandleSource
	metrics domrepo.Metrics
	logger  *applogger.Logger

	lookbackYears int
	timeout       time.Duration
	opts          dataset.Options
}

// PredictOption configures PredictUseCase.
type PredictOption func(*PredictUseCase)

// WithLookbackYears sets the history window fetched per request.
func WithLookbackYears(years int) PredictOption {
	return func(uc *PredictUseCase) {
		if years > 0 {
			uc.lookbackYears = years
		}
	}
}

// WithTrainingTimeout caps the whole per-request training stage.
func WithTrainingTimeout(d time.Duration) PredictOption {
	return func(uc *PredictUseCase) {
		if d > 0 {
			uc.timeout = d
		}
	}
}

// WithDatasetOptions overrides split ratio and row floor.
func WithDatasetOptions(opts dataset.Options) PredictOption {
	return func(uc *PredictUseCase) { uc.opts = opts }
}

func NewPredictUseCase(source domrepo.CandleSource, metrics domrepo.Metrics, logger *applogger.Logger, opts ...PredictOption) *PredictUseCase {
	uc := &PredictUseCase{
		source:        source,
		metrics:       metrics,
		logger:        logger,
		lookbackYears: 5,
		timeout:       30 * time.Second,
		opts:          dataset.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// GetPredictions builds a fresh PredictionReport for symbol. It returns a
// hard error only when the price source fails or no horizon succeeds; a
// partial report carries per-horizon reasons in Errors and deadline-starved
// horizons in Incomplete.
func (uc *PredictUseCase) GetPredictions(ctx context.Context, symbol string, icfg models.IndicatorConfig) (*models.PredictionReport, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if err := icfg.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	to := time.Now().UTC()
	from := to.AddDate(-uc.lookbackYears, 0, 0)
	candles, err := uc.source.GetDailyCandles(ctx, symbol, from, to)
	if err != nil {
		uc.metrics.RecordError("provider")
		return nil, err
	}
	candles = models.SortAndDedupeCandles(candles)
	if len(candles) == 0 {
		return nil, models.ErrNoData
	}
	uc.metrics.RecordLastClose(symbol, candles[len(candles)-1].Close)

	frame := indicator.NewFrame(candles)
	indicator.NewEngine(icfg).Apply(frame)

	report := &models.PredictionReport{
		Symbol:      symbol,
		GeneratedAt: to,
		From:        candles[0].Date,
		To:          candles[len(candles)-1].Date,
		Rows:        len(candles),
		Horizons:    make(map[string]*models.HorizonResult),
		Errors:      make(map[string]string),
	}

	type item struct {
		horizon models.Horizon
		result  *models.HorizonResult
		err     error
	}
	horizons := models.AllHorizons()
	ch := make(chan item, len(horizons))
	var wg sync.WaitGroup
	for _, h := range horizons {
		wg.Add(1)
		go func(h models.Horizon) {
			defer wg.Done()
			start := time.Now()
			res, err := uc.trainHorizon(frame, h)
			uc.metrics.RecordLatency("train_"+h.Name(), time.Since(start).Seconds())
			ch <- item{horizon: h, result: res, err: err}
		}(h)
	}
	go func() { wg.Wait(); close(ch) }()

	done := make(map[models.Horizon]bool, len(horizons))
collect:
	for range horizons {
		select {
		case it, ok := <-ch:
			if !ok {
				break collect
			}
			done[it.horizon] = true
			if it.err != nil {
				uc.metrics.RecordHorizonFailure(it.horizon.Name(), failureKind(it.err))
				uc.logger.Warn("horizon training failed",
					applogger.String("symbol", symbol),
					applogger.String("horizon", it.horizon.Name()),
					applogger.Error(it.err),
				)
				report.Errors[it.horizon.Name()] = it.err.Error()
				continue
			}
			report.Horizons[it.horizon.Name()] = it.result
			uc.metrics.RecordPredictionServed(symbol, it.horizon.Name())
		case <-ctx.Done():
			break collect
		}
	}
	for _, h := range horizons {
		if !done[h] {
			report.Incomplete = append(report.Incomplete, h.Name())
		}
	}

	if len(report.Errors) == 0 {
		report.Errors = nil
	}
	if len(report.Horizons) == 0 {
		if len(report.Incomplete) > 0 {
			return nil, fmt.Errorf("prediction for %s timed out before any horizon completed", symbol)
		}
		return nil, fmt.Errorf("prediction failed for all horizons of %s", symbol)
	}
	return report, nil
}

// trainHorizon runs the strictly sequential per-horizon steps: labels,
// split, fit, evaluate, predict.
func (uc *PredictUseCase) trainHorizon(frame *indicator.Frame, h models.Horizon) (*models.HorizonResult, error) {
	ds, err := dataset.Build(frame, h, uc.opts)
	if err != nil {
		return nil, err
	}
	return model.NewTrainer().Train(ds)
}

func failureKind(err error) string {
	var insufficient *models.InsufficientDataError
	var missing *models.TargetColumnMissingError
	var fit *models.ModelFitError
	switch {
	case errors.As(err, &insufficient):
		return "insufficient_data"
	case errors.As(err, &missing):
		return "target_missing"
	case errors.As(err, &fit):
		return "model_fit"
	default:
		return "unknown"
	}
}
