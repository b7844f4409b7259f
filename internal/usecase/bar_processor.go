package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	xutil "StockCast/pkg/util"
)

// BarProcessor folds live trades into the current UTC daily bar per symbol
// and routes completed bars to the configured backend. It keeps the local
// candle history fresh between vendor fetches.
type BarProcessor struct {
	pub     domrepo.BarPublisher
	store   domrepo.CandleStore
	metrics domrepo.Metrics
	backend string

	mu   sync.Mutex
	bars map[string]*models.Candle
}

// NewBarProcessor creates a processor routing to backend ("kafka" or
// "clickhouse").
func NewBarProcessor(pub domrepo.BarPublisher, store domrepo.CandleStore, metrics domrepo.Metrics, backend string) *BarProcessor {
	return &BarProcessor{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
		bars:    make(map[string]*models.Candle),
	}
}

// Process updates the in-progress bar with one trade. Rolling into a new
// trading day flushes the finished bar downstream.
func (p *BarProcessor) Process(ctx context.Context, t *models.Trade) error {
	if t == nil {
		return fmt.Errorf("trade is nil")
	}
	day := xutil.DayUTC(t.Timestamp)

	p.mu.Lock()
	bar, ok := p.bars[t.Symbol]
	var finished *models.Candle
	if !ok || !bar.Date.Equal(day) {
		if ok {
			finished = bar
		}
		bar = &models.Candle{
			Date:   day,
			Symbol: t.Symbol,
			Open:   t.Price,
			High:   t.Price,
			Low:    t.Price,
		}
		p.bars[t.Symbol] = bar
	}
	if t.Price > bar.High {
		bar.High = t.Price
	}
	if t.Price < bar.Low {
		bar.Low = t.Price
	}
	bar.Close = t.Price
	bar.Volume += t.Volume
	p.mu.Unlock()

	if finished == nil {
		return nil
	}
	return p.flush(ctx, finished)
}

func (p *BarProcessor) flush(ctx context.Context, bar *models.Candle) error {
	start := time.Now()
	var err error
	switch p.backend {
	case "kafka":
		err = p.pub.Publish(ctx, bar)
	case "clickhouse":
		err = p.store.StoreCandles(ctx, []models.Candle{*bar})
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}
	if err != nil {
		p.metrics.RecordError("bar_flush")
		return fmt.Errorf("flush bar: %w", err)
	}
	p.metrics.RecordLatency("bar_flush", time.Since(start).Seconds())
	return nil
}

// FlushAll pushes every in-progress bar downstream, used on shutdown.
func (p *BarProcessor) FlushAll(ctx context.Context) error {
	p.mu.Lock()
	bars := make([]*models.Candle, 0, len(p.bars))
	for _, b := range p.bars {
		bars = append(bars, b)
	}
	p.bars = make(map[string]*models.Candle)
	p.mu.Unlock()

	var firstErr error
	for _, b := range bars {
		if err := p.flush(ctx, b); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close closes underlying resources if available.
func (p *BarProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
}
