package repository

import (
	"context"
	"errors"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	applogger "StockCast/pkg/logger"
)

// CachedCandleSource reads the local store first and falls back to the
// upstream vendor, backfilling fetched history asynchronously so the next
// request is served locally.
type CachedCandleSource struct {
	store    domrepo.CandleStore
	upstream domrepo.CandleSource
	l        *applogger.Logger

	// minCoverage is the fraction of the requested span the store must
	// cover before its answer is trusted over the vendor's.
	minCoverage float64
}

func NewCachedCandleSource(store domrepo.CandleStore, upstream domrepo.CandleSource, l *applogger.Logger) *CachedCandleSource {
	return &CachedCandleSource{store: store, upstream: upstream, l: l, minCoverage: 0.9}
}

func (s *CachedCandleSource) GetDailyCandles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error) {
	if s.store != nil {
		cs, err := s.store.GetDailyCandles(ctx, symbol, from, to)
		if err == nil && s.covers(cs, from, to) {
			return cs, nil
		}
		if err != nil && !errors.Is(err, models.ErrNoData) && s.l != nil {
			s.l.Warn("candle store read failed, falling back to vendor",
				applogger.String("symbol", symbol), applogger.Error(err))
		}
	}

	cs, err := s.upstream.GetDailyCandles(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}
	if s.store != nil {
		go s.backfill(symbol, cs)
	}
	return cs, nil
}

func (s *CachedCandleSource) covers(cs []models.Candle, from, to time.Time) bool {
	if len(cs) == 0 {
		return false
	}
	spanDays := to.Sub(from).Hours() / 24
	if spanDays <= 0 {
		return true
	}
	// ~252 trading days per 365 calendar days
	expected := spanDays * 252 / 365
	return float64(len(cs)) >= expected*s.minCoverage
}

func (s *CachedCandleSource) backfill(symbol string, cs []models.Candle) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.store.StoreCandles(ctx, cs); err != nil && s.l != nil {
		s.l.Warn("candle backfill failed",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(cs)),
			applogger.Error(err),
		)
	}
}

var _ domrepo.CandleSource = (*CachedCandleSource)(nil)
