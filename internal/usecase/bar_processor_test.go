package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"StockCast/internal/domain/models"
)

type fakeStore struct {
	mu     sync.Mutex
	stored []models.Candle
}

func (s *fakeStore) GetDailyCandles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error) {
	return nil, models.ErrNoData
}

func (s *fakeStore) StoreCandles(ctx context.Context, candles []models.Candle) error {
	s.mu.Lock()
	s.stored = append(s.stored, candles...)
	s.mu.Unlock()
	return nil
}

func (s *fakeStore) Health(ctx context.Context) error { return nil }
func (s *fakeStore) Close() error                     { return nil }

func ts(day, hour int) int64 {
	return time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC).Unix()
}

func TestProcessFoldsTradesIntoBar(t *testing.T) {
	store := &fakeStore{}
	p := NewBarProcessor(nil, store, noopMetrics{}, "clickhouse")

	trades := []*models.Trade{
		{Symbol: "AAPL", Timestamp: ts(1, 10), Price: 100, Volume: 10},
		{Symbol: "AAPL", Timestamp: ts(1, 12), Price: 105, Volume: 5},
		{Symbol: "AAPL", Timestamp: ts(1, 14), Price: 98, Volume: 20},
	}
	for _, tr := range trades {
		if err := p.Process(context.Background(), tr); err != nil {
			t.Fatalf("process: %v", err)
		}
	}
	// still the same day, nothing flushed yet
	if len(store.stored) != 0 {
		t.Fatalf("premature flush: %v", store.stored)
	}

	if err := p.FlushAll(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if len(store.stored) != 1 {
		t.Fatalf("expected 1 bar, got %d", len(store.stored))
	}
	bar := store.stored[0]
	if bar.Open != 100 || bar.High != 105 || bar.Low != 98 || bar.Close != 98 {
		t.Fatalf("unexpected OHLC %+v", bar)
	}
	if bar.Volume != 35 {
		t.Fatalf("volume %v, want 35", bar.Volume)
	}
	if !bar.Date.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("bar date %v", bar.Date)
	}
}

func TestProcessDayRollFlushesFinishedBar(t *testing.T) {
	store := &fakeStore{}
	p := NewBarProcessor(nil, store, noopMetrics{}, "clickhouse")

	if err := p.Process(context.Background(), &models.Trade{Symbol: "AAPL", Timestamp: ts(1, 20), Price: 100, Volume: 1}); err != nil {
		t.Fatalf("process: %v", err)
	}
	// next trade lands on a new UTC day and must flush day one
	if err := p.Process(context.Background(), &models.Trade{Symbol: "AAPL", Timestamp: ts(2, 1), Price: 110, Volume: 2}); err != nil {
		t.Fatalf("process: %v", err)
	}

	if len(store.stored) != 1 {
		t.Fatalf("expected day-one bar flushed, got %d", len(store.stored))
	}
	if store.stored[0].Close != 100 {
		t.Fatalf("flushed close %v, want 100", store.stored[0].Close)
	}

	if err := p.FlushAll(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if len(store.stored) != 2 {
		t.Fatalf("expected both bars after shutdown flush, got %d", len(store.stored))
	}
}

func TestProcessTracksSymbolsIndependently(t *testing.T) {
	store := &fakeStore{}
	p := NewBarProcessor(nil, store, noopMetrics{}, "clickhouse")

	if err := p.Process(context.Background(), &models.Trade{Symbol: "AAPL", Timestamp: ts(1, 10), Price: 100, Volume: 1}); err != nil {
		t.Fatalf("process: %v", err)
	}
	if err := p.Process(context.Background(), &models.Trade{Symbol: "MSFT", Timestamp: ts(1, 10), Price: 400, Volume: 1}); err != nil {
		t.Fatalf("process: %v", err)
	}

	if err := p.FlushAll(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if len(store.stored) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(store.stored))
	}
}

func TestProcessNilTrade(t *testing.T) {
	p := NewBarProcessor(nil, &fakeStore{}, noopMetrics{}, "clickhouse")
	if err := p.Process(context.Background(), nil); err == nil {
		t.Fatalf("expected error on nil trade")
	}
}

func TestProcessUnknownBackend(t *testing.T) {
	p := NewBarProcessor(nil, &fakeStore{}, noopMetrics{}, "s3")
	if err := p.Process(context.Background(), &models.Trade{Symbol: "AAPL", Timestamp: ts(1, 10), Price: 1, Volume: 1}); err != nil {
		t.Fatalf("first trade should not flush: %v", err)
	}
	if err := p.FlushAll(context.Background()); err == nil {
		t.Fatalf("expected unknown backend error")
	}
}
