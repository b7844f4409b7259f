package finnhub

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"StockCast/internal/domain/models"
)

func TestGetDailyCandles(t *testing.T) {
	day := func(d int) int64 {
		return time.Date(2024, 1, d, 14, 30, 0, 0, time.UTC).Unix()
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stock/candle" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("symbol") != "AAPL" || q.Get("resolution") != "D" || q.Get("token") != "test-key" {
			t.Errorf("unexpected query %v", q)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"s": "ok",
			"t": []int64{day(3), day(2), day(2)}, // out of order with a duplicate
			"o": []float64{3, 2, 2},
			"h": []float64{3.5, 2.5, 2.5},
			"l": []float64{2.5, 1.5, 1.5},
			"c": []float64{3.1, 2.1, 2.1},
			"v": []float64{300, 200, 200},
		})
	}))
	defer srv.Close()

	client := NewCandleClient("test-key", srv.URL)
	candles, err := client.GetDailyCandles(context.Background(), "AAPL", time.Unix(day(1), 0), time.Unix(day(5), 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("expected 2 deduplicated candles, got %d", len(candles))
	}
	if !candles[0].Date.Before(candles[1].Date) {
		t.Fatalf("candles not sorted: %v, %v", candles[0].Date, candles[1].Date)
	}
	first := candles[0]
	if first.Date.Hour() != 0 || first.Date.Location() != time.UTC {
		t.Fatalf("date not truncated to UTC midnight: %v", first.Date)
	}
	if first.Open != 2 || first.Close != 2.1 || first.Volume != 200 {
		t.Fatalf("unexpected candle %+v", first)
	}
}

func TestGetDailyCandlesNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"s": "no_data"})
	}))
	defer srv.Close()

	client := NewCandleClient("test-key", srv.URL)
	_, err := client.GetDailyCandles(context.Background(), "NOPE", time.Now().AddDate(0, -1, 0), time.Now())
	if !errors.Is(err, models.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestGetDailyCandlesInconsistentColumns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"s": "ok",
			"t": []int64{1, 2, 3},
			"o": []float64{1},
			"h": []float64{1},
			"l": []float64{1},
			"c": []float64{1},
			"v": []float64{1},
		})
	}))
	defer srv.Close()

	client := NewCandleClient("test-key", srv.URL)
	if _, err := client.GetDailyCandles(context.Background(), "BAD", time.Now().AddDate(0, -1, 0), time.Now()); err == nil {
		t.Fatalf("expected column length error")
	}
}

func TestGetDailyCandlesRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"s": "ok",
			"t": []int64{time.Now().Unix()},
			"o": []float64{1}, "h": []float64{1}, "l": []float64{1}, "c": []float64{1}, "v": []float64{1},
		})
	}))
	defer srv.Close()

	client := NewCandleClient("test-key", srv.URL, WithRateLimit(1, 0.0001))
	from, to := time.Now().AddDate(0, -1, 0), time.Now()
	if _, err := client.GetDailyCandles(context.Background(), "AAPL", from, to); err != nil {
		t.Fatalf("first call should pass: %v", err)
	}
	if _, err := client.GetDailyCandles(context.Background(), "AAPL", from, to); err == nil {
		t.Fatalf("second call should be rate limited")
	}
}
