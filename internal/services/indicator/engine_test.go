package indicator

import (
	"math"
	"reflect"
	"testing"
	"time"

	"StockCast/internal/domain/models"
)

func linearCandles(n int) []models.Candle {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, n)
	for i := 0; i < n; i++ {
		price := float64(i + 1)
		out[i] = models.Candle{
			Date:   base.AddDate(0, 0, i),
			Symbol: "TEST",
			Open:   price,
			High:   price + 0.5,
			Low:    price - 0.5,
			Close:  price,
			Volume: 1000,
		}
	}
	return out
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNewFrameRawColumns(t *testing.T) {
	f := NewFrame(linearCandles(5))
	want := []string{ColOpen, ColHigh, ColLow, ColClose, ColVolume}
	if got := f.Columns(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected columns %v", got)
	}
	if f.Len() != 5 {
		t.Fatalf("expected 5 rows, got %d", f.Len())
	}
}

func TestSMAWarmupIsNaN(t *testing.T) {
	f := NewFrame(linearCandles(6))
	cfg := models.DefaultIndicatorConfig()
	cfg.SMA = true
	cfg.SMAWindow = 3
	NewEngine(cfg).Apply(f)

	sma := f.Col("SMA_3")
	if sma == nil {
		t.Fatalf("SMA_3 column missing")
	}
	for i := 0; i < 2; i++ {
		if !math.IsNaN(sma[i]) {
			t.Fatalf("expected NaN at warmup index %d, got %v", i, sma[i])
		}
	}
	// closes 1..6: sma[2] = (1+2+3)/3 = 2
	if !almostEqual(sma[2], 2) {
		t.Fatalf("sma[2] = %v, want 2", sma[2])
	}
	if !almostEqual(sma[5], 5) {
		t.Fatalf("sma[5] = %v, want 5", sma[5])
	}
}

func TestEMASeedsWithFirstValue(t *testing.T) {
	f := NewFrame(linearCandles(4))
	cfg := models.DefaultIndicatorConfig()
	cfg.EMA = true
	cfg.EMAWindow = 3
	NewEngine(cfg).Apply(f)

	ema := f.Col("EMA_3")
	if !almostEqual(ema[0], 1) {
		t.Fatalf("ema[0] = %v, want seed 1", ema[0])
	}
	// alpha = 2/(3+1) = 0.5: ema[1] = 0.5*2 + 0.5*1 = 1.5
	if !almostEqual(ema[1], 1.5) {
		t.Fatalf("ema[1] = %v, want 1.5", ema[1])
	}
}

func TestRSIZeroLossIsHundred(t *testing.T) {
	f := NewFrame(linearCandles(20))
	cfg := models.DefaultIndicatorConfig()
	cfg.RSI = true
	cfg.RSIWindow = 14
	NewEngine(cfg).Apply(f)

	rsi := f.Col("RSI_14")
	// strictly rising closes: zero average loss once the window fills
	for i := 14; i < 20; i++ {
		if !almostEqual(rsi[i], 100) {
			t.Fatalf("rsi[%d] = %v, want 100", i, rsi[i])
		}
	}
	if !math.IsNaN(rsi[0]) {
		t.Fatalf("rsi[0] should be NaN, got %v", rsi[0])
	}
}

func TestATRFirstRowIsHighMinusLow(t *testing.T) {
	f := NewFrame(linearCandles(16))
	cfg := models.DefaultIndicatorConfig()
	cfg.ATR = true
	cfg.ATRWindow = 1
	NewEngine(cfg).Apply(f)

	atr := f.Col("ATR_1")
	// window 1: atr[0] equals the first true range = high-low = 1.0
	if !almostEqual(atr[0], 1) {
		t.Fatalf("atr[0] = %v, want 1", atr[0])
	}
}

func TestBollingerSampleStd(t *testing.T) {
	f := NewFrame(linearCandles(3))
	cfg := models.DefaultIndicatorConfig()
	cfg.BollingerBands = true
	cfg.BollingerWindow = 3
	NewEngine(cfg).Apply(f)

	// closes 1,2,3: mean 2, sample std 1
	if mid := f.Col("BB_Middle"); !almostEqual(mid[2], 2) {
		t.Fatalf("BB_Middle[2] = %v, want 2", mid[2])
	}
	if up := f.Col("BB_Upper"); !almostEqual(up[2], 4) {
		t.Fatalf("BB_Upper[2] = %v, want 4", up[2])
	}
	if lo := f.Col("BB_Lower"); !almostEqual(lo[2], 0) {
		t.Fatalf("BB_Lower[2] = %v, want 0", lo[2])
	}
}

func TestVWAPCumulativeNoReset(t *testing.T) {
	candles := linearCandles(3)
	for i := range candles {
		// typical price == close when high/low collapse onto close
		candles[i].High = candles[i].Close
		candles[i].Low = candles[i].Close
	}
	f := NewFrame(candles)
	cfg := models.DefaultIndicatorConfig()
	cfg.VWAP = true
	NewEngine(cfg).Apply(f)

	vwap := f.Col("VWAP")
	// equal volume per bar: vwap[i] is the running mean of closes
	if !almostEqual(vwap[0], 1) || !almostEqual(vwap[1], 1.5) || !almostEqual(vwap[2], 2) {
		t.Fatalf("unexpected vwap %v", vwap)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	f := NewFrame(linearCandles(30))
	cfg := models.DefaultIndicatorConfig()
	cfg.SMA = true
	cfg.EMA = true
	cfg.MACD = true

	eng := NewEngine(cfg)
	eng.Apply(f)
	first := f.Columns()
	eng.Apply(f)
	second := f.Columns()

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("columns changed on reapply: %v vs %v", first, second)
	}
}

func TestApplyColumnOrderDeterministic(t *testing.T) {
	cfg := models.DefaultIndicatorConfig()
	cfg.SMA = true
	cfg.RSI = true
	cfg.MACD = true
	cfg.BollingerBands = true
	cfg.VWAP = true

	f1 := NewFrame(linearCandles(40))
	f2 := NewFrame(linearCandles(40))
	NewEngine(cfg).Apply(f1)
	NewEngine(cfg).Apply(f2)

	if !reflect.DeepEqual(f1.Columns(), f2.Columns()) {
		t.Fatalf("column order differs: %v vs %v", f1.Columns(), f2.Columns())
	}
}
