package indicator

import (
	"math"
	"sort"
	"strconv"
	"sync"

	"StockCast/internal/domain/models"
)

// Engine appends technical-indicator columns to a Frame according to an
// IndicatorConfig. One canonical formula per indicator; variants that exist
// in the wild (RSI on exponential averages, per-session VWAP) are
// deliberately not supported.
//
// Every indicator reads only the raw OHLCV columns, so the set is
// order-independent and computed concurrently. Insufficient lookback never
// fails a computation: the unsatisfiable prefix is NaN.
type Engine struct {
	cfg models.IndicatorConfig
}

func NewEngine(cfg models.IndicatorConfig) *Engine {
	return &Engine{cfg: cfg}
}

type computed struct {
	name   string
	values []float64
}

// Apply computes the enabled indicators over f and stores their columns.
// Applying twice with the same config overwrites rather than duplicates.
func (e *Engine) Apply(f *Frame) {
	type task func(*Frame) []computed

	var tasks []task
	if e.cfg.SMA {
		w := e.cfg.SMAWindow
		tasks = append(tasks, func(f *Frame) []computed { return smaCols(f, w) })
	}
	if e.cfg.EMA {
		w := e.cfg.EMAWindow
		tasks = append(tasks, func(f *Frame) []computed { return emaCols(f, w) })
	}
	if e.cfg.RSI {
		w := e.cfg.RSIWindow
		tasks = append(tasks, func(f *Frame) []computed { return rsiCols(f, w) })
	}
	if e.cfg.MACD {
		fast, slow, sig := e.cfg.MACDFast, e.cfg.MACDSlow, e.cfg.MACDSignal
		tasks = append(tasks, func(f *Frame) []computed { return macdCols(f, fast, slow, sig) })
	}
	if e.cfg.ATR {
		w := e.cfg.ATRWindow
		tasks = append(tasks, func(f *Frame) []computed { return atrCols(f, w) })
	}
	if e.cfg.BollingerBands {
		w := e.cfg.BollingerWindow
		tasks = append(tasks, func(f *Frame) []computed { return bollingerCols(f, w) })
	}
	if e.cfg.VWAP {
		tasks = append(tasks, func(f *Frame) []computed { return vwapCols(f) })
	}
	if len(tasks) == 0 {
		return
	}

	results := make([][]computed, len(tasks))
	var wg sync.WaitGroup
	for i, t := range tasks {
		wg.Add(1)
		go func(i int, t task) {
			defer wg.Done()
			results[i] = t(f)
		}(i, t)
	}
	wg.Wait()

	// merge sequentially in a stable order so column layout is deterministic
	var all []computed
	for _, r := range results {
		all = append(all, r...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].name < all[j].name })
	for _, c := range all {
		f.SetCol(c.name, c.values)
	}
}

func smaCols(f *Frame, window int) []computed {
	closes := f.Col(ColClose)
	return []computed{{name: colName("SMA", window), values: rollingMean(closes, window)}}
}

func emaCols(f *Frame, window int) []computed {
	closes := f.Col(ColClose)
	return []computed{{name: colName("EMA", window), values: ema(closes, window)}}
}

// rsiCols computes RSI over simple rolling means of gains and losses.
// A zero average loss maps to RSI 100.
func rsiCols(f *Frame, window int) []computed {
	closes := f.Col(ColClose)
	n := len(closes)
	out := nanSlice(n)
	if n > 0 {
		gains := nanSlice(n)
		losses := nanSlice(n)
		for i := 1; i < n; i++ {
			diff := closes[i] - closes[i-1]
			gains[i] = math.Max(diff, 0)
			losses[i] = math.Max(-diff, 0)
		}
		avgGain := rollingMean(gains, window)
		avgLoss := rollingMean(losses, window)
		for i := 0; i < n; i++ {
			g, l := avgGain[i], avgLoss[i]
			if math.IsNaN(g) || math.IsNaN(l) {
				continue
			}
			if l == 0 {
				out[i] = 100
				continue
			}
			rs := g / l
			out[i] = 100 - 100/(1+rs)
		}
	}
	return []computed{{name: colName("RSI", window), values: out}}
}

func macdCols(f *Frame, fast, slow, signal int) []computed {
	closes := f.Col(ColClose)
	n := len(closes)
	line := make([]float64, n)
	emaFast := ema(closes, fast)
	emaSlow := ema(closes, slow)
	for i := 0; i < n; i++ {
		line[i] = emaFast[i] - emaSlow[i]
	}
	sig := ema(line, signal)
	hist := make([]float64, n)
	for i := 0; i < n; i++ {
		hist[i] = line[i] - sig[i]
	}
	return []computed{
		{name: "MACD_Line", values: line},
		{name: "MACD_Signal", values: sig},
		{name: "MACD_Hist", values: hist},
	}
}

// atrCols computes the rolling mean of true range. The first row has no
// previous close, so its true range is just high-low.
func atrCols(f *Frame, window int) []computed {
	high := f.Col(ColHigh)
	low := f.Col(ColLow)
	closes := f.Col(ColClose)
	n := len(closes)
	tr := make([]float64, n)
	for i := 0; i < n; i++ {
		hl := high[i] - low[i]
		if i == 0 {
			tr[i] = hl
			continue
		}
		hc := math.Abs(high[i] - closes[i-1])
		lc := math.Abs(low[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return []computed{{name: colName("ATR", window), values: rollingMean(tr, window)}}
}

func bollingerCols(f *Frame, window int) []computed {
	closes := f.Col(ColClose)
	middle := rollingMean(closes, window)
	std := rollingStd(closes, window)
	n := len(closes)
	upper := nanSlice(n)
	lower := nanSlice(n)
	for i := 0; i < n; i++ {
		if math.IsNaN(middle[i]) || math.IsNaN(std[i]) {
			continue
		}
		upper[i] = middle[i] + 2*std[i]
		lower[i] = middle[i] - 2*std[i]
	}
	return []computed{
		{name: "BB_Middle", values: middle},
		{name: "BB_Upper", values: upper},
		{name: "BB_Lower", values: lower},
	}
}

// vwapCols accumulates over the entire fetched window; there is no
// per-session reset for daily bars.
func vwapCols(f *Frame) []computed {
	high := f.Col(ColHigh)
	low := f.Col(ColLow)
	closes := f.Col(ColClose)
	vol := f.Col(ColVolume)
	n := len(closes)
	out := nanSlice(n)
	var cumPV, cumV float64
	for i := 0; i < n; i++ {
		typical := (high[i] + low[i] + closes[i]) / 3
		cumPV += vol[i] * typical
		cumV += vol[i]
		if cumV > 0 {
			out[i] = cumPV / cumV
		}
	}
	return []computed{{name: "VWAP", values: out}}
}

// ema seeds with the first value and applies alpha = 2/(n+1), matching an
// unadjusted exponentially weighted mean. NaN inputs propagate until the
// first finite value.
func ema(values []float64, window int) []float64 {
	n := len(values)
	out := nanSlice(n)
	alpha := 2.0 / float64(window+1)
	started := false
	var prev float64
	for i := 0; i < n; i++ {
		v := values[i]
		if math.IsNaN(v) {
			continue
		}
		if !started {
			prev = v
			started = true
		} else {
			prev = alpha*v + (1-alpha)*prev
		}
		out[i] = prev
	}
	return out
}

func rollingMean(values []float64, window int) []float64 {
	n := len(values)
	out := nanSlice(n)
	for i := window - 1; i < n; i++ {
		sum := 0.0
		ok := true
		for j := i - window + 1; j <= i; j++ {
			if math.IsNaN(values[j]) {
				ok = false
				break
			}
			sum += values[j]
		}
		if ok {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// rollingStd is the sample standard deviation (n-1 denominator).
func rollingStd(values []float64, window int) []float64 {
	n := len(values)
	out := nanSlice(n)
	if window < 2 {
		return out
	}
	for i := window - 1; i < n; i++ {
		sum := 0.0
		ok := true
		for j := i - window + 1; j <= i; j++ {
			if math.IsNaN(values[j]) {
				ok = false
				break
			}
			sum += values[j]
		}
		if !ok {
			continue
		}
		mean := sum / float64(window)
		var ss float64
		for j := i - window + 1; j <= i; j++ {
			d := values[j] - mean
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(window-1))
	}
	return out
}

func colName(prefix string, window int) string {
	return prefix + "_" + strconv.Itoa(window)
}
