package indicator

import (
	"math"
	"time"

	"StockCast/internal/domain/models"
)

// Raw OHLCV column names. Every derived indicator reads only these.
const (
	ColOpen   = "Open"
	ColHigh   = "High"
	ColLow    = "Low"
	ColClose  = "Close"
	ColVolume = "Volume"
)

// Frame is an ordered feature table: one row per trading date, named
// float64 columns, NaN where a value is undefined. Column order is the
// insertion order; setting an existing column overwrites it in place so
// repeated indicator application is idempotent.
type Frame struct {
	Dates []time.Time
	names []string
	cols  map[string][]float64
}

// NewFrame builds a frame with the raw OHLCV columns from candles. Candles
// must already be ordered by date ascending with no duplicates.
func NewFrame(candles []models.Candle) *Frame {
	n := len(candles)
	f := &Frame{
		Dates: make([]time.Time, n),
		cols:  make(map[string][]float64, 16),
	}
	open := make([]float64, n)
	high := make([]float64, n)
	low := make([]float64, n)
	closec := make([]float64, n)
	vol := make([]float64, n)
	for i, c := range candles {
		f.Dates[i] = c.Date
		open[i] = c.Open
		high[i] = c.High
		low[i] = c.Low
		closec[i] = c.Close
		vol[i] = c.Volume
	}
	f.SetCol(ColOpen, open)
	f.SetCol(ColHigh, high)
	f.SetCol(ColLow, low)
	f.SetCol(ColClose, closec)
	f.SetCol(ColVolume, vol)
	return f
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.Dates) }

// Columns returns column names in insertion order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// Col returns the named column, or nil if absent. The returned slice is the
// backing storage; treat it as read-only.
func (f *Frame) Col(name string) []float64 {
	return f.cols[name]
}

// SetCol stores a column, overwriting any existing one with the same name.
func (f *Frame) SetCol(name string, values []float64) {
	if _, ok := f.cols[name]; !ok {
		f.names = append(f.names, name)
	}
	f.cols[name] = values
}

// Row copies row i across the given columns.
func (f *Frame) Row(i int, columns []string) []float64 {
	out := make([]float64, len(columns))
	for j, name := range columns {
		out[j] = f.cols[name][i]
	}
	return out
}

// RowComplete reports whether row i is finite across the given columns.
func (f *Frame) RowComplete(i int, columns []string) bool {
	for _, name := range columns {
		v := f.cols[name][i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	nan := math.NaN()
	for i := range s {
		s[i] = nan
	}
	return s
}
