package models

import "time"

// Candle represents one daily OHLCV bar for a symbol.
type Candle struct {
	Date   time.Time
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Trade is a single tick from the live market stream.
type Trade struct {
	Symbol    string
	Timestamp int64 // unix seconds
	Price     float64
	Volume    float64
}

// SortAndDedupeCandles orders candles by date ascending and collapses
// duplicate dates, keeping the last occurrence. The input slice is not
// modified.
func SortAndDedupeCandles(cs []Candle) []Candle {
	if len(cs) == 0 {
		return nil
	}
	out := make([]Candle, len(cs))
	copy(out, cs)
	// insertion sort: provider data is already nearly ordered
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Date.Before(out[j-1].Date); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	dedup := out[:1]
	for _, c := range out[1:] {
		if c.Date.Equal(dedup[len(dedup)-1].Date) {
			dedup[len(dedup)-1] = c
			continue
		}
		dedup = append(dedup, c)
	}
	return dedup
}
