package models

import (
	"fmt"
	"strings"
)

// IndicatorConfig selects which technical indicators are appended to the
// feature table and with what windows. The zero value disables everything;
// use DefaultIndicatorConfig for the library defaults.
type IndicatorConfig struct {
	MACD           bool
	RSI            bool
	SMA            bool
	EMA            bool
	ATR            bool
	BollingerBands bool
	VWAP           bool

	SMAWindow       int
	EMAWindow       int
	RSIWindow       int
	ATRWindow       int
	BollingerWindow int
	MACDFast        int
	MACDSlow        int
	MACDSignal      int
}

// DefaultIndicatorConfig returns the canonical windows with all indicators
// disabled; callers toggle the ones they want.
func DefaultIndicatorConfig() IndicatorConfig {
	return IndicatorConfig{
		SMAWindow:       14,
		EMAWindow:       14,
		RSIWindow:       14,
		ATRWindow:       14,
		BollingerWindow: 20,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
	}
}

// Validate checks window parameters for the enabled indicators.
func (c IndicatorConfig) Validate() error {
	check := func(name string, v int) error {
		if v < 1 {
			return fmt.Errorf("indicator config: %s window must be >= 1, got %d", name, v)
		}
		return nil
	}
	if c.SMA {
		if err := check("sma", c.SMAWindow); err != nil {
			return err
		}
	}
	if c.EMA {
		if err := check("ema", c.EMAWindow); err != nil {
			return err
		}
	}
	if c.RSI {
		if err := check("rsi", c.RSIWindow); err != nil {
			return err
		}
	}
	if c.ATR {
		if err := check("atr", c.ATRWindow); err != nil {
			return err
		}
	}
	if c.BollingerBands {
		if err := check("bollinger", c.BollingerWindow); err != nil {
			return err
		}
	}
	if c.MACD {
		if c.MACDFast < 1 || c.MACDSlow < 1 || c.MACDSignal < 1 {
			return fmt.Errorf("indicator config: macd windows must be >= 1")
		}
		if c.MACDFast >= c.MACDSlow {
			return fmt.Errorf("indicator config: macd fast window (%d) must be < slow window (%d)", c.MACDFast, c.MACDSlow)
		}
	}
	return nil
}

// Key returns a stable string for cache keys.
func (c IndicatorConfig) Key() string {
	var b strings.Builder
	flag := func(name string, on bool, windows ...int) {
		if !on {
			return
		}
		b.WriteString(name)
		for _, w := range windows {
			fmt.Fprintf(&b, "-%d", w)
		}
		b.WriteByte(',')
	}
	flag("macd", c.MACD, c.MACDFast, c.MACDSlow, c.MACDSignal)
	flag("rsi", c.RSI, c.RSIWindow)
	flag("sma", c.SMA, c.SMAWindow)
	flag("ema", c.EMA, c.EMAWindow)
	flag("atr", c.ATR, c.ATRWindow)
	flag("bb", c.BollingerBands, c.BollingerWindow)
	flag("vwap", c.VWAP)
	if b.Len() == 0 {
		return "none"
	}
	return strings.TrimSuffix(b.String(), ",")
}
