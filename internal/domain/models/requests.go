package models

// Requests for the prediction HTTP endpoints. Defined in domain for consistency and reuse.

type PredictionRequest struct {
	Symbol         string `query:"symbol" json:"symbol" validate:"required,min=1,max=12"`
	MACD           bool   `query:"macd" json:"macd"`
	RSI            bool   `query:"rsi" json:"rsi"`
	SMA            bool   `query:"sma" json:"sma"`
	EMA            bool   `query:"ema" json:"ema"`
	ATR            bool   `query:"atr" json:"atr"`
	BollingerBands bool   `query:"bbands" json:"bbands"`
	VWAP           bool   `query:"vwap" json:"vwap"`
}

// IndicatorConfig converts request toggles into a validated config with
// default windows.
func (r *PredictionRequest) IndicatorConfig() IndicatorConfig {
	cfg := DefaultIndicatorConfig()
	cfg.MACD = r.MACD
	cfg.RSI = r.RSI
	cfg.SMA = r.SMA
	cfg.EMA = r.EMA
	cfg.ATR = r.ATR
	cfg.BollingerBands = r.BollingerBands
	cfg.VWAP = r.VWAP
	return cfg
}

type CandlesRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,min=1,max=12"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
	Limit  int    `query:"limit" json:"limit" default:"10000" validate:"gte=1,lte=50000"`
}
