package finnhub

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	"StockCast/internal/service/ratelimit"
	xhttp "StockCast/pkg/http"
	xutil "StockCast/pkg/util"
)

// CandleClient fetches daily OHLCV history from the Finnhub REST API.
type CandleClient struct {
	apiKey  string
	baseURL string
	client  *xhttp.Client
	limiter *ratelimit.Limiter

	rateCapacity float64
	ratePerSec   float64
}

// CandleClientOption configures CandleClient.
type CandleClientOption func(*CandleClient)

// WithTimeout sets the HTTP timeout for candle requests.
func WithTimeout(d time.Duration) CandleClientOption {
	return func(c *CandleClient) {
		if d > 0 {
			c.client = xhttp.NewClient(xhttp.WithTimeout(d))
		}
	}
}

// WithRateLimit caps vendor calls per symbol (burst capacity, refill/sec).
func WithRateLimit(capacity, perSec float64) CandleClientOption {
	return func(c *CandleClient) {
		c.rateCapacity = capacity
		c.ratePerSec = perSec
	}
}

// NewCandleClient creates a Finnhub daily-candle source.
func NewCandleClient(apiKey, baseURL string, opts ...CandleClientOption) *CandleClient {
	c := &CandleClient{
		apiKey:       apiKey,
		baseURL:      baseURL,
		client:       xhttp.NewClient(xhttp.WithTimeout(10 * time.Second)),
		limiter:      ratelimit.New(),
		rateCapacity: 5,
		ratePerSec:   1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// candleResponse is the vendor's columnar payload.
type candleResponse struct {
	Status string    `json:"s"` // "ok" | "no_data"
	T      []int64   `json:"t"`
	O      []float64 `json:"o"`
	H      []float64 `json:"h"`
	L      []float64 `json:"l"`
	C      []float64 `json:"c"`
	V      []float64 `json:"v"`
}

// GetDailyCandles returns ordered, deduplicated daily candles for symbol
// over [from, to]. A vendor "no_data" status or empty payload maps to
// models.ErrNoData.
func (c *CandleClient) GetDailyCandles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error) {
	if !c.limiter.Allow(symbol, c.rateCapacity, c.ratePerSec) {
		return nil, fmt.Errorf("finnhub: rate limit exceeded for %s", symbol)
	}

	var cr candleResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/stock/candle",
		QueryParams: map[string][]string{
			"symbol":     {symbol},
			"resolution": {"D"},
			"from":       {strconv.FormatInt(from.Unix(), 10)},
			"to":         {strconv.FormatInt(to.Unix(), 10)},
			"token":      {c.apiKey},
		},
	}, &cr)
	if err != nil {
		return nil, fmt.Errorf("finnhub candles %s: %w", symbol, err)
	}

	if cr.Status == "no_data" || len(cr.T) == 0 {
		return nil, fmt.Errorf("finnhub %s: %w", symbol, models.ErrNoData)
	}
	if len(cr.O) != len(cr.T) || len(cr.H) != len(cr.T) || len(cr.L) != len(cr.T) ||
		len(cr.C) != len(cr.T) || len(cr.V) != len(cr.T) {
		return nil, fmt.Errorf("finnhub %s: inconsistent column lengths", symbol)
	}

	out := make([]models.Candle, 0, len(cr.T))
	for i, ts := range cr.T {
		out = append(out, models.Candle{
			Date:   xutil.DayUTC(ts),
			Symbol: symbol,
			Open:   cr.O[i],
			High:   cr.H[i],
			Low:    cr.L[i],
			Close:  cr.C[i],
			Volume: cr.V[i],
		})
	}
	return models.SortAndDedupeCandles(out), nil
}

var _ domrepo.CandleSource = (*CandleClient)(nil)
