package repository

import (
	"context"
	"time"

	"StockCast/internal/domain/models"
)

// CandleSource supplies ordered, deduplicated daily candles for a symbol
// over [from, to]. An unknown symbol or empty range is models.ErrNoData,
// never an empty success.
type CandleSource interface {
	GetDailyCandles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error)
}

// CandleStore is a local history store used as a cache in front of the
// upstream market-data vendor.
type CandleStore interface {
	CandleSource
	StoreCandles(ctx context.Context, candles []models.Candle) error
	Health(ctx context.Context) error
	Close() error
}

// MarketStream delivers live trades over a persistent connection.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Trade, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// BarPublisher emits completed daily bars to the message bus.
type BarPublisher interface {
	Publish(ctx context.Context, c *models.Candle) error
	PublishBatch(ctx context.Context, candles []*models.Candle) error
	Close() error
}

// Metrics records operational measurements for the prediction service.
type Metrics interface {
	RecordPredictionServed(symbol, horizon string)
	RecordHorizonFailure(horizon, kind string)
	RecordError(kind string)
	RecordLastClose(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
