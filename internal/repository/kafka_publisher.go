package repository

import (
	"context"
	"fmt"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	pkgkafka "StockCast/pkg/kafka"
)

// KafkaBarPublisher publishes daily bars to the bar topic, keyed by symbol
// so one symbol's bars stay ordered within a partition.
type KafkaBarPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaBarPublisher(producer *pkgkafka.Producer, topic string) *KafkaBarPublisher {
	return &KafkaBarPublisher{producer: producer, topic: topic}
}

type barMessage struct {
	Symbol string  `json:"symbol"`
	Date   int64   `json:"date"`
	O      float64 `json:"o"`
	H      float64 `json:"h"`
	L      float64 `json:"l"`
	C      float64 `json:"c"`
	V      float64 `json:"v"`
}

func toBarMessage(c *models.Candle) barMessage {
	return barMessage{
		Symbol: c.Symbol,
		Date:   c.Date.Unix(),
		O:      c.Open,
		H:      c.High,
		L:      c.Low,
		C:      c.Close,
		V:      c.Volume,
	}
}

func (p *KafkaBarPublisher) Publish(ctx context.Context, c *models.Candle) error {
	if c == nil {
		return fmt.Errorf("candle is nil")
	}
	return p.producer.Publish(ctx, p.topic, []byte(c.Symbol), toBarMessage(c))
}

func (p *KafkaBarPublisher) PublishBatch(ctx context.Context, candles []*models.Candle) error {
	msgs := make([]pkgkafka.Message, 0, len(candles))
	for _, c := range candles {
		if c == nil {
			continue
		}
		msgs = append(msgs, pkgkafka.Message{Key: []byte(c.Symbol), Value: toBarMessage(c)})
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaBarPublisher) Close() error { return p.producer.Close() }

var _ domrepo.BarPublisher = (*KafkaBarPublisher)(nil)
