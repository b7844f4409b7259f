package usecase

import (
	"context"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	mid "StockCast/internal/middleware"
)

// BarCollector consumes the live market stream and feeds trades through the
// buffering pipeline into the bar processor.
type BarCollector struct {
	stream  domrepo.MarketStream
	proc    *BarProcessor
	metrics domrepo.Metrics
	pipe    *mid.StreamPipeline
}

func NewBarCollector(stream domrepo.MarketStream, proc *BarProcessor, metrics domrepo.Metrics, pipe *mid.StreamPipeline) *BarCollector {
	return &BarCollector{stream: stream, proc: proc, metrics: metrics, pipe: pipe}
}

// IsConnected reports the stream connection state.
func (c *BarCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *BarCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	trCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, trCh, errCh)
	return nil
}

func (c *BarCollector) consume(ctx context.Context, trCh <-chan *models.Trade, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if ok && err != nil {
				c.metrics.RecordError("stream")
			}
			// the read loop is done either way; stale channels are
			// closed, so keep selecting on fresh ones
			if trCh, errCh = c.restart(ctx); trCh == nil {
				return
			}
		case t, ok := <-trCh:
			if !ok {
				if trCh, errCh = c.restart(ctx); trCh == nil {
					return
				}
				continue
			}
			if t == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, t)
			} else {
				_ = c.proc.Process(ctx, t)
			}
			c.metrics.RecordLastClose(t.Symbol, t.Price)
		}
	}
}

// restart reconnects the stream and opens a fresh read loop. Nil channels
// mean the context was cancelled before a connection came back.
func (c *BarCollector) restart(ctx context.Context) (<-chan *models.Trade, <-chan error) {
	for {
		if ctx.Err() != nil {
			return nil, nil
		}
		if err := c.stream.Reconnect(ctx); err != nil {
			c.metrics.RecordError("stream")
			continue
		}
		return c.stream.Read(ctx)
	}
}

// Processor returns the underlying BarProcessor for lifecycle management.
func (c *BarCollector) Processor() *BarProcessor { return c.proc }

// Shutdown stops the pipeline, flushes in-progress bars and closes the stream.
func (c *BarCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	if c.proc != nil {
		_ = c.proc.FlushAll(ctx)
	}
	return c.stream.Close()
}
