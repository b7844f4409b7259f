package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"StockCast/internal/domain/models"
)

type countingProc struct {
	mu    sync.Mutex
	count int
	err   error
}

func (p *countingProc) Process(ctx context.Context, t *models.Trade) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.count++
	return nil
}

func (p *countingProc) processed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

type sinkMetrics struct{}

func (sinkMetrics) RecordPredictionServed(symbol, horizon string) {}
func (sinkMetrics) RecordHorizonFailure(horizon, kind string)     {}
func (sinkMetrics) RecordError(kind string)                       {}
func (sinkMetrics) RecordLastClose(symbol string, price float64)  {}
func (sinkMetrics) RecordLatency(op string, seconds float64)      {}

func validTrade(symbol string) *models.Trade {
	return &models.Trade{Symbol: symbol, Timestamp: time.Now().Unix(), Price: 100, Volume: 1}
}

func TestPipelineForwardsValidTrade(t *testing.T) {
	proc := &countingProc{}
	p := NewStreamPipeline(proc, sinkMetrics{})

	if err := p.Process(context.Background(), validTrade("AAPL")); err != nil {
		t.Fatalf("process: %v", err)
	}
	if proc.processed() != 1 {
		t.Fatalf("processed %d, want 1", proc.processed())
	}
}

func TestPipelineRejectsInvalidTrades(t *testing.T) {
	proc := &countingProc{}
	p := NewStreamPipeline(proc, sinkMetrics{})

	bad := []*models.Trade{
		nil,
		{Symbol: "", Timestamp: 1, Price: 1, Volume: 1},
		{Symbol: "AAPL", Timestamp: 0, Price: 1, Volume: 1},
		{Symbol: "AAPL", Timestamp: 1, Price: -1, Volume: 1},
	}
	for i, tr := range bad {
		if err := p.Process(context.Background(), tr); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
	if proc.processed() != 0 {
		t.Fatalf("invalid trades reached downstream: %d", proc.processed())
	}
}

func TestPipelineThrottlesPerSymbol(t *testing.T) {
	proc := &countingProc{}
	p := NewStreamPipeline(proc, sinkMetrics{}, WithMaxRPS(1))

	// second trade for the same symbol inside the window is dropped silently
	if err := p.Process(context.Background(), validTrade("AAPL")); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := p.Process(context.Background(), validTrade("AAPL")); err != nil {
		t.Fatalf("throttled trade must not error: %v", err)
	}
	if proc.processed() != 1 {
		t.Fatalf("processed %d, want 1", proc.processed())
	}

	// a different symbol has its own throttle window
	if err := p.Process(context.Background(), validTrade("MSFT")); err != nil {
		t.Fatalf("other symbol: %v", err)
	}
	if proc.processed() != 2 {
		t.Fatalf("processed %d, want 2", proc.processed())
	}
}

func TestPipelineBuffersOnDownstreamError(t *testing.T) {
	proc := &countingProc{err: errors.New("backend down")}
	p := NewStreamPipeline(proc, sinkMetrics{}, WithBufferSize(4))

	if err := p.Process(context.Background(), validTrade("AAPL")); err == nil {
		t.Fatalf("expected downstream error")
	}

	// once the backend recovers, Start drains the buffer
	proc.mu.Lock()
	proc.err = nil
	proc.mu.Unlock()

	p.Start(context.Background())
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for proc.processed() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("buffered trade never flushed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
