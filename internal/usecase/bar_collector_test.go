package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"StockCast/internal/domain/models"
)

// scriptedStream fails its first read loop with a closed channel pair and
// serves trades from the second one, mimicking a dropped websocket that
// comes back after reconnect.
type scriptedStream struct {
	mu         sync.Mutex
	reads      int
	reconnects int
	connected  bool
}

func (s *scriptedStream) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	return nil
}

func (s *scriptedStream) Subscribe(ctx context.Context) error { return nil }

func (s *scriptedStream) Reconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconnects++
	s.connected = true
	return nil
}

func (s *scriptedStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	return nil
}

func (s *scriptedStream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *scriptedStream) Read(ctx context.Context) (<-chan *models.Trade, <-chan error) {
	s.mu.Lock()
	s.reads++
	n := s.reads
	s.mu.Unlock()

	trades := make(chan *models.Trade, 4)
	errs := make(chan error, 1)
	if n == 1 {
		// a read failure ends the loop and closes both channels
		errs <- fmt.Errorf("read: connection reset")
		close(trades)
		close(errs)
		return trades, errs
	}
	trades <- &models.Trade{Symbol: "AAPL", Timestamp: ts(1, 15), Price: 101.5, Volume: 10}
	return trades, errs
}

func (s *scriptedStream) state() (reads, reconnects int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads, s.reconnects
}

type closeRecorder struct {
	noopMetrics
	mu sync.Mutex
	n  int
}

func (m *closeRecorder) RecordLastClose(symbol string, price float64) {
	m.mu.Lock()
	m.n++
	m.mu.Unlock()
}

func (m *closeRecorder) served() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.n
}

func TestCollectorResumesAfterReadError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := &scriptedStream{}
	store := &fakeStore{}
	rec := &closeRecorder{}
	proc := NewBarProcessor(nil, store, rec, "clickhouse")
	col := NewBarCollector(stream, proc, rec, nil)

	if err := col.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for rec.served() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("trade from the reconnected stream never reached the processor")
		}
		time.Sleep(5 * time.Millisecond)
	}

	reads, reconnects := stream.state()
	if reconnects != 1 {
		t.Fatalf("reconnects = %d, want 1", reconnects)
	}
	if reads != 2 {
		t.Fatalf("reads = %d, want a fresh read loop after reconnect", reads)
	}

	if err := proc.FlushAll(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	store.mu.Lock()
	stored := len(store.stored)
	store.mu.Unlock()
	if stored != 1 {
		t.Fatalf("stored bars = %d, want 1", stored)
	}
}
