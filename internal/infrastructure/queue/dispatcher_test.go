package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/propstay/property-api/internal/core/ports"
)

type collectingSink struct {
	mu   sync.Mutex
	seen []ports.Notification
}

func (s *collectingSink) Notify(_ context.Context, n ports.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, n)
	return nil
}

func (s *collectingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

func TestDispatcher_DeliversToSink(t *testing.T) {
	sink := &collectingSink{}
	d := NewDispatcher(2, sink, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for i := 0; i < 10; i++ {
		if err := d.Notify(ctx, ports.Notification{To: "a@example.com", Subject: "s", Body: "b"}); err != nil {
			t.Fatalf("notify failed: %v", err)
		}
	}

	deadline := time.After(2 * time.Second)
	for sink.count() < 10 {
		select {
		case <-deadline:
			t.Fatalf("expected 10 deliveries, got %d", sink.count())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestDispatcher_ShardIsStable(t *testing.T) {
	d := NewDispatcher(8, &collectingSink{}, zerolog.Nop())

	first := d.shardIndex("alice@example.com")
	for i := 0; i < 100; i++ {
		if d.shardIndex("alice@example.com") != first {
			t.Fatalf("shard index not deterministic")
		}
	}
}

func TestDispatcher_DefaultWorkerCount(t *testing.T) {
	d := NewDispatcher(0, &collectingSink{}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
}
