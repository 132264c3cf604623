package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingSink struct {
	mu    sync.Mutex
	sent  []string
	err   error
	block chan struct{}
}

func (s *recordingSink) Send(_ context.Context, c Confirmation) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, c.OrderID)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func TestDispatcher_DeliversAndDrainsOnShutdown(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink, 2, 10, nil)

	for _, id := range []string{"o1", "o2", "o3"} {
		if err := d.Enqueue(Confirmation{OrderID: id}); err != nil {
			t.Fatalf("Enqueue %s: %v", id, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if sink.count() != 3 {
		t.Fatalf("expected 3 deliveries, got %d", sink.count())
	}
	if err := d.Enqueue(Confirmation{OrderID: "late"}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after shutdown, got %v", err)
	}
}

func TestDispatcher_SinkErrorsAreSwallowed(t *testing.T) {
	sink := &recordingSink{err: errors.New("smtp down")}
	d := NewDispatcher(sink, 1, 1, nil)

	if err := d.Enqueue(Confirmation{OrderID: "o1"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := d.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if sink.count() != 1 {
		t.Fatalf("expected the failing send to be attempted once, got %d", sink.count())
	}
}

func TestDispatcher_FullQueueDrops(t *testing.T) {
	sink := &recordingSink{block: make(chan struct{})}
	d := NewDispatcher(sink, 1, 1, nil)

	// The worker takes the first message and blocks; the second fills the queue.
	if err := d.Enqueue(Confirmation{OrderID: "o1"}); err != nil {
		t.Fatalf("Enqueue o1: %v", err)
	}
	deadline := time.Now().Add(time.Second)
	for len(d.queue) != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := d.Enqueue(Confirmation{OrderID: "o2"}); err != nil {
		t.Fatalf("Enqueue o2: %v", err)
	}
	if err := d.Enqueue(Confirmation{OrderID: "o3"}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}

	close(sink.block)
	if err := d.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if sink.count() != 2 {
		t.Fatalf("expected 2 deliveries, got %d", sink.count())
	}
}
