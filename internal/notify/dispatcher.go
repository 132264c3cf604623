package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"storefront-api/internal/logger"
)

// ErrQueueFull is returned by Enqueue when the backlog is at capacity.
var ErrQueueFull = errors.New("notification queue full")

// ErrClosed is returned by Enqueue after Shutdown.
var ErrClosed = errors.New("dispatcher closed")

const sendTimeout = 10 * time.Second

// Dispatcher feeds a sink from a bounded queue with a fixed set of workers.
type Dispatcher struct {
	sink   Sink
	logger logrus.FieldLogger
	queue  chan Confirmation
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(sink Sink, workers, queueSize int, log logrus.FieldLogger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	d := &Dispatcher{
		sink:   sink,
		logger: logger.OrDiscard(log).WithField("component", "notify"),
		queue:  make(chan Confirmation, queueSize),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
	return d
}

// Enqueue never blocks. A full queue drops the message.
func (d *Dispatcher) Enqueue(c Confirmation) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	select {
	case d.queue <- c:
		return nil
	default:
		d.logger.WithField("order_id", c.OrderID).Warn("notification queue full, dropping confirmation")
		return ErrQueueFull
	}
}

// Shutdown stops accepting work and waits for queued messages to drain or
// for ctx to end.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for c := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		if err := d.sink.Send(ctx, c); err != nil {
			d.logger.WithError(err).WithField("order_id", c.OrderID).Error("send order confirmation")
		}
		cancel()
	}
}
