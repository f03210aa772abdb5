package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/propstay/property-api/internal/api/metrics"
	"github.com/propstay/property-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
)

// Dispatcher fans notifications out to a fixed set of workers using
// consistent hashing on the recipient, so messages to the same address keep
// their order. It implements ports.Notifier itself: Notify enqueues and
// returns immediately, which is the fire-and-forget contract the auth
// workflow expects.
type Dispatcher struct {
	workers []chan ports.Notification
	sink    ports.Notifier
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers in
// front of the given sink. If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sink ports.Notifier, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.Notification, numWorkers),
		sink:    sink,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Notification, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Notify routes the message to the worker owning its recipient. Non-blocking
// up to channelBuffer capacity.
func (d *Dispatcher) Notify(_ context.Context, n ports.Notification) error {
	i := d.shardIndex(n.To)
	d.workers[i] <- n
	metrics.NotificationsQueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(len(d.workers[i])))
	return nil
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipient))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.Notification) {
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			if err := d.sink.Notify(ctx, n); err != nil {
				metrics.NotificationsTotal.WithLabelValues("error").Inc()
				d.log.Error().Err(err).
					Str("to", n.To).
					Int("worker_id", id).
					Msg("notification delivery failed")
				continue
			}
			metrics.NotificationsTotal.WithLabelValues("sent").Inc()
			metrics.NotificationsQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
		}
	}
}
