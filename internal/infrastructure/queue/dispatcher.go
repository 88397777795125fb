package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/commerce/internal/api/metrics"
	"github.com/storefront/commerce/internal/core/domain"
	"github.com/storefront/commerce/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
	publishTimeout = 10 * time.Second
)

// Dispatcher routes domain events to a fixed set of workers using consistent
// hashing on the event key, guaranteeing per-aggregate ordering. Workers hand
// each event to the publisher.
type Dispatcher struct {
	workers   []chan domain.Event
	publisher ports.EventPublisher
	log       zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, publisher ports.EventPublisher, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan domain.Event, numWorkers),
		publisher: publisher,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Event, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers exit once Close has been
// called and their queue is drained.
func (d *Dispatcher) Start() {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(i, ch)
	}
}

// Emit queues an event on the worker responsible for its key. It never
// blocks: when that worker's queue is full the event is dropped and logged.
func (d *Dispatcher) Emit(event domain.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn().Str("type", event.Type).Str("key", event.Key).Msg("event emitted after shutdown")
		return
	}

	idx := d.shardIndex(event.Key)
	select {
	case d.workers[idx] <- event:
		metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.EventsDroppedTotal.WithLabelValues(event.Type).Inc()
		d.log.Error().Str("type", event.Type).Str("key", event.Key).Int("worker_id", idx).Msg("event queue full, event dropped")
	}
}

// Close stops accepting events and waits until the queued ones are
// published or ctx expires.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
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

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(id int, ch <-chan domain.Event) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for event := range ch {
		metrics.EventsQueueDepth.WithLabelValues(label).Set(float64(len(ch)))

		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		err := d.publisher.Publish(ctx, event)
		cancel()

		result := "ok"
		if err != nil {
			result = "error"
			d.log.Error().Err(err).
				Str("type", event.Type).
				Str("key", event.Key).
				Int("worker_id", id).
				Msg("event publish failed")
		}
		metrics.EventsPublishedTotal.WithLabelValues(event.Type, result).Inc()
		metrics.EventPublishDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	}
}
