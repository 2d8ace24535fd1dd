package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/zebtan/courier-backoffice/internal/api/metrics"
	"github.com/zebtan/courier-backoffice/internal/core/domain"
	"github.com/zebtan/courier-backoffice/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// DedupGuard decides whether a notification for this transition has already
// been claimed by another writer.
type DedupGuard interface {
	ShouldSend(ctx context.Context, trackingNumber, status string) (bool, error)
}

// Dispatcher routes status-change events to a fixed set of workers using
// consistent hashing on the tracking number, guaranteeing per-shipment
// notification ordering. Delivery is fire-and-forget relative to the
// reconciliation pass: failures are logged and counted, never propagated.
type Dispatcher struct {
	workers  []chan domain.StatusChangeEvent
	notifier ports.Notifier
	guard    DedupGuard
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers. A nil
// guard disables deduplication. If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, notifier ports.Notifier, guard DedupGuard, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan domain.StatusChangeEvent, numWorkers),
		notifier: notifier,
		guard:    guard,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.StatusChangeEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends an event to the worker responsible for its tracking number.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(event domain.StatusChangeEvent) {
	d.workers[d.shardIndex(event.TrackingNumber)] <- event
}

// shardIndex maps a tracking number deterministically to a worker index.
func (d *Dispatcher) shardIndex(trackingNumber string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(trackingNumber))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.StatusChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			d.deliver(ctx, id, event)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, workerID int, event domain.StatusChangeEvent) {
	if d.guard != nil {
		send, err := d.guard.ShouldSend(ctx, event.TrackingNumber, string(event.NewStatus))
		if err != nil {
			// Degrade to sending: a flaky dedup store must not silently
			// swallow notifications.
			d.log.Warn().Err(err).Str("tracking_number", event.TrackingNumber).Msg("dedup check failed, sending anyway")
		} else if !send {
			metrics.NotificationsTotal.WithLabelValues("dedup").Inc()
			d.log.Debug().
				Str("tracking_number", event.TrackingNumber).
				Str("status", string(event.NewStatus)).
				Msg("duplicate notification suppressed")
			return
		}
	}

	if err := d.notifier.Send(ctx, event); err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("tracking_number", event.TrackingNumber).
			Str("status", string(event.NewStatus)).
			Int("worker_id", workerID).
			Msg("notification delivery failed")
		return
	}

	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
}
