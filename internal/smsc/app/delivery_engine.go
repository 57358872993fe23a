package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/aradsms/smsc/internal/smsc/domain"
	"github.com/aradsms/smsc/internal/smsc/transmitter"
	"github.com/prometheus/client_golang/prometheus"
)

// Reachability answers whether a number currently has a subscription.
type Reachability interface {
	IsSubscribedByNumber(number string) bool
}

// SweepResult summarizes one redelivery pass.
type SweepResult struct {
	Attempted int
	Delivered int
	Remaining int
}

// DeliveryEngine delivers single source -> destination messages, queueing
// the ones that cannot be delivered yet and retrying them on Sweep.
type DeliveryEngine struct {
	subscriptions Reachability
	queue         domain.PendingDeliveryQueue
	transmitter   transmitter.Transmitter
	logger        *slog.Logger
	now           func() time.Time
}

// NewDeliveryEngine creates a DeliveryEngine.
func NewDeliveryEngine(subscriptions Reachability, queue domain.PendingDeliveryQueue, tr transmitter.Transmitter, logger *slog.Logger) *DeliveryEngine {
	return &DeliveryEngine{
		subscriptions: subscriptions,
		queue:         queue,
		transmitter:   tr,
		logger:        logger.With("component", "delivery_engine"),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Dispatch delivers the message if both numbers are subscribed and drops any
// queued entry for it; otherwise it queues the message unless an entry with
// the same source, destination and message is already queued.
func (e *DeliveryEngine) Dispatch(ctx context.Context, source, destination, message string) {
	key := domain.DeliveryKey{Source: source, Destination: destination, Message: message}
	e.logger.InfoContext(ctx, "Sending message", "source", source, "destination", destination, "message", message)

	defer e.updateQueueGauge()

	if !e.reachable(source, destination) {
		if e.queue.EnqueueIfAbsent(key, e.now()) {
			e.logger.InfoContext(ctx, "Destination unreachable, message queued for redelivery", "source", source, "destination", destination)
			dispatchesCounter.WithLabelValues(originDirect, outcomeQueued).Inc()
		} else {
			e.logger.DebugContext(ctx, "Message already queued for redelivery", "source", source, "destination", destination)
			dispatchesCounter.WithLabelValues(originDirect, outcomeAlreadyQueued).Inc()
		}
		return
	}

	if err := e.transmit(ctx, key); err != nil {
		e.queue.EnqueueIfAbsent(key, e.now())
		dispatchesCounter.WithLabelValues(originDirect, outcomeTransmitError).Inc()
		return
	}
	e.queue.Remove(key)
	dispatchesCounter.WithLabelValues(originDirect, outcomeDelivered).Inc()
}

// Sweep retries every queued message once. Entries are claimed before they
// are transmitted, so an entry already delivered by a concurrent Dispatch is
// not emitted again. Entries enqueued during the sweep wait for the next one.
func (e *DeliveryEngine) Sweep(ctx context.Context) SweepResult {
	timer := prometheus.NewTimer(sweepDurationHist)
	defer timer.ObserveDuration()
	defer e.updateQueueGauge()

	pending := e.queue.Snapshot()
	e.logger.InfoContext(ctx, "Redelivering messages", "count", len(pending))

	result := SweepResult{Attempted: len(pending)}
	for _, entry := range pending {
		key := entry.Key()
		e.logger.DebugContext(ctx, "Retrying queued message", "id", entry.ID, "source", entry.Source, "destination", entry.Destination, "enqueued_at", entry.EnqueuedAt)

		if !e.reachable(entry.Source, entry.Destination) {
			dispatchesCounter.WithLabelValues(originSweep, outcomeAlreadyQueued).Inc()
			continue
		}
		if !e.queue.Remove(key) {
			continue
		}
		if err := e.transmit(ctx, key); err != nil {
			e.queue.Requeue(entry)
			dispatchesCounter.WithLabelValues(originSweep, outcomeTransmitError).Inc()
			continue
		}
		result.Delivered++
		dispatchesCounter.WithLabelValues(originSweep, outcomeDelivered).Inc()
	}
	result.Remaining = e.queue.Len()

	if result.Delivered > 0 {
		e.logger.InfoContext(ctx, "Redelivery sweep finished", "attempted", result.Attempted, "delivered", result.Delivered, "remaining", result.Remaining)
	}
	return result
}

// Pending returns the queued messages in enqueue order.
func (e *DeliveryEngine) Pending() []*domain.PendingDelivery {
	return e.queue.Snapshot()
}

func (e *DeliveryEngine) reachable(source, destination string) bool {
	return e.subscriptions.IsSubscribedByNumber(source) && e.subscriptions.IsSubscribedByNumber(destination)
}

func (e *DeliveryEngine) transmit(ctx context.Context, key domain.DeliveryKey) error {
	tr := domain.Transmission{
		Source:      key.Source,
		Destination: key.Destination,
		Message:     key.Message,
		DeliveredAt: e.now(),
	}
	if err := e.transmitter.Transmit(ctx, tr); err != nil {
		e.logger.WarnContext(ctx, "Transmission failed, message kept for redelivery", "error", err, "transmitter", e.transmitter.GetName(), "source", key.Source, "destination", key.Destination)
		return err
	}
	return nil
}

func (e *DeliveryEngine) updateQueueGauge() {
	pendingDeliveriesGauge.Set(float64(e.queue.Len()))
}
