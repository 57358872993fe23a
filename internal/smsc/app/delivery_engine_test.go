package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aradsms/smsc/internal/smsc/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEngineTest(t *testing.T) *center {
	t.Helper()
	c := newCenter()
	c.subscriptions.Subscribe(name1, number1)
	c.subscriptions.Subscribe(name2, number2)
	return c
}

func TestDeliveryEngine_Dispatch_DeliversWhenBothSubscribed(t *testing.T) {
	c := setupEngineTest(t)

	c.engine.Dispatch(context.Background(), number1, number2, message)

	assert.Equal(t, []string{transmission(number1, number2, message)}, c.transmitter.Sent())
	assert.Equal(t, 0, c.queue.Len())
}

func TestDeliveryEngine_Dispatch_QueuesWhenDestinationUnsubscribed(t *testing.T) {
	c := setupEngineTest(t)
	c.subscriptions.Unsubscribe(name2)

	c.engine.Dispatch(context.Background(), number1, number2, message)

	assert.Empty(t, c.transmitter.Sent())
	pending := c.engine.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, number1, pending[0].Source)
	assert.Equal(t, number2, pending[0].Destination)
	assert.Equal(t, message, pending[0].Message)
}

func TestDeliveryEngine_Dispatch_QueuesWhenSourceUnsubscribed(t *testing.T) {
	c := setupEngineTest(t)
	c.subscriptions.Unsubscribe(name1)

	c.engine.Dispatch(context.Background(), number1, number2, message)

	assert.Empty(t, c.transmitter.Sent())
	assert.Equal(t, 1, c.queue.Len())
}

func TestDeliveryEngine_Dispatch_DeduplicatesQueuedMessages(t *testing.T) {
	c := setupEngineTest(t)
	c.subscriptions.Unsubscribe(name2)

	c.engine.Dispatch(context.Background(), number1, number2, message)
	first := c.engine.Pending()[0]
	c.engine.Dispatch(context.Background(), number1, number2, message)
	c.engine.Dispatch(context.Background(), number1, number2, "other")

	pending := c.engine.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID)
	assert.True(t, first.EnqueuedAt.Equal(pending[0].EnqueuedAt))
}

func TestDeliveryEngine_Dispatch_RemovesQueuedEntryOnDirectDelivery(t *testing.T) {
	c := setupEngineTest(t)
	c.queue.EnqueueIfAbsent(domain.DeliveryKey{Source: number1, Destination: number2, Message: message}, time.Now())

	c.engine.Dispatch(context.Background(), number1, number2, message)

	assert.Len(t, c.transmitter.Sent(), 1)
	assert.Equal(t, 0, c.queue.Len())
}

func TestDeliveryEngine_Dispatch_KeepsMessageWhenTransmitFails(t *testing.T) {
	c := setupEngineTest(t)
	c.transmitter.failNext = 1

	c.engine.Dispatch(context.Background(), number1, number2, message)
	assert.Empty(t, c.transmitter.Sent())
	assert.Equal(t, 1, c.queue.Len())

	res := c.engine.Sweep(context.Background())
	assert.Equal(t, SweepResult{Attempted: 1, Delivered: 1, Remaining: 0}, res)
	assert.Equal(t, []string{transmission(number1, number2, message)}, c.transmitter.Sent())
}

func TestDeliveryEngine_Sweep_RedeliversToCurrentSubscriptions(t *testing.T) {
	c := setupEngineTest(t)
	now := time.Now()
	c.queue.EnqueueIfAbsent(domain.DeliveryKey{Source: number1, Destination: number2, Message: message}, now)
	c.queue.EnqueueIfAbsent(domain.DeliveryKey{Source: number1, Destination: number3, Message: message}, now)

	res := c.engine.Sweep(context.Background())

	assert.Equal(t, SweepResult{Attempted: 2, Delivered: 1, Remaining: 1}, res)
	pending := c.engine.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, number3, pending[0].Destination)
}

// An old entry is removed only because both endpoints are subscribed; there
// is no age-based expiry.
func TestDeliveryEngine_Sweep_OldEntriesLeaveOnlyByDelivery(t *testing.T) {
	c := setupEngineTest(t)
	sixMinutesAgo := time.Now().Add(-6 * time.Minute)
	c.queue.EnqueueIfAbsent(domain.DeliveryKey{Source: number1, Destination: number2, Message: message}, sixMinutesAgo)
	c.queue.EnqueueIfAbsent(domain.DeliveryKey{Source: number1, Destination: number3, Message: message}, sixMinutesAgo)

	c.engine.Sweep(context.Background())

	pending := c.engine.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, number3, pending[0].Destination)
}

func TestDeliveryEngine_Sweep_DoesNotRedeliverAfterSuccess(t *testing.T) {
	c := setupEngineTest(t)
	c.subscriptions.Unsubscribe(name2)
	c.engine.Dispatch(context.Background(), number1, number2, message)

	c.subscriptions.Subscribe(name2, number2)
	c.engine.Sweep(context.Background())
	c.engine.Sweep(context.Background())
	c.engine.Sweep(context.Background())

	assert.Equal(t, []string{transmission(number1, number2, message)}, c.transmitter.Sent())
	assert.Equal(t, 0, c.queue.Len())
}

func TestDeliveryEngine_Sweep_RequeuesOnTransmitFailure(t *testing.T) {
	c := setupEngineTest(t)
	enqueuedAt := time.Now().Add(-time.Minute)
	c.queue.EnqueueIfAbsent(domain.DeliveryKey{Source: number1, Destination: number2, Message: message}, enqueuedAt)
	c.transmitter.failNext = 1

	res := c.engine.Sweep(context.Background())

	assert.Equal(t, SweepResult{Attempted: 1, Delivered: 0, Remaining: 1}, res)
	pending := c.engine.Pending()
	require.Len(t, pending, 1)
	assert.True(t, enqueuedAt.Equal(pending[0].EnqueuedAt))
}

func TestDeliveryEngine_Sweep_EmptyQueue(t *testing.T) {
	c := setupEngineTest(t)
	assert.Equal(t, SweepResult{}, c.engine.Sweep(context.Background()))
}

func TestDeliveryEngine_ConcurrentDispatchAndSweep(t *testing.T) {
	c := setupEngineTest(t)
	c.subscriptions.Unsubscribe(name2)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.engine.Dispatch(context.Background(), number1, number2, message)
		}()
		go func() {
			defer wg.Done()
			c.engine.Sweep(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, c.queue.Len())
	assert.Empty(t, c.transmitter.Sent())

	c.subscriptions.Subscribe(name2, number2)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.engine.Sweep(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{transmission(number1, number2, message)}, c.transmitter.Sent())
	assert.Equal(t, 0, c.queue.Len())
}
