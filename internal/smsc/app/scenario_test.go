package app

import (
	"context"
	"testing"

	"github.com/aradsms/smsc/internal/smsc/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerAccounts(t *testing.T, c *center, accounts ...domain.Account) {
	t.Helper()
	for _, a := range accounts {
		_, err := c.accountSvc.RegisterNumber(context.Background(), a.Name, a.Number)
		require.NoError(t, err)
	}
}

func subscribe(t *testing.T, c *center, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, c.subscriptionSvc.Subscribe(context.Background(), n))
	}
}

func TestScenario_DirectMessageBothSubscribed(t *testing.T) {
	c := newCenter()
	registerAccounts(t, c, domain.Account{Name: name1, Number: number1}, domain.Account{Name: name2, Number: number2})
	subscribe(t, c, name1, name2)

	_, err := c.router.Route(context.Background(), name1, domain.DirectTo(name2), "hi")

	require.NoError(t, err)
	assert.Equal(t, []string{"+36991212321 -> +36991234321 : hi"}, c.transmitter.Sent())
	assert.Equal(t, 0, c.queue.Len())
}

func TestScenario_QueuedUntilRecipientSubscribes(t *testing.T) {
	c := newCenter()
	ctx := context.Background()
	registerAccounts(t, c, domain.Account{Name: name1, Number: number1}, domain.Account{Name: name2, Number: number2})
	subscribe(t, c, name1)

	_, err := c.router.Route(ctx, name1, domain.DirectTo(name2), "hi")
	require.NoError(t, err)

	assert.Empty(t, c.transmitter.Sent())
	pending := c.engine.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, domain.DeliveryKey{Source: number1, Destination: number2, Message: "hi"}, pending[0].Key())

	subscribe(t, c, name2)
	c.engine.Sweep(ctx)

	assert.Equal(t, []string{"+36991212321 -> +36991234321 : hi"}, c.transmitter.Sent())
	assert.Equal(t, 0, c.queue.Len())
}

func TestScenario_GroupMessage(t *testing.T) {
	c := newCenter()
	ctx := context.Background()
	_, err := c.accountSvc.RegisterGroup(ctx, group1, domain.SplitPatterns("+36991234321,+3699123*"))
	require.NoError(t, err)
	registerAccounts(t, c,
		domain.Account{Name: name1, Number: number1},
		domain.Account{Name: name2, Number: number2},
		domain.Account{Name: name3, Number: number3},
	)
	subscribe(t, c, name1, name2, name3)

	_, err = c.router.Route(ctx, name1, domain.ToGroup(group1), message)
	require.NoError(t, err)

	// number2 is matched by the literal and by the wildcard pattern.
	assert.Equal(t, []string{
		transmission(number1, number2, message),
		transmission(number1, number2, message),
		transmission(number1, number3, message),
	}, c.transmitter.Sent())
}

func TestScenario_UnregisteredDestinationIsSkipped(t *testing.T) {
	c := newCenter()
	registerAccounts(t, c, domain.Account{Name: name1, Number: number1})
	subscribe(t, c, name1)

	n, err := c.router.Route(context.Background(), name1, domain.DirectTo("number99"), "hi")

	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, c.transmitter.Sent())
	assert.Equal(t, 0, c.queue.Len())
}

func TestScenario_UnsubscribedSenderCannotRoute(t *testing.T) {
	c := newCenter()
	registerAccounts(t, c, domain.Account{Name: name1, Number: number1}, domain.Account{Name: name2, Number: number2})
	subscribe(t, c, name2)

	_, err := c.router.Route(context.Background(), name1, domain.DirectTo(name2), "hi")

	assert.ErrorIs(t, err, domain.ErrNotSubscribed)
	assert.Equal(t, 0, c.queue.Len())
}
