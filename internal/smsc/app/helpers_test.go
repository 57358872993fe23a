package app

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/aradsms/smsc/internal/smsc/domain"
	"github.com/aradsms/smsc/internal/smsc/repository/memory"
	"github.com/stretchr/testify/mock"
)

const (
	name1   = "number1"
	name2   = "number2"
	name3   = "number3"
	group1  = "group1"
	number1 = "+36991212321"
	number2 = "+36991234321"
	number3 = "+36991234567"
	message = "anyMessage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingTransmitter collects transmissions; failNext makes the next
// Transmit calls fail.
type recordingTransmitter struct {
	mu       sync.Mutex
	sent     []string
	failNext int
}

func (r *recordingTransmitter) Transmit(_ context.Context, t domain.Transmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext > 0 {
		r.failNext--
		return io.ErrClosedPipe
	}
	r.sent = append(r.sent, t.String())
	return nil
}

func (r *recordingTransmitter) GetName() string { return "recording" }

func (r *recordingTransmitter) Sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.sent))
	copy(out, r.sent)
	return out
}

// MockDispatcher is a testify mock of Dispatcher.
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, source, destination, msg string) {
	m.Called(ctx, source, destination, msg)
}

// center wires the real in-memory components together.
type center struct {
	accounts      *memory.AccountDirectory
	groups        *memory.GroupRegistry
	subscriptions *memory.SubscriptionRegistry
	queue         *memory.PendingQueue
	transmitter   *recordingTransmitter

	accountSvc      *AccountService
	subscriptionSvc *SubscriptionService
	engine          *DeliveryEngine
	router          *MessageRouter
}

func newCenter() *center {
	logger := discardLogger()
	c := &center{
		accounts:      memory.NewAccountDirectory(),
		groups:        memory.NewGroupRegistry(),
		subscriptions: memory.NewSubscriptionRegistry(),
		queue:         memory.NewPendingQueue(),
		transmitter:   &recordingTransmitter{},
	}
	c.accountSvc = NewAccountService(c.accounts, c.groups, logger)
	c.subscriptionSvc = NewSubscriptionService(c.subscriptions, c.accounts, logger)
	c.engine = NewDeliveryEngine(c.subscriptions, c.queue, c.transmitter, logger)
	c.router = NewMessageRouter(c.accounts, c.groups, c.subscriptions, c.engine, logger)
	return c
}

func transmission(src, dst, msg string) string {
	return src + " -> " + dst + " : " + msg
}
