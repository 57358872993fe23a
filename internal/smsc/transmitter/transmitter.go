package transmitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aradsms/smsc/internal/smsc/domain"
)

// Transmitter emits a delivered message. An error means the message did not
// leave the center and must stay queued.
type Transmitter interface {
	Transmit(ctx context.Context, t domain.Transmission) error
	GetName() string
}

// WriterTransmitter prints each transmission as "source -> destination : message".
type WriterTransmitter struct {
	mu     sync.Mutex
	w      io.Writer
	logger *slog.Logger
}

// NewWriterTransmitter creates a WriterTransmitter on w (normally stdout).
func NewWriterTransmitter(w io.Writer, logger *slog.Logger) *WriterTransmitter {
	return &WriterTransmitter{
		w:      w,
		logger: logger.With("transmitter", "writer"),
	}
}

func (t *WriterTransmitter) Transmit(ctx context.Context, tr domain.Transmission) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := fmt.Fprintln(t.w, tr.String()); err != nil {
		t.logger.ErrorContext(ctx, "Failed to write transmission", "error", err, "source", tr.Source, "destination", tr.Destination)
		return fmt.Errorf("write transmission: %w", err)
	}
	return nil
}

func (t *WriterTransmitter) GetName() string {
	return "writer"
}

// Publisher is the part of the NATS client the NATS transmitter needs.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// NATSTransmitter publishes each transmission as a JSON event.
type NATSTransmitter struct {
	publisher Publisher
	subject   string
	logger    *slog.Logger
}

func NewNATSTransmitter(publisher Publisher, subject string, logger *slog.Logger) *NATSTransmitter {
	return &NATSTransmitter{
		publisher: publisher,
		subject:   subject,
		logger:    logger.With("transmitter", "nats", "subject", subject),
	}
}

func (t *NATSTransmitter) Transmit(ctx context.Context, tr domain.Transmission) error {
	payload, err := json.Marshal(tr)
	if err != nil {
		return fmt.Errorf("marshal transmission: %w", err)
	}
	if err := t.publisher.Publish(ctx, t.subject, payload); err != nil {
		t.logger.ErrorContext(ctx, "Failed to publish transmission", "error", err, "source", tr.Source, "destination", tr.Destination)
		return err
	}
	t.logger.DebugContext(ctx, "Transmission published", "source", tr.Source, "destination", tr.Destination)
	return nil
}

func (t *NATSTransmitter) GetName() string {
	return "nats"
}
