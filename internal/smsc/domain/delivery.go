package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DeliveryKey identifies a pending delivery for deduplication. The enqueue
// time is not part of it.
type DeliveryKey struct {
	Source      string
	Destination string
	Message     string
}

func (k DeliveryKey) String() string {
	return fmt.Sprintf("%s -> %s : %s", k.Source, k.Destination, k.Message)
}

// PendingDelivery is a message waiting for both endpoints to be subscribed.
type PendingDelivery struct {
	ID          uuid.UUID `json:"id"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Message     string    `json:"message"`
	EnqueuedAt  time.Time `json:"enqueued_at"`
}

// NewPendingDelivery creates a queue entry for the given key.
func NewPendingDelivery(key DeliveryKey, enqueuedAt time.Time) *PendingDelivery {
	return &PendingDelivery{
		ID:          uuid.New(),
		Source:      key.Source,
		Destination: key.Destination,
		Message:     key.Message,
		EnqueuedAt:  enqueuedAt,
	}
}

// Key returns the dedup identity of the entry.
func (p *PendingDelivery) Key() DeliveryKey {
	return DeliveryKey{Source: p.Source, Destination: p.Destination, Message: p.Message}
}

// Transmission is the observable result of a successful delivery.
type Transmission struct {
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Message     string    `json:"message"`
	DeliveredAt time.Time `json:"delivered_at"`
}

func (t Transmission) String() string {
	return t.Source + " -> " + t.Destination + " : " + t.Message
}

// DestinationKind selects how a destination is resolved.
type DestinationKind int

const (
	DestinationDirect DestinationKind = iota
	DestinationGroup
	DestinationBroadcast
)

func (k DestinationKind) String() string {
	switch k {
	case DestinationDirect:
		return "direct"
	case DestinationGroup:
		return "group"
	case DestinationBroadcast:
		return "broadcast"
	default:
		return "unknown"
	}
}

// BroadcastMarker is the destination token addressing every account.
const BroadcastMarker = "broadcast"

// Destination is a parsed destination list.
type Destination struct {
	Kind  DestinationKind
	Names []string // direct only
	Group string   // group only
}

// DirectTo addresses the given account names.
func DirectTo(names ...string) Destination {
	return Destination{Kind: DestinationDirect, Names: names}
}

// ToGroup addresses every account matched by a group's patterns.
func ToGroup(name string) Destination {
	return Destination{Kind: DestinationGroup, Group: name}
}

// Broadcast addresses every registered account.
func Broadcast() Destination {
	return Destination{Kind: DestinationBroadcast}
}

// ParseDestination classifies a tokenized destination list. Only the first
// token decides between broadcast and group.
func ParseDestination(tokens []string) Destination {
	if len(tokens) == 0 {
		return DirectTo()
	}
	switch first := tokens[0]; {
	case first == BroadcastMarker:
		return Broadcast()
	case strings.HasPrefix(first, "group"):
		return ToGroup(first)
	default:
		return DirectTo(tokens...)
	}
}

func (d Destination) String() string {
	switch d.Kind {
	case DestinationGroup:
		return d.Group
	case DestinationBroadcast:
		return BroadcastMarker
	default:
		return strings.Join(d.Names, ",")
	}
}
