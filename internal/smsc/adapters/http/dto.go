package http

import (
	"time"

	"github.com/aradsms/smsc/internal/smsc/domain"
)

// RegisterAccountRequest is the body of POST /accounts.
type RegisterAccountRequest struct {
	Name   string `json:"name" validate:"required"`
	Number string `json:"number" validate:"required"`
}

// RegisterGroupRequest is the body of POST /groups.
type RegisterGroupRequest struct {
	Name     string   `json:"name" validate:"required"`
	Patterns []string `json:"patterns" validate:"required,min=1,dive,required"`
}

// SendMessageRequest is the body of POST /messages. Destinations follow the
// script syntax: a list of names, a single group name, or "broadcast".
type SendMessageRequest struct {
	Source       string   `json:"source" validate:"required"`
	Destinations []string `json:"destinations" validate:"required,min=1,dive,required"`
	Message      string   `json:"message"`
}

type SendMessageResponse struct {
	Destination string `json:"destination"`
	Kind        string `json:"kind"`
	Dispatches  int    `json:"dispatches"`
}

type GroupResponse struct {
	Name     string   `json:"name"`
	Patterns []string `json:"patterns"`
}

type SubscriptionResponse struct {
	Name       string `json:"name"`
	Subscribed bool   `json:"subscribed"`
}

// PendingDeliveryResponse represents a queued message awaiting redelivery.
type PendingDeliveryResponse struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Message     string    `json:"message"`
	EnqueuedAt  time.Time `json:"enqueued_at"`
}

type ListPendingDeliveriesResponse struct {
	Deliveries []PendingDeliveryResponse `json:"deliveries"`
	Total      int                       `json:"total"`
}

func toPendingDeliveryResponse(p *domain.PendingDelivery) PendingDeliveryResponse {
	return PendingDeliveryResponse{
		ID:          p.ID.String(),
		Source:      p.Source,
		Destination: p.Destination,
		Message:     p.Message,
		EnqueuedAt:  p.EnqueuedAt,
	}
}
