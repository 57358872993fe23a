package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dispatchesCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smsc",
			Name:      "dispatches_total",
			Help:      "Total delivery attempts by outcome.",
		},
		[]string{"origin", "outcome"}, // origin: direct|sweep, outcome: delivered|queued|already_queued|transmit_error
	)

	pendingDeliveriesGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "smsc",
			Name:      "pending_deliveries",
			Help:      "Messages currently waiting for redelivery.",
		},
	)

	sweepDurationHist = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "smsc",
			Name:      "sweep_duration_seconds",
			Help:      "Duration of redelivery sweeps.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	routesCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smsc",
			Name:      "routes_total",
			Help:      "Total routed send requests by destination kind and status.",
		},
		[]string{"kind", "status"}, // status: ok|not_subscribed|not_registered
	)

	registrationsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smsc",
			Name:      "registrations_total",
			Help:      "Total account and group registrations by status.",
		},
		[]string{"entity", "status"},
	)
)

const (
	originDirect = "direct"
	originSweep  = "sweep"

	outcomeDelivered     = "delivered"
	outcomeQueued        = "queued"
	outcomeAlreadyQueued = "already_queued"
	outcomeTransmitError = "transmit_error"
)
