package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smsc",
			Name:      "api_requests_total",
			Help:      "Total API requests by switching center operation and status code.",
		},
		[]string{"operation", "status_code"},
	)

	apiRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "smsc",
			Name:      "api_request_duration_seconds",
			Help:      "Duration of API requests by switching center operation.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

const unknownOperation = "unknown"

type operationKey struct{}

// operationLabel is filled in by the route matched further down the chain.
type operationLabel struct {
	name string
}

// Operation names the switching center operation served by a route so
// OperationMetricsMiddleware can label it.
func Operation(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if label, ok := r.Context().Value(operationKey{}).(*operationLabel); ok {
				label.name = name
			}
			next.ServeHTTP(w, r)
		})
	}
}

// OperationMetricsMiddleware records request counts and latencies per
// operation. Requests that match no named route are labelled "unknown".
func OperationMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		label := &operationLabel{name: unknownOperation}
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), operationKey{}, label)))

		statusCode := ww.Status()
		if statusCode == 0 {
			statusCode = http.StatusOK
		}
		apiRequestDurationSeconds.WithLabelValues(label.name).Observe(time.Since(start).Seconds())
		apiRequestsTotal.WithLabelValues(label.name, strconv.Itoa(statusCode)).Inc()
	})
}
