package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aradsms/smsc/internal/smsc/domain"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AccountManager registers endpoints and groups.
type AccountManager interface {
	RegisterNumber(ctx context.Context, name, number string) (domain.Account, error)
	RegisterGroup(ctx context.Context, name string, patterns []string) (domain.Group, error)
	Accounts() []domain.Account
	Group(name string) (domain.Group, bool)
}

// SubscriptionManager toggles and reports endpoint reachability.
type SubscriptionManager interface {
	Subscribe(ctx context.Context, name string) error
	Unsubscribe(ctx context.Context, name string)
	IsSubscribed(name string) bool
}

type MessageRouter interface {
	Route(ctx context.Context, sourceName string, dest domain.Destination, message string) (int, error)
}

// QueueInspector lists messages waiting for redelivery.
type QueueInspector interface {
	Pending() []*domain.PendingDelivery
}

// Handler serves the switching center operations over HTTP.
type Handler struct {
	accounts      AccountManager
	subscriptions SubscriptionManager
	router        MessageRouter
	queue         QueueInspector
	validate      *validator.Validate
	logger        *slog.Logger
}

func NewHandler(
	accounts AccountManager,
	subscriptions SubscriptionManager,
	router MessageRouter,
	queue QueueInspector,
	validate *validator.Validate,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		accounts:      accounts,
		subscriptions: subscriptions,
		router:        router,
		queue:         queue,
		validate:      validate,
		logger:        logger.With("handler", "smsc"),
	}
}

// RegisterRoutes registers the API routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(Operation("register_number")).Post("/accounts", h.RegisterAccount)
	r.With(Operation("list_accounts")).Get("/accounts", h.ListAccounts)
	r.With(Operation("register_group")).Post("/groups", h.RegisterGroup)
	r.With(Operation("get_group")).Get("/groups/{name}", h.GetGroup)
	r.With(Operation("get_subscription")).Get("/subscriptions/{name}", h.GetSubscription)
	r.With(Operation("subscribe")).Put("/subscriptions/{name}", h.Subscribe)
	r.With(Operation("unsubscribe")).Delete("/subscriptions/{name}", h.Unsubscribe)
	r.With(Operation("send_message")).Post("/messages", h.SendMessage)
	r.With(Operation("list_redeliveries")).Get("/redeliveries", h.ListRedeliveries)
}

// NewRouter builds the chi router with the middleware stack, health check,
// metrics endpoint and API routes.
func NewRouter(h *Handler, requestTimeout time.Duration) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(requestTimeout))
	r.Use(OperationMetricsMiddleware)

	r.With(Operation("health")).Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "SMSC is healthy"})
	})
	r.With(Operation("metrics")).Handle("/metrics", promhttp.Handler())
	h.RegisterRoutes(r)
	return r
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			slog.Default().Error("Failed to write JSON response", "error", err)
		}
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// mapDomainErrorToHTTPStatus converts switching center errors to HTTP status codes.
func mapDomainErrorToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotRegistered):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotSubscribed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With("request_id", chimiddleware.GetReqID(r.Context()))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return false
	}
	if err := h.validate.StructCtx(r.Context(), dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return false
	}
	return true
}

func (h *Handler) RegisterAccount(w http.ResponseWriter, r *http.Request) {
	var req RegisterAccountRequest
	if !h.decode(w, r, &req) {
		return
	}

	account, err := h.accounts.RegisterNumber(r.Context(), req.Name, req.Number)
	if err != nil {
		h.requestLogger(r).WarnContext(r.Context(), "Account registration rejected", "name", req.Name, "error", err)
		respondWithError(w, mapDomainErrorToHTTPStatus(err), "Failed to register account: "+err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, account)
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.accounts.Accounts())
}

func (h *Handler) RegisterGroup(w http.ResponseWriter, r *http.Request) {
	var req RegisterGroupRequest
	if !h.decode(w, r, &req) {
		return
	}

	group, err := h.accounts.RegisterGroup(r.Context(), req.Name, req.Patterns)
	if err != nil {
		h.requestLogger(r).WarnContext(r.Context(), "Group registration rejected", "group", req.Name, "error", err)
		respondWithError(w, mapDomainErrorToHTTPStatus(err), "Failed to register group: "+err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, GroupResponse{Name: group.Name, Patterns: group.Patterns})
}

func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	group, ok := h.accounts.Group(name)
	if !ok {
		respondWithError(w, http.StatusNotFound, "Group not found")
		return
	}
	respondWithJSON(w, http.StatusOK, GroupResponse{Name: group.Name, Patterns: group.Patterns})
}

func (h *Handler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	respondWithJSON(w, http.StatusOK, SubscriptionResponse{Name: name, Subscribed: h.subscriptions.IsSubscribed(name)})
}

func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.subscriptions.Subscribe(r.Context(), name); err != nil {
		h.requestLogger(r).WarnContext(r.Context(), "Subscription rejected", "name", name, "error", err)
		respondWithError(w, mapDomainErrorToHTTPStatus(err), "Failed to subscribe: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	h.subscriptions.Unsubscribe(r.Context(), chi.URLParam(r, "name"))
	w.WriteHeader(http.StatusNoContent)
}

// SendMessage routes a message. A 202 means every resolved destination was
// either delivered or queued for redelivery.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if !h.decode(w, r, &req) {
		return
	}

	dest := domain.ParseDestination(req.Destinations)
	n, err := h.router.Route(r.Context(), req.Source, dest, req.Message)
	if err != nil {
		h.requestLogger(r).WarnContext(r.Context(), "Message rejected", "source", req.Source, "destination", dest.String(), "error", err)
		respondWithError(w, mapDomainErrorToHTTPStatus(err), "Failed to send message: "+err.Error())
		return
	}
	respondWithJSON(w, http.StatusAccepted, SendMessageResponse{
		Destination: dest.String(),
		Kind:        dest.Kind.String(),
		Dispatches:  n,
	})
}

func (h *Handler) ListRedeliveries(w http.ResponseWriter, r *http.Request) {
	pending := h.queue.Pending()
	resp := ListPendingDeliveriesResponse{
		Deliveries: make([]PendingDeliveryResponse, 0, len(pending)),
		Total:      len(pending),
	}
	for _, p := range pending {
		resp.Deliveries = append(resp.Deliveries, toPendingDeliveryResponse(p))
	}
	respondWithJSON(w, http.StatusOK, resp)
}
