package devserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/api"
	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/model"
	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/realtime"
)

// Options tunes the simulated backend.
type Options struct {
	// TimeoutWindow is how long an order may sit in PENDING before the
	// server times it out and emits order-timeout.
	TimeoutWindow time.Duration

	// Partners seeds the delivery partner directory, keyed by email.
	Partners map[string]api.PartnerDetails
}

// Server simulates the HAYAS order backend.
type Server struct {
	store    *orderStore
	hub      *hub
	opts     Options
	logger   zerolog.Logger
	mu       sync.Mutex
	watchers map[string]*time.Timer // acceptance window watchdog per order
}

// New creates a simulated backend.
func New(opts Options, logger zerolog.Logger) *Server {
	if opts.TimeoutWindow <= 0 {
		opts.TimeoutWindow = 2 * time.Minute
	}
	logger = logger.With().Str("component", "devserver").Logger()
	return &Server{
		store:    newOrderStore(logger),
		hub:      newHub(logger),
		opts:     opts,
		logger:   logger,
		watchers: make(map[string]*time.Timer),
	}
}

// Handler returns the routed HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	mux.HandleFunc("/ws", s.hub.ServeWS)

	mux.HandleFunc("/orders", s.handleOrders)
	mux.HandleFunc("/orders/", s.handleOrderSubpath)
	mux.HandleFunc("/delivery-partner/by-email", s.handlePartnerLookup)
	mux.HandleFunc("/partner/orders/", s.handlePartnerAction)

	var handler http.Handler = mux
	handler = Logging(s.logger)(handler)
	handler = Recovery(s.logger)(handler)
	return handler
}

// Close cancels all watchdogs and drops websocket peers.
func (s *Server) Close() {
	s.mu.Lock()
	for id, t := range s.watchers {
		t.Stop()
		delete(s.watchers, id)
	}
	s.mu.Unlock()
	s.hub.CloseAll()
}

// handleOrders handles POST /orders.
func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", s.logger)
		return
	}

	var req api.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", s.logger)
		return
	}

	switch {
	case req.UserEmail == "":
		writeError(w, http.StatusBadRequest, "userEmail is required", s.logger)
		return
	case len(req.Products) == 0:
		writeError(w, http.StatusBadRequest, "order must contain at least one product", s.logger)
		return
	case !req.Address.Complete():
		writeError(w, http.StatusBadRequest, "address is incomplete", s.logger)
		return
	case s.store.hasActive(req.UserEmail):
		writeError(w, http.StatusConflict, "you already have an active order", s.logger)
		return
	}

	order := s.store.create(req.Products, req.Address, req.UserEmail)
	s.watchOrder(order.ID, order.UserEmail)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "order placed",
		"order":   order,
	})
}

// handleOrderSubpath handles GET /orders/{email} and
// POST /orders/{id}/retry.
func (s *Server) handleOrderSubpath(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/orders/")

	if r.Method == http.MethodPost && strings.HasSuffix(rest, "/retry") {
		s.handleRetry(w, r, strings.TrimSuffix(rest, "/retry"))
		return
	}

	if r.Method != http.MethodGet || rest == "" {
		writeError(w, http.StatusNotFound, "not found", s.logger)
		return
	}

	writeJSON(w, http.StatusOK, s.store.byEmail(rest))
}

// handleRetry re-opens a timed out order and restarts its window.
func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request, orderID string) {
	existing := s.store.get(orderID)
	if existing == nil {
		writeError(w, http.StatusNotFound, "order not found", s.logger)
		return
	}

	order, err := s.store.transition(orderID, model.StatusPending, existing.UserEmail)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error(), s.logger)
		return
	}

	s.watchOrder(order.ID, order.UserEmail)
	s.hub.Broadcast(order.UserEmail, realtime.EventOrderStatusUpdated, *order)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "order re-opened",
		"order":   order,
	})
}

// handlePartnerLookup handles POST /delivery-partner/by-email.
func (s *Server) handlePartnerLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", s.logger)
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", s.logger)
		return
	}

	partner, ok := s.opts.Partners[req.Email]
	if !ok {
		writeError(w, http.StatusNotFound, "delivery partner not found", s.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"userDetails": partner})
}

// handlePartnerAction handles POST /partner/orders/{id}/{action} where
// action is accept, deliver, or cancel. This stands in for the separate
// delivery-partner client.
func (s *Server) handlePartnerAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", s.logger)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/partner/orders/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		writeError(w, http.StatusNotFound, "not found", s.logger)
		return
	}
	orderID, action := parts[0], parts[1]

	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", s.logger)
		return
	}

	var next model.OrderStatus
	switch action {
	case "accept":
		next = model.StatusConfirmed
	case "deliver":
		next = model.StatusDelivered
	case "cancel":
		next = model.StatusCancelled
	default:
		writeError(w, http.StatusNotFound, "unknown action: "+action, s.logger)
		return
	}

	order, err := s.store.transition(orderID, next, req.Email)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error(), s.logger)
		return
	}

	if next == model.StatusConfirmed || next == model.StatusCancelled {
		s.stopWatching(orderID)
	}
	s.hub.Broadcast(order.UserEmail, realtime.EventOrderStatusUpdated, *order)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "order updated",
		"order":   order,
	})
}

// watchOrder arms the server-side acceptance window: if the order is
// still PENDING when it fires, the order times out and the room is
// told.
func (s *Server) watchOrder(orderID, room string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.watchers[orderID]; ok {
		t.Stop()
	}
	s.watchers[orderID] = time.AfterFunc(s.opts.TimeoutWindow, func() {
		s.stopWatching(orderID)
		order, err := s.store.transition(orderID, model.StatusTimeout, "system")
		if err != nil {
			// Already confirmed or cancelled before the window closed.
			return
		}
		s.hub.Broadcast(room, realtime.EventOrderTimeout, *order)
	})
}

func (s *Server) stopWatching(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.watchers[orderID]; ok {
		t.Stop()
		delete(s.watchers, orderID)
	}
}
