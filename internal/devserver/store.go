// Package devserver is an in-process simulation of the HAYAS order
// backend: the REST endpoints and the per-identity realtime rooms the
// client core talks to. It backs local development and integration
// tests; the production backend lives elsewhere.
package devserver

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/model"
)

// orderStore keeps simulated orders in memory, newest first per user.
type orderStore struct {
	mu     sync.Mutex
	orders map[string]*model.Order // by order id
	byUser map[string][]string     // order ids, newest first
	logger zerolog.Logger
}

func newOrderStore(logger zerolog.Logger) *orderStore {
	return &orderStore{
		orders: make(map[string]*model.Order),
		byUser: make(map[string][]string),
		logger: logger.With().Str("component", "order_store").Logger(),
	}
}

// create stores a new PENDING order for the user.
func (s *orderStore) create(products []model.LineItem, address model.Address, email string) *model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	order := &model.Order{
		ID:        uuid.NewString(),
		Products:  products,
		Address:   address,
		UserEmail: email,
		Status:    model.StatusPending,
		StatusHistory: []model.StatusEntry{
			{Email: email, Status: model.StatusPending, UpdatedAt: now},
		},
		CreatedAt: now,
	}

	s.orders[order.ID] = order
	s.byUser[email] = append([]string{order.ID}, s.byUser[email]...)

	s.logger.Info().Str("order_id", order.ID).Str("user", email).Msg("order created")
	return snapshot(order)
}

// byEmail returns the user's orders, newest first.
func (s *orderStore) byEmail(email string) []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.byUser[email]
	out := make([]model.Order, 0, len(ids))
	for _, id := range ids {
		out = append(out, *snapshot(s.orders[id]))
	}
	return out
}

// hasActive reports whether the user already has an active order.
func (s *orderStore) hasActive(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.byUser[email] {
		if s.orders[id].Status.Active() {
			return true
		}
	}
	return false
}

// transition moves an order to the next status, enforcing the
// lifecycle, and records who did it.
func (s *orderStore) transition(orderID string, next model.OrderStatus, actor string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %s not found", orderID)
	}

	if !order.Status.CanTransition(next) {
		return nil, fmt.Errorf("cannot move order from %s to %s", order.Status, next)
	}

	order.Status = next
	order.StatusHistory = append(order.StatusHistory, model.StatusEntry{
		Email:     actor,
		Status:    next,
		UpdatedAt: time.Now().UTC(),
	})

	s.logger.Info().
		Str("order_id", orderID).
		Str("status", next.String()).
		Str("actor", actor).
		Msg("order transitioned")
	return snapshot(order), nil
}

// get returns a copy of the order, or nil.
func (s *orderStore) get(orderID string) *model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order, ok := s.orders[orderID]; ok {
		return snapshot(order)
	}
	return nil
}

// snapshot copies an order so callers never share the stored slice.
func snapshot(o *model.Order) *model.Order {
	cp := *o
	cp.Products = append([]model.LineItem(nil), o.Products...)
	cp.StatusHistory = append([]model.StatusEntry(nil), o.StatusHistory...)
	return &cp
}
