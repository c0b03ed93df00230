// Package cart holds the client-owned shopping cart: a set of lines
// keyed by (product, package size), persisted to local storage on every
// mutation.
package cart

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/model"
	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/storage"
)

// Store is the in-memory cart backed by local persistence. All methods
// are safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	items   []model.CartItem
	persist storage.CartStore
	logger  zerolog.Logger
}

// NewStore creates a cart store seeded with already-loaded items. The
// load happens once at startup (see storage.CartStore.LoadCart) and the
// result is injected here rather than read ad hoc.
func NewStore(initial []model.CartItem, persist storage.CartStore, logger zerolog.Logger) *Store {
	items := make([]model.CartItem, 0, len(initial))
	for _, it := range initial {
		if it.Count > 0 {
			items = append(items, it)
		}
	}
	return &Store{
		items:   items,
		persist: persist,
		logger:  logger.With().Str("component", "cart").Logger(),
	}
}

// Items returns a snapshot of the cart lines.
func (s *Store) Items() []model.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of cart lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// IsEmpty reports whether the cart has no lines.
func (s *Store) IsEmpty() bool {
	return s.Len() == 0
}

// UpdateQuantity applies an increase or decrease to the line identified
// by item's (productID, quantityType). Increase adds the line with
// count 1 when absent; decrease floors at 0 and removes the line
// entirely when it reaches 0. Decreasing an absent line is a no-op.
func (s *Store) UpdateQuantity(item model.CartItem, action model.QuantityAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := item.Key()
	idx := -1
	for i := range s.items {
		if s.items[i].Key() == key {
			idx = i
			break
		}
	}

	switch {
	case idx >= 0:
		count := s.items[idx].Count
		if action == model.ActionIncrease {
			count++
		} else {
			count--
			if count < 0 {
				count = 0
			}
		}
		if count == 0 {
			s.items = append(s.items[:idx], s.items[idx+1:]...)
		} else {
			s.items[idx].Count = count
		}
	case action == model.ActionIncrease:
		item.Count = 1
		s.items = append(s.items, item)
	default:
		// Decreasing a line that is not in the cart.
		return nil
	}

	return s.saveLocked()
}

// Clear removes all cart lines and persists the empty cart.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = s.items[:0]
	s.logger.Info().Msg("cart cleared")
	return s.saveLocked()
}

// LineItems converts the cart to the order line items sent to the
// backend on placement.
func (s *Store) LineItems() []model.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.LineItem, len(s.items))
	for i, it := range s.items {
		out[i] = it.LineItem()
	}
	return out
}

// saveLocked persists the current cart. Persistence failures do not
// roll the in-memory mutation back; the caller decides how loudly to
// report them.
func (s *Store) saveLocked() error {
	if s.persist == nil {
		return nil
	}
	if err := s.persist.SaveCart(s.items); err != nil {
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}
