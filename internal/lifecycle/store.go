package lifecycle

import (
	"sync"

	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/model"
)

// StatusStore holds the current order snapshot, the identity's order
// collection cache, and the derived cart-lock flag. It is mutated by
// REST responses and by inbound realtime events; each mutation runs to
// completion under the mutex, so the three asynchronous sources never
// interleave partial updates.
type StatusStore struct {
	mu           sync.Mutex
	current      *model.Order
	orders       []model.Order
	activeOrder  bool
	timeoutInfo  *model.TimeoutInfo
	partnerEmail string
}

// Snapshot is a consistent read of the store for rendering.
type Snapshot struct {
	Current      *model.Order
	ActiveOrder  bool
	TimeoutInfo  *model.TimeoutInfo
	PartnerEmail string
}

// Snapshot returns a copy of the current state.
func (s *StatusStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ActiveOrder:  s.activeOrder,
		PartnerEmail: s.partnerEmail,
	}
	if s.current != nil {
		o := *s.current
		snap.Current = &o
	}
	if s.timeoutInfo != nil {
		t := *s.timeoutInfo
		snap.TimeoutInfo = &t
	}
	return snap
}

// ActiveOrder reports the derived cart-lock flag.
func (s *StatusStore) ActiveOrder() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeOrder
}

// ReplaceOrders replaces the order collection cache and recomputes the
// active-order flag.
func (s *StatusStore) ReplaceOrders(orders []model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = orders
	s.activeOrder = model.HasActiveOrder(s.orders)
}

// Apply merges an updated order into the collection (last write for
// this order id wins), makes it the current order, and recomputes the
// active-order flag. It reports whether the order id was known; unknown
// ids are not adopted mid-session.
func (s *StatusStore) Apply(order model.Order) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.knownLocked(order.ID) {
		return false
	}

	merged := make([]model.Order, 0, len(s.orders)+1)
	merged = append(merged, order)
	for _, o := range s.orders {
		if o.ID != order.ID {
			merged = append(merged, o)
		}
	}
	s.orders = merged
	s.current = &order
	s.activeOrder = model.HasActiveOrder(s.orders)
	return true
}

// Adopt sets the current order unconditionally. Used for orders this
// client just created or rehydrated, which are known-good by
// construction.
func (s *StatusStore) Adopt(order model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make([]model.Order, 0, len(s.orders)+1)
	merged = append(merged, order)
	for _, o := range s.orders {
		if o.ID != order.ID {
			merged = append(merged, o)
		}
	}
	s.orders = merged
	s.current = &order
	s.activeOrder = model.HasActiveOrder(s.orders)
}

// knownLocked reports whether the order id belongs to the current order
// or the cached collection. Caller holds the mutex.
func (s *StatusStore) knownLocked(id string) bool {
	if id == "" {
		return false
	}
	if s.current != nil && s.current.ID == id {
		return true
	}
	for i := range s.orders {
		if s.orders[i].ID == id {
			return true
		}
	}
	return false
}

// CurrentID returns the current order's id, or "".
func (s *StatusStore) CurrentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ""
	}
	return s.current.ID
}

// CurrentStatus returns the current order's status, or "" when idle.
func (s *StatusStore) CurrentStatus() model.OrderStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ""
	}
	return s.current.Status
}

// SetTimeoutInfo records (or clears, with nil) the timeout metadata.
func (s *StatusStore) SetTimeoutInfo(info *model.TimeoutInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeoutInfo = info
}

// SetPartnerEmail records the accepting delivery partner.
func (s *StatusStore) SetPartnerEmail(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partnerEmail = email
}

// ResetToIdle drops the current order and derived display state so a
// new order can be placed. The collection cache is kept; the flag is
// recomputed from it.
func (s *StatusStore) ResetToIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.timeoutInfo = nil
	s.partnerEmail = ""
	s.activeOrder = model.HasActiveOrder(s.orders)
}

// Orders returns a copy of the cached order collection, newest first.
func (s *StatusStore) Orders() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Order, len(s.orders))
	copy(out, s.orders)
	return out
}
