package model

import (
	"fmt"
	"time"
)

// OrderStatus is the lifecycle state of an order as reported by the backend.
type OrderStatus string

// Order lifecycle states.
const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
	StatusTimeout   OrderStatus = "TIMEOUT"
)

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusDelivered, StatusCancelled, StatusTimeout:
		return true
	}
	return false
}

// Active reports whether an order in this status still occupies the
// identity's single active-order slot. TIMEOUT counts as active because
// the order can still be retried.
func (s OrderStatus) Active() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusTimeout
}

// Terminal reports whether no further transitions are expected without
// a new order being placed.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// ClearsCart reports whether reaching this status empties the cart.
// Failure states (CANCELLED, TIMEOUT) preserve the cart so the user can
// edit or resubmit.
func (s OrderStatus) ClearsCart() bool {
	return s == StatusConfirmed || s == StatusDelivered
}

// CanTransition reports whether moving from s to next follows the
// allowed lifecycle:
//
//	PENDING -> CONFIRMED -> DELIVERED
//	PENDING -> CANCELLED
//	PENDING -> TIMEOUT -> PENDING (retry)
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled || next == StatusTimeout
	case StatusConfirmed:
		return next == StatusDelivered
	case StatusTimeout:
		return next == StatusPending
	case StatusDelivered, StatusCancelled:
		return false
	}
	return false
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string { return string(s) }

// StatusBadge is the display metadata rendered for an order status.
type StatusBadge struct {
	Label string
	Icon  string
	Color string
}

// Badge returns the display metadata for the status. The switch is
// exhaustive over the declared statuses; unknown values from the
// backend fall through to a neutral badge instead of panicking.
func (s OrderStatus) Badge() StatusBadge {
	switch s {
	case StatusPending:
		return StatusBadge{Label: "Waiting for partner", Icon: "time-outline", Color: "#f4dd0f"}
	case StatusConfirmed:
		return StatusBadge{Label: "Order accepted", Icon: "checkmark-circle", Color: "#22c55e"}
	case StatusDelivered:
		return StatusBadge{Label: "Delivered", Icon: "bicycle", Color: "#3b82f6"}
	case StatusCancelled:
		return StatusBadge{Label: "Cancelled", Icon: "close-circle", Color: "#ef4444"}
	case StatusTimeout:
		return StatusBadge{Label: "No partner found", Icon: "alert-circle", Color: "#f97316"}
	}
	return StatusBadge{Label: string(s), Icon: "help-circle", Color: "#9ca3af"}
}

// QuantityType selects which of a product's two package sizes a line
// item refers to.
type QuantityType string

// Package size variants.
const (
	QuantityOne QuantityType = "One"
	QuantityTwo QuantityType = "Two"
)

// LineItem is a single product line within a placed order.
type LineItem struct {
	Title        string       `json:"title"`
	QuantityType QuantityType `json:"quantityType"`
	UnitLabel    string       `json:"quantity"`
	Count        int          `json:"count"`
}

// Address is the delivery address attached to an order.
type Address struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Street         string `json:"street"`
	Area           string `json:"area"`
	DefaultAddress string `json:"defaultAddress"`
}

// Complete reports whether all user-supplied address fields are filled
// in. DefaultAddress is app-provided and not required from the user.
func (a Address) Complete() bool {
	return a.Name != "" && a.Phone != "" && a.Street != "" && a.Area != ""
}

// StatusEntry is one row of an order's status history, recording which
// actor moved the order into a status and when.
type StatusEntry struct {
	Email     string      `json:"email"`
	Status    OrderStatus `json:"status"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// Order is the client-side snapshot of a backend order. The backend is
// the single source of truth; the client holds a read-through cache.
type Order struct {
	ID            string        `json:"_id"`
	Products      []LineItem    `json:"products"`
	Address       Address       `json:"address"`
	UserEmail     string        `json:"userEmail"`
	Status        OrderStatus   `json:"status"`
	StatusHistory []StatusEntry `json:"statusHistory,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// AssignedPartnerEmail returns the email of the delivery partner who
// most recently confirmed the order, or "" if the order has never been
// confirmed.
func (o *Order) AssignedPartnerEmail() string {
	var (
		best   string
		bestAt time.Time
	)
	for _, entry := range o.StatusHistory {
		if entry.Status != StatusConfirmed {
			continue
		}
		if best == "" || entry.UpdatedAt.After(bestAt) {
			best = entry.Email
			bestAt = entry.UpdatedAt
		}
	}
	return best
}

// HasActiveOrder reports whether any order in the list still occupies
// the identity's active-order slot.
func HasActiveOrder(orders []Order) bool {
	for i := range orders {
		if orders[i].Status.Active() {
			return true
		}
	}
	return false
}

// LatestActiveOrder returns the first active order in the list, or nil.
// The backend returns orders newest first, so the first active entry is
// the most recent one.
func LatestActiveOrder(orders []Order) *Order {
	for i := range orders {
		if orders[i].Status.Active() {
			return &orders[i]
		}
	}
	return nil
}

// SupportContact is who the user can call when an order times out
// without a delivery partner accepting it.
type SupportContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// TimeoutInfo is recorded when an order times out, so the UI can offer
// a retry action and a support contact.
type TimeoutInfo struct {
	OrderID        string         `json:"orderId"`
	SupportContact SupportContact `json:"supportContact"`
}

// String implements fmt.Stringer for log output.
func (t TimeoutInfo) String() string {
	return fmt.Sprintf("order %s timed out (support: %s)", t.OrderID, t.SupportContact.Phone)
}
