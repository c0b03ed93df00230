// Package realtime is the per-identity event channel the order
// lifecycle listens on. The connection has an explicit init-once /
// teardown-on-logout lifecycle and is injected into the listener, never
// imported as a singleton.
package realtime

import (
	"context"

	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/model"
)

// EventType discriminates inbound realtime events.
type EventType string

// Known inbound event kinds.
const (
	EventOrderStatusUpdated EventType = "order-status-updated"
	EventOrderTimeout       EventType = "order-timeout"
)

// Event is a single inbound message from the order event stream.
// Events are applied in arrival order with no client-side reordering or
// deduplication: at-most-once-per-arrival, last write for an order id
// wins.
type Event struct {
	Type  EventType   `json:"type"`
	Order model.Order `json:"order"`
}

// Channel is a joined, per-identity event stream.
type Channel interface {
	// Join subscribes the connection to the room named by the identity
	// email. Must be called before reading Events.
	Join(ctx context.Context, identity string) error

	// Events returns the inbound event stream. The channel is closed
	// when the connection ends, whether by Close or by transport error.
	Events() <-chan Event

	// Close tears the connection down and releases the reader. Safe to
	// call more than once.
	Close() error
}
