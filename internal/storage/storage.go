// Package storage persists small pieces of client state to the local
// device. The cart must survive process restarts; order and timer state
// must not, so only the cart lives here.
package storage

import "github.com/mohammedsadaqathullah/HAYAS-APP/internal/model"

// CartStore is the local persistence boundary for the shopping cart.
type CartStore interface {
	// LoadCart returns the persisted cart, or an empty slice when
	// nothing has been saved yet.
	LoadCart() ([]model.CartItem, error)

	// SaveCart replaces the persisted cart.
	SaveCart(items []model.CartItem) error

	// Close releases the underlying store.
	Close() error
}
