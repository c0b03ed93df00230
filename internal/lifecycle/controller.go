// Package lifecycle drives an order from submission to terminal
// resolution: place (REST) -> arm countdown -> observe realtime events
// -> resolve -> retry or clear. The backend is the single source of
// truth; the only client-optimistic write is the PENDING active-order
// flag right after placement, reconciled by the next server event.
package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/api"
	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/cart"
	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/config"
	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/model"
)

// Controller orchestrates the order lifecycle for one identity.
type Controller struct {
	identity  string
	backend   api.OrderAPI
	cart      *cart.Store
	store     *StatusStore
	countdown *Countdown
	cfg       config.OrderConfig
	logger    zerolog.Logger

	mu         sync.Mutex
	graceTimer *time.Timer
	graceFor   string // order id a reset is already scheduled for
	closed     bool
}

// NewController creates a controller. The realtime channel is driven
// separately by a Listener, which feeds HandleStatusUpdate and
// HandleTimeout.
func NewController(
	identity string,
	backend api.OrderAPI,
	cartStore *cart.Store,
	cfg config.OrderConfig,
	logger zerolog.Logger,
) *Controller {
	logger = logger.With().Str("component", "lifecycle").Logger()
	return &Controller{
		identity:  identity,
		backend:   backend,
		cart:      cartStore,
		store:     &StatusStore{},
		countdown: NewCountdown(logger),
		cfg:       cfg,
		logger:    logger,
	}
}

// Store exposes the status store for rendering.
func (c *Controller) Store() *StatusStore { return c.store }

// Timer exposes the countdown for rendering.
func (c *Controller) Timer() *Countdown { return c.countdown }

// Hydrate fetches the identity's orders and adopts the latest active
// one, restoring timer-free state after a process restart. Order and
// timer state never persist locally; this call is the only rehydration
// path.
func (c *Controller) Hydrate(ctx context.Context) error {
	orders, err := c.backend.OrdersByEmail(ctx, c.identity)
	if err != nil {
		return err
	}

	c.store.ReplaceOrders(orders)

	active := model.LatestActiveOrder(orders)
	if active == nil {
		c.store.ResetToIdle()
		c.logger.Debug().Int("order_count", len(orders)).Msg("hydrated with no active order")
		return nil
	}

	c.store.Adopt(*active)
	switch active.Status {
	case model.StatusConfirmed:
		if email := active.AssignedPartnerEmail(); email != "" {
			c.store.SetPartnerEmail(email)
		}
	case model.StatusTimeout:
		c.store.SetTimeoutInfo(c.timeoutInfo(active.ID))
	}

	c.logger.Info().
		Str("order_id", active.ID).
		Str("status", active.Status.String()).
		Msg("hydrated with active order")
	return nil
}

// PlaceOrder submits the cart as a new order. Preconditions are checked
// locally: all address fields filled, no active order, non-empty cart.
// Local failures never reach the network; the order state is unchanged
// on any failure.
func (c *Controller) PlaceOrder(ctx context.Context, address model.Address) (*model.Order, error) {
	if !address.Complete() {
		return nil, model.ErrMissingAddressFields
	}
	if c.store.ActiveOrder() {
		c.logger.Warn().Msg("place order blocked: active order exists")
		return nil, model.ErrActiveOrderExists
	}
	if c.cart.IsEmpty() {
		return nil, model.ErrEmptyCart
	}

	order, err := c.backend.PlaceOrder(ctx, api.PlaceOrderRequest{
		Products:  c.cart.LineItems(),
		Address:   address,
		UserEmail: c.identity,
	})
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to place order")
		return nil, err
	}

	// Client-optimistic: PENDING and the active flag are set before the
	// first server event confirms them.
	if order.Status == "" {
		order.Status = model.StatusPending
	}
	c.cancelReset()
	c.store.Adopt(*order)
	c.store.SetTimeoutInfo(nil)
	c.countdown.Start(c.cfg.TimeoutWindow)

	c.logger.Info().
		Str("order_id", order.ID).
		Msg("order placed, waiting for a delivery partner")
	return order, nil
}

// RetryOrder re-submits the current order after a timeout. Only valid
// from TIMEOUT; on success the countdown restarts with a fresh window
// and the support-contact state clears. On failure the order remains
// TIMEOUT.
func (c *Controller) RetryOrder(ctx context.Context) (*model.Order, error) {
	if c.store.CurrentStatus() != model.StatusTimeout {
		return nil, model.ErrNotTimedOut
	}
	orderID := c.store.CurrentID()

	order, err := c.backend.RetryOrder(ctx, orderID)
	if err != nil {
		c.logger.Error().Err(err).Str("order_id", orderID).Msg("failed to retry order")
		return nil, err
	}

	if order.Status == "" {
		order.Status = model.StatusPending
	}
	c.cancelReset()
	c.store.Adopt(*order)
	c.store.SetTimeoutInfo(nil)
	c.countdown.Start(c.cfg.TimeoutWindow)

	c.logger.Info().Str("order_id", order.ID).Msg("order retried")
	return order, nil
}

// UpdateQuantity changes a cart line through the cart lock guard. While
// an order is active the cart is frozen and the mutation is rejected
// with ErrCartLocked.
func (c *Controller) UpdateQuantity(item model.CartItem, action model.QuantityAction) error {
	if !CanMutateCart(c.store.ActiveOrder()) {
		c.logger.Warn().
			Str("product_id", item.ProductID).
			Msg("cart mutation blocked while order is active")
		return model.ErrCartLocked
	}
	return c.cart.UpdateQuantity(item, action)
}

// ClearCart empties the cart unconditionally. This is the user's
// explicit override and works regardless of the lock state.
func (c *Controller) ClearCart() error {
	return c.cart.Clear()
}

// CartItems returns a snapshot of the cart lines.
func (c *Controller) CartItems() []model.CartItem {
	return c.cart.Items()
}

// PartnerDetails resolves the profile of the delivery partner who
// accepted the current order. Returns nil without error while no
// partner has been assigned.
func (c *Controller) PartnerDetails(ctx context.Context) (*api.PartnerDetails, error) {
	email := c.store.Snapshot().PartnerEmail
	if email == "" {
		return nil, nil
	}
	details, err := c.backend.DeliveryPartnerByEmail(ctx, email)
	if err != nil {
		c.logger.Error().Err(err).Str("partner_email", email).Msg("failed to fetch delivery partner details")
		return nil, err
	}
	return details, nil
}

// HandleStatusUpdate applies an order-status-updated event. Events are
// applied in arrival order, last write for an order id wins; an event
// for an order id unrelated to this session is ignored, since there is
// no way to adopt an unknown order mid-session.
func (c *Controller) HandleStatusUpdate(order model.Order) {
	if !c.store.Apply(order) {
		c.logger.Warn().
			Str("order_id", order.ID).
			Msg("ignoring status event for unknown order")
		return
	}

	c.logger.Info().
		Str("order_id", order.ID).
		Str("status", order.Status.String()).
		Msg("order status updated")

	if order.Status == model.StatusConfirmed || order.Status == model.StatusCancelled {
		c.countdown.Stop()
	}

	if order.Status.ClearsCart() {
		if err := c.cart.Clear(); err != nil {
			c.logger.Error().Err(err).Msg("failed to clear cart after order progressed")
		}
	}

	if order.Status == model.StatusConfirmed {
		if email := order.AssignedPartnerEmail(); email != "" {
			c.store.SetPartnerEmail(email)
		}
	}

	if order.Status.Terminal() {
		c.scheduleReset(order.ID)
	}
}

// HandleTimeout applies an order-timeout event: the server closed the
// acceptance window without a partner taking the order. The cart stays
// untouched and a retry action becomes available.
func (c *Controller) HandleTimeout(order model.Order) {
	order.Status = model.StatusTimeout
	if !c.store.Apply(order) {
		c.logger.Warn().
			Str("order_id", order.ID).
			Msg("ignoring timeout event for unknown order")
		return
	}

	c.store.SetTimeoutInfo(c.timeoutInfo(order.ID))
	c.countdown.Stop()

	c.logger.Info().Str("order_id", order.ID).Msg("order timed out, retry available")
}

// Detach stops the countdown and cancels any pending idle reset. Called
// when the lifecycle scope is left so no timer keeps ticking after the
// listener is gone.
func (c *Controller) Detach() {
	c.countdown.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.graceTimer != nil {
		c.graceTimer.Stop()
		c.graceTimer = nil
		c.graceFor = ""
	}
}

// scheduleReset arms the grace-delay reset to idle after a terminal
// status, letting the user read the final status first. Re-delivery of
// the same terminal event does not reschedule.
func (c *Controller) scheduleReset(orderID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.graceFor == orderID {
		return
	}
	if c.graceTimer != nil {
		c.graceTimer.Stop()
	}
	c.graceFor = orderID
	c.graceTimer = time.AfterFunc(c.cfg.GraceDelay, func() {
		c.mu.Lock()
		if c.closed || c.graceFor != orderID {
			c.mu.Unlock()
			return
		}
		c.graceTimer = nil
		c.graceFor = ""
		c.mu.Unlock()
		c.store.ResetToIdle()
		c.logger.Debug().Str("order_id", orderID).Msg("lifecycle reset to idle")
	})
}

// cancelReset drops a pending idle reset. Adopting a new order during
// the grace window must not end with that order wiped when the timer
// fires.
func (c *Controller) cancelReset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.graceTimer != nil {
		c.graceTimer.Stop()
		c.graceTimer = nil
		c.graceFor = ""
	}
}

// timeoutInfo builds the support metadata shown alongside a timed out
// order.
func (c *Controller) timeoutInfo(orderID string) *model.TimeoutInfo {
	name, phone := c.cfg.SupportContactValues()
	return &model.TimeoutInfo{
		OrderID:        orderID,
		SupportContact: model.SupportContact{Name: name, Phone: phone},
	}
}
