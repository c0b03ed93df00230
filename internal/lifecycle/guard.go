package lifecycle

// CanMutateCart is the cart-lock predicate: cart quantities may only
// change while no order occupies the identity's active-order slot.
// Clearing the cart is an explicit user override and bypasses this.
func CanMutateCart(activeOrder bool) bool {
	return !activeOrder
}
