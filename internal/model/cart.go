package model

// CartKey uniquely identifies a cart line. The same product can appear
// twice in the cart, once per package size.
type CartKey struct {
	ProductID    string
	QuantityType QuantityType
}

// CartItem is a single line in the shopping cart. Count 0 means the
// line has been removed; the store never persists zero-count lines.
type CartItem struct {
	ProductID    string       `json:"_id"`
	Title        string       `json:"title"`
	QuantityType QuantityType `json:"quantityType"`
	UnitLabel    string       `json:"quantity"`
	Count        int          `json:"count"`
}

// Key returns the cart key for this line.
func (c CartItem) Key() CartKey {
	return CartKey{ProductID: c.ProductID, QuantityType: c.QuantityType}
}

// LineItem converts the cart line to the order line item shape sent to
// the backend on order placement.
func (c CartItem) LineItem() LineItem {
	return LineItem{
		Title:        c.Title,
		QuantityType: c.QuantityType,
		UnitLabel:    c.UnitLabel,
		Count:        c.Count,
	}
}

// QuantityAction says which way UpdateQuantity moves a cart line.
type QuantityAction string

// Quantity actions.
const (
	ActionIncrease QuantityAction = "increase"
	ActionDecrease QuantityAction = "decrease"
)
