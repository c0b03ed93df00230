package model

// Standard error codes surfaced to the UI layer.
const (
	ErrCodeMissingAddress = "MISSING_ADDRESS_FIELDS"
	ErrCodeActiveOrder    = "ACTIVE_ORDER_EXISTS"
	ErrCodeCartLocked     = "CART_LOCKED"
	ErrCodeEmptyCart      = "EMPTY_CART"
	ErrCodeNotTimedOut    = "NOT_TIMED_OUT"
	ErrCodeStaleEvent     = "STALE_ORDER_EVENT"
	ErrCodeBackend        = "BACKEND_ERROR"
)

// DomainError is a business-rule failure with a stable code the UI can
// switch on.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Common domain errors. All of them leave the UI in a recoverable
// state; nothing in this core is fatal.
var (
	ErrMissingAddressFields = NewDomainError(ErrCodeMissingAddress, "Please fill in all address details to place your order")
	ErrActiveOrderExists    = NewDomainError(ErrCodeActiveOrder, "You already have a pending, confirmed, or timed out order")
	ErrCartLocked           = NewDomainError(ErrCodeCartLocked, "Cannot modify cart while you have an active order")
	ErrEmptyCart            = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrNotTimedOut          = NewDomainError(ErrCodeNotTimedOut, "Only a timed out order can be retried")
	ErrStaleOrderEvent      = NewDomainError(ErrCodeStaleEvent, "Event references an unknown order")
)
