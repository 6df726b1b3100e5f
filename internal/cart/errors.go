package cart

import "fmt"

// RejectReason classifies why a requested line was not committed to the cart.
type RejectReason string

const (
	ReasonQuantityInvalid RejectReason = "quantity_invalid"
	ReasonItemNotFound    RejectReason = "item_not_found"
	ReasonSizeNotOffered  RejectReason = "size_not_offered"
	ReasonMalformed       RejectReason = "malformed_request"
)

// RejectError is a typed validation failure. The cart is guaranteed unchanged
// for the rejected request.
type RejectError struct {
	Reason RejectReason
	Detail string
}

func (e *RejectError) Error() string {
	if e.Detail == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

func reject(reason RejectReason, format string, args ...any) *RejectError {
	return &RejectError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}
