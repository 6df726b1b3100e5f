package order

import "errors"

var (
	// ErrEmptyCart rejects order confirmation when the cart has no lines.
	ErrEmptyCart = errors.New("cart is empty, nothing to confirm")

	// ErrMixedStore rejects confirmation when cart lines span more than the
	// requested store.
	ErrMixedStore = errors.New("all cart lines must belong to the confirmed store")

	// ErrNoOrder means the user has no orders to settle or query.
	ErrNoOrder = errors.New("no order exists for user")

	// ErrAlreadyDelivered rejects settlement of a delivered order; Delivered
	// is terminal for the payment path.
	ErrAlreadyDelivered = errors.New("order already delivered")
)
