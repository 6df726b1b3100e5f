package domain

import "time"

// Status is the lifecycle state of an order. The payment path moves Pending
// to Confirmed on success and back to Pending on failure; Delivered is set by
// an external fulfillment signal and is terminal for the payment path.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusDelivered Status = "Delivered"
)

// Terminal reports whether the payment path accepts further transitions.
func (s Status) Terminal() bool {
	return s == StatusDelivered
}

// Order is an immutable-content record created from a confirmed cart. Only
// Status mutates after creation; Total is fixed at creation time and is never
// recomputed from current catalog prices.
type Order struct {
	ID        string
	UserID    string
	StoreID   string
	Total     int64
	Status    Status
	CreatedAt time.Time
	Lines     []OrderLine
}

// OrderLine is a frozen value copy of a cart line taken at order creation.
type OrderLine struct {
	ItemID   string
	ItemName string
	Size     string
	Qty      int
	Price    int64
}

// Subtotal is price times quantity for this line.
func (l OrderLine) Subtotal() int64 {
	return l.Price * int64(l.Qty)
}
