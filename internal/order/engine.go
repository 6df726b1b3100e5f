// Package order implements the order lifecycle engine: converting a cart into
// an immutable order and driving that order through payment settlement.
package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jcmexdev/pizzaflow/internal/domain"
	"github.com/jcmexdev/pizzaflow/internal/payment"
	"github.com/jcmexdev/pizzaflow/internal/pkg/userlock"
	"github.com/jcmexdev/pizzaflow/internal/store"
)

// Engine is the single state-changing boundary between cart and order. It
// shares the per-user lock with the cart manager so confirmation cannot race
// a concurrent cart mutation.
type Engine struct {
	store   store.Store
	charger payment.Charger
	locks   *userlock.Keyed
}

func NewEngine(st store.Store, charger payment.Charger, locks *userlock.Keyed) *Engine {
	return &Engine{store: st, charger: charger, locks: locks}
}

// Confirmation is the result of a successful ConfirmOrder.
type Confirmation struct {
	OrderID string
	Total   int64
}

// ConfirmOrder snapshots the user's cart into a new Pending order for the
// given store and clears the cart. Order creation and cart clearing are one
// storage transaction, so a successful return guarantees both: the order is
// persisted and the cart is empty. Re-confirming afterwards fails with
// ErrEmptyCart rather than double-charging.
func (e *Engine) ConfirmOrder(ctx context.Context, userID, storeID string) (Confirmation, error) {
	e.locks.Lock(userID)
	defer e.locks.Unlock(userID)

	lines, err := e.store.GetCart(ctx, userID)
	if err != nil {
		return Confirmation{}, fmt.Errorf("order: confirm for %q: %w", userID, err)
	}
	if len(lines) == 0 {
		return Confirmation{}, ErrEmptyCart
	}
	for _, l := range lines {
		if l.StoreID != storeID {
			return Confirmation{}, ErrMixedStore
		}
	}

	total := domain.CartTotal(lines)
	orderID, err := e.store.CreateOrder(ctx, userID, storeID, lines, total)
	if err != nil {
		return Confirmation{}, fmt.Errorf("order: confirm for %q: %w", userID, err)
	}

	slog.InfoContext(ctx, "order created",
		"user_id", userID, "order_id", orderID, "store_id", storeID, "total", total)
	return Confirmation{OrderID: orderID, Total: total}, nil
}

// Settlement is the result of a payment attempt against the user's last order.
type Settlement struct {
	OrderID string
	Status  domain.Status
	Result  payment.Result
}

// SettlePayment charges the user's last order with the requested simulated
// outcome and maps the result onto the order status: Succeeded -> Confirmed,
// anything else -> Pending. A failed attempt on an already Confirmed order
// deliberately moves it back to Pending; that downgrade-on-explicit-failure
// policy is part of the contract, not an accident.
func (e *Engine) SettlePayment(ctx context.Context, userID string, outcome payment.Outcome) (Settlement, error) {
	e.locks.Lock(userID)
	defer e.locks.Unlock(userID)

	o, err := e.store.GetLastOrder(ctx, userID)
	if errors.Is(err, store.ErrOrderNotFound) {
		return Settlement{}, ErrNoOrder
	}
	if err != nil {
		return Settlement{}, fmt.Errorf("order: settle for %q: %w", userID, err)
	}
	if o.Status.Terminal() {
		return Settlement{}, ErrAlreadyDelivered
	}

	result := e.charger.Charge(ctx, o.ID, o.Total, outcome)

	status := domain.StatusPending
	if result.Status == payment.StatusSucceeded {
		status = domain.StatusConfirmed
	}
	if err := e.store.SetOrderStatus(ctx, o.ID, status); err != nil {
		return Settlement{}, fmt.Errorf("order: settle for %q: %w", userID, err)
	}

	slog.InfoContext(ctx, "payment settled",
		"user_id", userID, "order_id", o.ID, "charge_status", string(result.Status), "order_status", string(status))
	return Settlement{OrderID: o.ID, Status: status, Result: result}, nil
}

// Status returns the user's last order header, or ErrNoOrder.
func (e *Engine) Status(ctx context.Context, userID string) (*domain.Order, error) {
	o, err := e.store.GetLastOrder(ctx, userID)
	if errors.Is(err, store.ErrOrderNotFound) {
		return nil, ErrNoOrder
	}
	if err != nil {
		return nil, fmt.Errorf("order: status for %q: %w", userID, err)
	}
	return o, nil
}

// Get loads a single order with its lines by id.
func (e *Engine) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	o, err := e.store.GetOrder(ctx, orderID)
	if errors.Is(err, store.ErrOrderNotFound) {
		return nil, ErrNoOrder
	}
	if err != nil {
		return nil, fmt.Errorf("order: get %q: %w", orderID, err)
	}
	return o, nil
}
