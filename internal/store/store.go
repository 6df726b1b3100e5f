// Package store defines the persistence port for users, carts and orders.
// The services depend on this abstraction, not on SQLite directly, so the
// implementation can be swapped for Postgres or an in-memory fake in tests.
package store

import (
	"context"
	"errors"

	"github.com/jcmexdev/pizzaflow/internal/domain"
)

var (
	// ErrUserNotFound is returned by GetUser when no record exists for the id.
	ErrUserNotFound = errors.New("user not found")

	// ErrOrderNotFound is returned by GetOrder and GetLastOrder when no
	// matching order exists.
	ErrOrderNotFound = errors.New("order not found")
)

// Store is the durable state port. Every operation is atomic with respect to
// the entity it touches; a failed call leaves no partial mutation visible.
type Store interface {
	// GetUser loads a user by identity token.
	GetUser(ctx context.Context, id string) (*domain.User, error)

	// UpsertUser merges the patch over the existing record, creating it if
	// absent. Fields not set in the patch keep their prior value.
	UpsertUser(ctx context.Context, id string, patch domain.UserPatch) error

	// GetCart returns the user's cart lines in insertion order. An empty cart
	// is a nil slice, not an error.
	GetCart(ctx context.Context, userID string) ([]domain.CartLine, error)

	// ReplaceCart atomically deletes the user's existing lines and inserts
	// the given sequence. Concurrent readers never observe a half-written cart.
	ReplaceCart(ctx context.Context, userID string, lines []domain.CartLine) error

	// ClearCart removes all of the user's cart lines.
	ClearCart(ctx context.Context, userID string) error

	// CreateOrder persists an order header and its lines as one unit and
	// consumes the user's cart in the same transaction, so a crash can never
	// leave both the order and the cart behind. The generated order id is
	// collision-checked and regenerated up to a bounded number of attempts.
	CreateOrder(ctx context.Context, userID, storeID string, lines []domain.CartLine, total int64) (string, error)

	// GetOrder loads an order together with its lines.
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)

	// GetLastOrder loads the user's most recent order header (no lines),
	// ordered by creation time with ties broken by id.
	GetLastOrder(ctx context.Context, userID string) (*domain.Order, error)

	// SetOrderStatus updates only the status column. Updating an absent order
	// is a no-op; callers that care must check existence first.
	SetOrderStatus(ctx context.Context, orderID string, status domain.Status) error
}
