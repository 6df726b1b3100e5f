// Package cart validates requested line items against the catalog and
// maintains each user's pending cart. A line is only ever committed after
// validation; rejected requests leave the cart untouched.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jcmexdev/pizzaflow/internal/catalog"
	"github.com/jcmexdev/pizzaflow/internal/domain"
	"github.com/jcmexdev/pizzaflow/internal/pkg/userlock"
	"github.com/jcmexdev/pizzaflow/internal/store"
)

// Manager implements the cart operations. The cart write path is a
// read-modify-write of the full line list, so every mutating operation runs
// inside the per-user critical section shared with the order engine.
type Manager struct {
	store   store.Store
	catalog catalog.Provider
	locks   *userlock.Keyed
}

func NewManager(st store.Store, cat catalog.Provider, locks *userlock.Keyed) *Manager {
	return &Manager{store: st, catalog: cat, locks: locks}
}

// AddItem validates (itemID, size, qty) against the catalog and appends one
// line to the user's cart. The unit price is copied from the catalog at this
// instant and never changes afterwards.
func (m *Manager) AddItem(ctx context.Context, userID, itemID, size string, qty int) (domain.CartLine, error) {
	line, err := m.buildLine(ctx, itemID, size, qty)
	if err != nil {
		return domain.CartLine{}, err
	}

	m.locks.Lock(userID)
	defer m.locks.Unlock(userID)

	lines, err := m.store.GetCart(ctx, userID)
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("cart: add item for %q: %w", userID, err)
	}
	lines = append(lines, line)
	if err := m.store.ReplaceCart(ctx, userID, lines); err != nil {
		return domain.CartLine{}, fmt.Errorf("cart: add item for %q: %w", userID, err)
	}

	slog.InfoContext(ctx, "cart line added",
		"user_id", userID, "item_id", line.ItemID, "size", line.Size, "qty", line.Qty)
	return line, nil
}

// BatchReject reports one rejected batch request together with its reason.
type BatchReject struct {
	Spec   string
	Reason RejectReason
	Detail string
}

// BatchResult is the outcome of AddBatch: the committed lines and the
// per-request rejections. The call as a whole succeeds even when every
// request was rejected.
type BatchResult struct {
	Added    []domain.CartLine
	Rejected []BatchReject
}

// AddBatch processes raw "item_id size qty" requests independently. Valid
// requests are committed together in a single cart replacement; invalid ones
// are reported individually and never abort the batch.
func (m *Manager) AddBatch(ctx context.Context, userID string, specs []string) (BatchResult, error) {
	var res BatchResult
	for _, spec := range specs {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		line, err := m.parseSpec(ctx, spec)
		if err != nil {
			var re *RejectError
			if errors.As(err, &re) {
				res.Rejected = append(res.Rejected, BatchReject{Spec: spec, Reason: re.Reason, Detail: re.Detail})
				continue
			}
			return BatchResult{}, fmt.Errorf("cart: add batch for %q: %w", userID, err)
		}
		res.Added = append(res.Added, line)
	}

	if len(res.Added) == 0 {
		return res, nil
	}

	m.locks.Lock(userID)
	defer m.locks.Unlock(userID)

	lines, err := m.store.GetCart(ctx, userID)
	if err != nil {
		return BatchResult{}, fmt.Errorf("cart: add batch for %q: %w", userID, err)
	}
	lines = append(lines, res.Added...)
	if err := m.store.ReplaceCart(ctx, userID, lines); err != nil {
		return BatchResult{}, fmt.Errorf("cart: add batch for %q: %w", userID, err)
	}

	slog.InfoContext(ctx, "cart batch added",
		"user_id", userID, "added", len(res.Added), "rejected", len(res.Rejected))
	return res, nil
}

// View returns the current lines and their total. An empty cart is a valid
// result, distinct from an unknown user.
func (m *Manager) View(ctx context.Context, userID string) ([]domain.CartLine, int64, error) {
	lines, err := m.store.GetCart(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("cart: view for %q: %w", userID, err)
	}
	return lines, domain.CartTotal(lines), nil
}

// Clear empties the cart unconditionally.
func (m *Manager) Clear(ctx context.Context, userID string) error {
	m.locks.Lock(userID)
	defer m.locks.Unlock(userID)
	if err := m.store.ClearCart(ctx, userID); err != nil {
		return fmt.Errorf("cart: clear for %q: %w", userID, err)
	}
	return nil
}

// parseSpec turns one "item_id size qty" request into a validated line.
func (m *Manager) parseSpec(ctx context.Context, spec string) (domain.CartLine, error) {
	fields := strings.Fields(spec)
	if len(fields) != 3 {
		return domain.CartLine{}, reject(ReasonMalformed, "expected: <item_id> <size> <qty>")
	}
	qty, err := strconv.Atoi(fields[2])
	if err != nil {
		return domain.CartLine{}, reject(ReasonQuantityInvalid, "quantity must be a positive integer")
	}
	return m.buildLine(ctx, fields[0], fields[1], qty)
}

// buildLine validates the request against the catalog and snapshots the
// current price into a cart line.
func (m *Manager) buildLine(ctx context.Context, itemID, size string, qty int) (domain.CartLine, error) {
	if qty <= 0 {
		return domain.CartLine{}, reject(ReasonQuantityInvalid, "quantity must be a positive integer")
	}
	size = strings.ToUpper(size)

	item, err := m.findItem(ctx, itemID)
	if err != nil {
		return domain.CartLine{}, err
	}
	price, ok := item.Sizes[size]
	if !ok {
		return domain.CartLine{}, reject(ReasonSizeNotOffered, "item %q has no size %q", itemID, size)
	}

	return domain.CartLine{
		ItemID:   item.ID,
		ItemName: item.Name,
		StoreID:  item.StoreID,
		Size:     size,
		Qty:      qty,
		Price:    price,
	}, nil
}

// findItem scans the catalog for an item id across all stores.
func (m *Manager) findItem(ctx context.Context, itemID string) (catalog.MenuItem, error) {
	stores, err := m.catalog.ListStores(ctx)
	if err != nil {
		return catalog.MenuItem{}, fmt.Errorf("cart: list stores: %w", err)
	}
	for _, s := range stores {
		items, err := m.catalog.ListMenuItems(ctx, s.ID)
		if err != nil {
			return catalog.MenuItem{}, fmt.Errorf("cart: list menu for %q: %w", s.ID, err)
		}
		for _, it := range items {
			if it.ID == itemID {
				return it, nil
			}
		}
	}
	return catalog.MenuItem{}, reject(ReasonItemNotFound, "item %q is not on any menu", itemID)
}
