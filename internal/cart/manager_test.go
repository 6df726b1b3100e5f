package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/pizzaflow/internal/catalog"
	"github.com/jcmexdev/pizzaflow/internal/domain"
	"github.com/jcmexdev/pizzaflow/internal/pkg/userlock"
	"github.com/jcmexdev/pizzaflow/internal/store"
)

// mockStore is an in-memory store.Store covering the cart operations.
type mockStore struct {
	mu    sync.Mutex
	carts map[string][]domain.CartLine
	err   error
}

func newMockStore() *mockStore {
	return &mockStore{carts: make(map[string][]domain.CartLine)}
}

func (m *mockStore) GetCart(_ context.Context, userID string) ([]domain.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]domain.CartLine(nil), m.carts[userID]...), nil
}

func (m *mockStore) ReplaceCart(_ context.Context, userID string, lines []domain.CartLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.carts[userID] = append([]domain.CartLine(nil), lines...)
	return nil
}

func (m *mockStore) ClearCart(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.carts, userID)
	return nil
}

func (m *mockStore) GetUser(context.Context, string) (*domain.User, error) {
	return nil, store.ErrUserNotFound
}
func (m *mockStore) UpsertUser(context.Context, string, domain.UserPatch) error { return nil }
func (m *mockStore) CreateOrder(context.Context, string, string, []domain.CartLine, int64) (string, error) {
	return "", errors.New("not supported")
}
func (m *mockStore) GetOrder(context.Context, string) (*domain.Order, error) {
	return nil, store.ErrOrderNotFound
}
func (m *mockStore) GetLastOrder(context.Context, string) (*domain.Order, error) {
	return nil, store.ErrOrderNotFound
}
func (m *mockStore) SetOrderStatus(context.Context, string, domain.Status) error { return nil }

// stubCatalog serves a fixed store/menu set.
type stubCatalog struct {
	stores []catalog.Store
	menu   map[string][]catalog.MenuItem
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{
		stores: []catalog.Store{
			{ID: "msk-1", Name: "PizzaFlow Tverskaya", City: "Moscow"},
			{ID: "spb-1", Name: "PizzaFlow Nevsky", City: "Saint Petersburg"},
		},
		menu: map[string][]catalog.MenuItem{
			"msk-1": {
				{ID: "pepperoni", Name: "Pepperoni", StoreID: "msk-1", Sizes: map[string]int64{"M": 64900, "L": 79900}},
				{ID: "margherita", Name: "Margherita", StoreID: "msk-1", Sizes: map[string]int64{"L": 69900}},
			},
			"spb-1": {
				{ID: "veggie", Name: "Veggie", StoreID: "spb-1", Sizes: map[string]int64{"S": 44900}},
			},
		},
	}
}

func (s *stubCatalog) ListStores(context.Context) ([]catalog.Store, error) {
	return s.stores, nil
}

func (s *stubCatalog) ListMenuItems(_ context.Context, storeID string) ([]catalog.MenuItem, error) {
	return s.menu[storeID], nil
}

func newTestManager(st store.Store) *Manager {
	return NewManager(st, newStubCatalog(), userlock.New())
}

func TestAddItem_CopiesPriceFromCatalog(t *testing.T) {
	st := newMockStore()
	m := newTestManager(st)

	line, err := m.AddItem(context.Background(), "u1", "pepperoni", "m", 2)
	require.NoError(t, err)

	assert.Equal(t, "Pepperoni", line.ItemName)
	assert.Equal(t, "msk-1", line.StoreID)
	assert.Equal(t, "M", line.Size)
	assert.Equal(t, int64(64900), line.Price)
	assert.Equal(t, int64(129800), line.Subtotal())

	got, _, err := m.View(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, line, got[0])
}

func TestAddItem_RejectionsLeaveCartUnchanged(t *testing.T) {
	tests := []struct {
		name   string
		itemID string
		size   string
		qty    int
		reason RejectReason
	}{
		{"zero quantity", "pepperoni", "M", 0, ReasonQuantityInvalid},
		{"negative quantity", "pepperoni", "M", -1, ReasonQuantityInvalid},
		{"unknown item", "calzone", "M", 1, ReasonItemNotFound},
		{"size not offered", "margherita", "S", 1, ReasonSizeNotOffered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newMockStore()
			m := newTestManager(st)

			_, err := m.AddItem(context.Background(), "u1", tt.itemID, tt.size, tt.qty)
			require.Error(t, err)

			var re *RejectError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.reason, re.Reason)

			lines, total, err := m.View(context.Background(), "u1")
			require.NoError(t, err)
			assert.Empty(t, lines)
			assert.Zero(t, total)
		})
	}
}

func TestAddBatch_PartialSuccess(t *testing.T) {
	st := newMockStore()
	m := newTestManager(st)

	res, err := m.AddBatch(context.Background(), "u1", []string{
		"pepperoni M 2",
		"margherita L 1",
		"bogus",
	})
	require.NoError(t, err)

	require.Len(t, res.Added, 2)
	require.Len(t, res.Rejected, 1)
	assert.Equal(t, "bogus", res.Rejected[0].Spec)
	assert.Equal(t, ReasonMalformed, res.Rejected[0].Reason)

	lines, total, err := m.View(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, int64(2*64900+69900), total)
}

func TestAddBatch_PerRequestReasons(t *testing.T) {
	st := newMockStore()
	m := newTestManager(st)

	res, err := m.AddBatch(context.Background(), "u1", []string{
		"pepperoni M zero",
		"pepperoni M 0",
		"pepperoni M -3",
		"calzone M 1",
		"margherita S 1",
		"too many words here now",
		"  ",
	})
	require.NoError(t, err)

	assert.Empty(t, res.Added)
	require.Len(t, res.Rejected, 6)
	assert.Equal(t, ReasonQuantityInvalid, res.Rejected[0].Reason)
	assert.Equal(t, ReasonQuantityInvalid, res.Rejected[1].Reason)
	assert.Equal(t, ReasonQuantityInvalid, res.Rejected[2].Reason)
	assert.Equal(t, ReasonItemNotFound, res.Rejected[3].Reason)
	assert.Equal(t, ReasonSizeNotOffered, res.Rejected[4].Reason)
	assert.Equal(t, ReasonMalformed, res.Rejected[5].Reason)

	lines, _, err := m.View(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestAddBatch_AllRejectedDoesNotTouchStore(t *testing.T) {
	st := newMockStore()
	st.err = errors.New("store must not be called")
	m := newTestManager(st)

	res, err := m.AddBatch(context.Background(), "u1", []string{"bogus"})
	require.NoError(t, err)
	assert.Empty(t, res.Added)
	assert.Len(t, res.Rejected, 1)
}

func TestView_TotalMatchesCommittedLines(t *testing.T) {
	st := newMockStore()
	m := newTestManager(st)
	ctx := context.Background()

	adds := []struct {
		itemID string
		size   string
		qty    int
	}{
		{"pepperoni", "M", 2},
		{"pepperoni", "L", 1},
		{"veggie", "S", 3},
	}
	var want int64
	for _, a := range adds {
		line, err := m.AddItem(ctx, "u1", a.itemID, a.size, a.qty)
		require.NoError(t, err)
		want += line.Subtotal()
	}

	lines, total, err := m.View(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, lines, len(adds))
	assert.Equal(t, want, total)
}

func TestClear(t *testing.T) {
	st := newMockStore()
	m := newTestManager(st)
	ctx := context.Background()

	_, err := m.AddItem(ctx, "u1", "pepperoni", "M", 1)
	require.NoError(t, err)
	require.NoError(t, m.Clear(ctx, "u1"))

	lines, total, err := m.View(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.Zero(t, total)
}

func TestAddItem_ConcurrentAddsDoNotLoseLines(t *testing.T) {
	st := newMockStore()
	m := newTestManager(st)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := m.AddItem(ctx, "u1", "pepperoni", "M", 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	lines, _, err := m.View(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, lines, n)
}
