package order

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/pizzaflow/internal/domain"
	"github.com/jcmexdev/pizzaflow/internal/payment"
	"github.com/jcmexdev/pizzaflow/internal/pkg/userlock"
	"github.com/jcmexdev/pizzaflow/internal/store"
)

// memStore is an in-memory store.Store for engine tests. CreateOrder consumes
// the cart in the same call, mirroring the transactional contract of the
// SQLite implementation.
type memStore struct {
	mu     sync.Mutex
	carts  map[string][]domain.CartLine
	orders map[string]*domain.Order
	seq    map[string]int
	nextID int
}

func newMemStore() *memStore {
	return &memStore{
		carts:  make(map[string][]domain.CartLine),
		orders: make(map[string]*domain.Order),
		seq:    make(map[string]int),
	}
}

func (m *memStore) GetCart(_ context.Context, userID string) ([]domain.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.CartLine(nil), m.carts[userID]...), nil
}

func (m *memStore) ReplaceCart(_ context.Context, userID string, lines []domain.CartLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[userID] = append([]domain.CartLine(nil), lines...)
	return nil
}

func (m *memStore) ClearCart(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, userID)
	return nil
}

func (m *memStore) CreateOrder(_ context.Context, userID, storeID string, lines []domain.CartLine, total int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := fmt.Sprintf("order-%d", m.nextID)

	o := &domain.Order{
		ID:        id,
		UserID:    userID,
		StoreID:   storeID,
		Total:     total,
		Status:    domain.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	for _, l := range lines {
		o.Lines = append(o.Lines, domain.OrderLine{
			ItemID:   l.ItemID,
			ItemName: l.ItemName,
			Size:     l.Size,
			Qty:      l.Qty,
			Price:    l.Price,
		})
	}
	m.orders[id] = o
	m.seq[id] = m.nextID
	delete(m.carts, userID)
	return id, nil
}

func (m *memStore) GetOrder(_ context.Context, orderID string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, store.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memStore) GetLastOrder(_ context.Context, userID string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var last *domain.Order
	for _, o := range m.orders {
		if o.UserID != userID {
			continue
		}
		if last == nil || m.seq[o.ID] > m.seq[last.ID] {
			last = o
		}
	}
	if last == nil {
		return nil, store.ErrOrderNotFound
	}
	cp := *last
	cp.Lines = nil
	return &cp, nil
}

func (m *memStore) SetOrderStatus(_ context.Context, orderID string, status domain.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[orderID]; ok {
		o.Status = status
	}
	return nil
}

func (m *memStore) GetUser(context.Context, string) (*domain.User, error) {
	return nil, store.ErrUserNotFound
}
func (m *memStore) UpsertUser(context.Context, string, domain.UserPatch) error { return nil }

func newTestEngine(st store.Store) *Engine {
	return NewEngine(st, payment.MockProvider{}, userlock.New())
}

func mskLines() []domain.CartLine {
	return []domain.CartLine{
		{ItemID: "pepperoni", ItemName: "Pepperoni", StoreID: "msk-1", Size: "M", Qty: 2, Price: 64900},
		{ItemID: "margherita", ItemName: "Margherita", StoreID: "msk-1", Size: "L", Qty: 1, Price: 69900},
	}
}

func TestConfirmOrder_EmptyCart(t *testing.T) {
	st := newMemStore()
	e := newTestEngine(st)

	_, err := e.ConfirmOrder(context.Background(), "u1", "msk-1")
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, st.orders)
}

func TestConfirmOrder_MixedStore(t *testing.T) {
	st := newMemStore()
	e := newTestEngine(st)
	ctx := context.Background()

	lines := append(mskLines(), domain.CartLine{
		ItemID: "veggie", ItemName: "Veggie", StoreID: "spb-1", Size: "S", Qty: 1, Price: 44900,
	})
	require.NoError(t, st.ReplaceCart(ctx, "u1", lines))

	_, err := e.ConfirmOrder(ctx, "u1", "msk-1")
	assert.ErrorIs(t, err, ErrMixedStore)
	assert.Empty(t, st.orders)

	// The cart is untouched by the rejection.
	got, err := st.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestConfirmOrder_SnapshotsCartAndClearsIt(t *testing.T) {
	st := newMemStore()
	e := newTestEngine(st)
	ctx := context.Background()

	lines := mskLines()
	require.NoError(t, st.ReplaceCart(ctx, "u1", lines))
	wantTotal := domain.CartTotal(lines)

	conf, err := e.ConfirmOrder(ctx, "u1", "msk-1")
	require.NoError(t, err)
	assert.Equal(t, wantTotal, conf.Total)

	cartAfter, err := st.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, cartAfter)

	o, err := st.GetOrder(ctx, conf.OrderID)
	require.NoError(t, err)
	assert.Equal(t, wantTotal, o.Total)
	assert.Equal(t, domain.StatusPending, o.Status)
	require.Len(t, o.Lines, len(lines))
	for i, l := range o.Lines {
		assert.Equal(t, lines[i].ItemID, l.ItemID)
		assert.Equal(t, lines[i].Size, l.Size)
		assert.Equal(t, lines[i].Qty, l.Qty)
		assert.Equal(t, lines[i].Price, l.Price)
	}

	// Re-confirming the now-empty cart must not double-charge.
	_, err = e.ConfirmOrder(ctx, "u1", "msk-1")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestSettlePayment_NoOrder(t *testing.T) {
	e := newTestEngine(newMemStore())

	_, err := e.SettlePayment(context.Background(), "u1", payment.OutcomeOK)
	assert.ErrorIs(t, err, ErrNoOrder)
}

func confirmOne(t *testing.T, st *memStore, e *Engine, userID string) string {
	t.Helper()
	require.NoError(t, st.ReplaceCart(context.Background(), userID, mskLines()))
	conf, err := e.ConfirmOrder(context.Background(), userID, "msk-1")
	require.NoError(t, err)
	return conf.OrderID
}

func TestSettlePayment_OKConfirms(t *testing.T) {
	st := newMemStore()
	e := newTestEngine(st)
	orderID := confirmOne(t, st, e, "u1")

	set, err := e.SettlePayment(context.Background(), "u1", payment.OutcomeOK)
	require.NoError(t, err)
	assert.Equal(t, orderID, set.OrderID)
	assert.Equal(t, domain.StatusConfirmed, set.Status)
	assert.Equal(t, payment.StatusSucceeded, set.Result.Status)
	assert.Equal(t, "MockPay", set.Result.Provider)

	o, err := st.GetOrder(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, o.Status)
}

func TestSettlePayment_FailStaysPending(t *testing.T) {
	st := newMemStore()
	e := newTestEngine(st)
	orderID := confirmOne(t, st, e, "u1")

	set, err := e.SettlePayment(context.Background(), "u1", payment.OutcomeFail)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, set.Status)

	o, err := st.GetOrder(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, o.Status)
}

func TestSettlePayment_FailDowngradesConfirmed(t *testing.T) {
	st := newMemStore()
	e := newTestEngine(st)
	orderID := confirmOne(t, st, e, "u1")

	_, err := e.SettlePayment(context.Background(), "u1", payment.OutcomeOK)
	require.NoError(t, err)

	// An explicit failed attempt moves a Confirmed order back to Pending.
	set, err := e.SettlePayment(context.Background(), "u1", payment.OutcomeFail)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, set.Status)

	o, err := st.GetOrder(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, o.Status)
}

func TestSettlePayment_DeliveredIsTerminal(t *testing.T) {
	st := newMemStore()
	e := newTestEngine(st)
	orderID := confirmOne(t, st, e, "u1")
	require.NoError(t, st.SetOrderStatus(context.Background(), orderID, domain.StatusDelivered))

	_, err := e.SettlePayment(context.Background(), "u1", payment.OutcomeOK)
	assert.ErrorIs(t, err, ErrAlreadyDelivered)

	o, err := st.GetOrder(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, o.Status)
}

func TestStatus_ReturnsLastOrder(t *testing.T) {
	st := newMemStore()
	e := newTestEngine(st)
	ctx := context.Background()

	_, err := e.Status(ctx, "u1")
	assert.ErrorIs(t, err, ErrNoOrder)

	first := confirmOne(t, st, e, "u1")
	second := confirmOne(t, st, e, "u1")
	require.NotEqual(t, first, second)

	o, err := e.Status(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, second, o.ID)
	assert.Equal(t, domain.StatusPending, o.Status)
}
