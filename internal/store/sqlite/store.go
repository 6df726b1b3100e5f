// Package sqlite provides the SQLite-backed implementation of store.Store.
//
// WAL mode is enabled on Open so that readers never block the writer and vice
// versa. The pool is capped at a single connection because SQLite performs
// best with one writer, and every operation here is a short transaction.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/pizzaflow/internal/domain"
	"github.com/jcmexdev/pizzaflow/internal/store"

	// Register the pure-Go SQLite driver. modernc.org/sqlite avoids CGO,
	// which keeps Docker builds on Alpine trivial.
	_ "modernc.org/sqlite"
)

// createOrderAttempts bounds the id-collision retry loop in CreateOrder.
const createOrderAttempts = 3

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id          TEXT PRIMARY KEY,
    username    TEXT NOT NULL DEFAULT '',
    first_name  TEXT NOT NULL DEFAULT '',
    real_name   TEXT NOT NULL DEFAULT '',
    address     TEXT NOT NULL DEFAULT '',
    age         INTEGER
);

-- Cart lines have no identity of their own beyond the owning user; the
-- AUTOINCREMENT surrogate key only preserves insertion order.
CREATE TABLE IF NOT EXISTS cart_items (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id     TEXT    NOT NULL,
    item_id     TEXT    NOT NULL,
    item_name   TEXT    NOT NULL,
    store_id    TEXT    NOT NULL,
    size        TEXT    NOT NULL,
    qty         INTEGER NOT NULL,
    price       INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cart_items_user_id ON cart_items(user_id);

CREATE TABLE IF NOT EXISTS orders (
    id          TEXT    PRIMARY KEY,
    user_id     TEXT    NOT NULL,
    store_id    TEXT    NOT NULL,
    total       INTEGER NOT NULL,
    status      TEXT    NOT NULL,
    -- RFC3339 stored as TEXT, SQLite idiom.
    created_at  TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at);

CREATE TABLE IF NOT EXISTS order_items (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id    TEXT    NOT NULL,
    item_id     TEXT    NOT NULL,
    item_name   TEXT    NOT NULL,
    size        TEXT    NOT NULL,
    qty         INTEGER NOT NULL,
    price       INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
`

// Store is the SQLite implementation of store.Store.
type Store struct {
	db *sql.DB

	// newID generates candidate order ids. Overridable in tests to force
	// collisions.
	newID func() string

	// now supplies creation timestamps. Overridable in tests.
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open opens (or creates) the SQLite database at the given path and applies
// the schema.
//
//	st, err := sqlite.Open("./data/pizzaflow.db")
func Open(path string) (*Store, error) {
	// The pure-Go driver takes _pragma query parameters. busy_timeout waits
	// for locks instead of failing immediately.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	// Use "sqlite", not "sqlite3", for the modernc driver.
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Store{db: db, newID: uuid.NewString, now: time.Now}, nil
}

// Close releases the database connection. Call it with defer in main().
func (s *Store) Close() error {
	return s.db.Close()
}

// GetUser loads a user by identity token.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	const q = `
		SELECT id, username, first_name, real_name, address, age
		FROM   users
		WHERE  id = ?`

	var u domain.User
	var age sql.NullInt64
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&u.ID, &u.Username, &u.FirstName, &u.RealName, &u.Address, &age,
	)
	if err == sql.ErrNoRows {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get user %q: %w", id, err)
	}
	if age.Valid {
		v := int(age.Int64)
		u.Age = &v
	}
	return &u, nil
}

// UpsertUser merges the patch over the current record. The read and the write
// happen in one transaction so concurrent upserts for the same user cannot
// lose fields.
func (s *Store) UpsertUser(ctx context.Context, id string, patch domain.UserPatch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: upsert user %q: begin: %w", id, err)
	}
	defer func() { _ = tx.Rollback() }()

	u := domain.User{ID: id}
	var age sql.NullInt64
	err = tx.QueryRowContext(ctx, `
		SELECT username, first_name, real_name, address, age
		FROM users WHERE id = ?`, id,
	).Scan(&u.Username, &u.FirstName, &u.RealName, &u.Address, &age)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: upsert user %q: read: %w", id, err)
	}
	if age.Valid {
		v := int(age.Int64)
		u.Age = &v
	}

	patch.Apply(&u)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, username, first_name, real_name, address, age)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username   = excluded.username,
			first_name = excluded.first_name,
			real_name  = excluded.real_name,
			address    = excluded.address,
			age        = excluded.age`,
		id, u.Username, u.FirstName, u.RealName, u.Address, nullableInt(u.Age),
	)
	if err != nil {
		return fmt.Errorf("sqlite: upsert user %q: write: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: upsert user %q: commit: %w", id, err)
	}
	return nil
}

// GetCart returns the user's cart lines in insertion order.
func (s *Store) GetCart(ctx context.Context, userID string) ([]domain.CartLine, error) {
	const q = `
		SELECT item_id, item_name, store_id, size, qty, price
		FROM   cart_items
		WHERE  user_id = ?
		ORDER  BY id`

	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: get cart for %q: %w", userID, err)
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(&l.ItemID, &l.ItemName, &l.StoreID, &l.Size, &l.Qty, &l.Price); err != nil {
			return nil, fmt.Errorf("sqlite: scan cart line for %q: %w", userID, err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate cart for %q: %w", userID, err)
	}
	return lines, nil
}

// ReplaceCart deletes the user's cart and writes the given lines in one
// transaction.
func (s *Store) ReplaceCart(ctx context.Context, userID string, lines []domain.CartLine) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: replace cart for %q: begin: %w", userID, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("sqlite: replace cart for %q: delete: %w", userID, err)
	}
	for _, l := range lines {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO cart_items (user_id, item_id, item_name, store_id, size, qty, price)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			userID, l.ItemID, l.ItemName, l.StoreID, l.Size, l.Qty, l.Price,
		)
		if err != nil {
			return fmt.Errorf("sqlite: replace cart for %q: insert: %w", userID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: replace cart for %q: commit: %w", userID, err)
	}
	return nil
}

// ClearCart removes all of the user's cart lines.
func (s *Store) ClearCart(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("sqlite: clear cart for %q: %w", userID, err)
	}
	return nil
}

// CreateOrder writes the order header, its lines, and the cart deletion in a
// single transaction. The generated id is checked for collisions and
// regenerated with a fresh value up to createOrderAttempts times before the
// operation fails.
func (s *Store) CreateOrder(ctx context.Context, userID, storeID string, lines []domain.CartLine, total int64) (string, error) {
	createdAt := s.now().UTC()

	for attempt := 0; attempt < createOrderAttempts; attempt++ {
		orderID := s.newID()

		id, err := s.tryCreateOrder(ctx, orderID, userID, storeID, lines, total, createdAt)
		if err != nil {
			return "", err
		}
		if id != "" {
			return id, nil
		}
		// Collision: loop with a freshly generated id.
	}
	return "", fmt.Errorf("sqlite: create order for %q: id collision after %d attempts", userID, createOrderAttempts)
}

// tryCreateOrder attempts one transactional insert. It returns ("", nil) when
// the candidate id already exists so the caller can retry.
func (s *Store) tryCreateOrder(ctx context.Context, orderID, userID, storeID string, lines []domain.CartLine, total int64, createdAt time.Time) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("sqlite: create order for %q: begin: %w", userID, err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM orders WHERE id = ?`, orderID).Scan(&exists)
	if err == nil {
		return "", nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("sqlite: create order for %q: check id: %w", userID, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, store_id, total, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		orderID, userID, storeID, total, string(domain.StatusPending), formatTime(createdAt),
	)
	if err != nil {
		return "", fmt.Errorf("sqlite: create order for %q: insert header: %w", userID, err)
	}

	for _, l := range lines {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, item_id, item_name, size, qty, price)
			VALUES (?, ?, ?, ?, ?, ?)`,
			orderID, l.ItemID, l.ItemName, l.Size, l.Qty, l.Price,
		)
		if err != nil {
			return "", fmt.Errorf("sqlite: create order for %q: insert line: %w", userID, err)
		}
	}

	// The cart is consumed by the order; deleting it here makes order
	// creation and cart clearing one atomic unit.
	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, userID); err != nil {
		return "", fmt.Errorf("sqlite: create order for %q: clear cart: %w", userID, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("sqlite: create order for %q: commit: %w", userID, err)
	}
	return orderID, nil
}

// GetOrder loads an order together with its lines.
func (s *Store) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	o, err := s.scanOrder(s.db.QueryRowContext(ctx, `
		SELECT id, user_id, store_id, total, status, created_at
		FROM   orders
		WHERE  id = ?`, orderID))
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT item_id, item_name, size, qty, price
		FROM   order_items
		WHERE  order_id = ?
		ORDER  BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: get order lines for %q: %w", orderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.ItemID, &l.ItemName, &l.Size, &l.Qty, &l.Price); err != nil {
			return nil, fmt.Errorf("sqlite: scan order line for %q: %w", orderID, err)
		}
		o.Lines = append(o.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate order lines for %q: %w", orderID, err)
	}
	return o, nil
}

// GetLastOrder loads the user's most recent order header. Ties on created_at
// are broken by id so the result is deterministic.
func (s *Store) GetLastOrder(ctx context.Context, userID string) (*domain.Order, error) {
	return s.scanOrder(s.db.QueryRowContext(ctx, `
		SELECT id, user_id, store_id, total, status, created_at
		FROM   orders
		WHERE  user_id = ?
		ORDER  BY created_at DESC, id DESC
		LIMIT  1`, userID))
}

// SetOrderStatus updates only the status column.
func (s *Store) SetOrderStatus(ctx context.Context, orderID string, status domain.Status) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, string(status), orderID); err != nil {
		return fmt.Errorf("sqlite: set status for %q: %w", orderID, err)
	}
	return nil
}

func (s *Store) scanOrder(row *sql.Row) (*domain.Order, error) {
	var o domain.Order
	var status, createdAt string
	err := row.Scan(&o.ID, &o.UserID, &o.StoreID, &o.Total, &status, &createdAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: scan order: %w", err)
	}
	o.Status = domain.Status(status)
	o.CreatedAt, err = parseRFC3339(createdAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// nullableInt returns nil for an unset age so SQLite stores NULL.
func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
