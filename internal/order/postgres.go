package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/example/otaku-market/internal/model"
)

const itemsWithNamesQuery = `
	SELECT oi.id, oi.order_id, oi.product_id, p.name AS product_name, oi.quantity, oi.price
	FROM order_items oi
	JOIN products p ON p.id = oi.product_id
	WHERE oi.order_id = $1
	ORDER BY oi.id`

// PGStore implements Store over the shared Postgres pool. Row locks taken
// by ProductByID and OrderForUpdate make concurrent placements and
// cancellations serialize per row.
type PGStore struct {
	db *sqlx.DB
}

func NewPGStore(db *sqlx.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &pgTx{tx: tx}, nil
}

func (s *PGStore) OrderByID(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	err := s.db.GetContext(ctx, &o, `SELECT * FROM orders WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
		}
		return nil, err
	}
	if err := s.db.SelectContext(ctx, &o.Items, itemsWithNamesQuery, id); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *PGStore) OrdersByUser(ctx context.Context, userID string) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.SelectContext(ctx, &orders,
		`SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	// One batch query for all line items instead of one per order.
	ids := make([]string, len(orders))
	byOrder := make(map[string]*model.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		byOrder[orders[i].ID] = &orders[i]
	}
	var items []model.OrderItem
	err = s.db.SelectContext(ctx, &items, `
		SELECT oi.id, oi.order_id, oi.product_id, p.name AS product_name, oi.quantity, oi.price
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.id`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		o := byOrder[it.OrderID]
		o.Items = append(o.Items, it)
	}
	return orders, nil
}

func (s *PGStore) SetCheckoutSession(ctx context.Context, orderID, sessionID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET checkout_session_id = $1, updated_at = NOW() WHERE id = $2`,
		sessionID, orderID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	return nil
}

func (s *PGStore) MarkPaid(ctx context.Context, orderID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders SET payment_status = 'PAID', updated_at = NOW()
		WHERE id = $1 AND payment_status = 'UNPAID'`, orderID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type pgTx struct {
	tx *sqlx.Tx
}

func (t *pgTx) ProductByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	err := t.tx.GetContext(ctx, &p, `SELECT * FROM products WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		return nil, err
	}
	return &p, nil
}

func (t *pgTx) DecrementStock(ctx context.Context, productID string, qty int) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE products SET stock = stock - $1, updated_at = NOW()
		WHERE id = $2 AND stock >= $1`, qty, productID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var remaining int
		err := t.tx.GetContext(ctx, &remaining, `SELECT stock FROM products WHERE id = $1`, productID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		if err != nil {
			return err
		}
		return &InsufficientStockError{ProductID: productID, Requested: qty, Remaining: remaining}
	}
	return nil
}

func (t *pgTx) IncrementStock(ctx context.Context, productID string, qty int) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE products SET stock = stock + $1, updated_at = NOW()
		WHERE id = $2`, qty, productID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	return nil
}

func (t *pgTx) InsertOrder(ctx context.Context, o *model.Order) error {
	_, err := t.tx.NamedExecContext(ctx, `
		INSERT INTO orders (
			id, user_id, customer_name, email, address, city, zip_code,
			status, payment_status, total, created_at, updated_at
		) VALUES (
			:id, :user_id, :customer_name, :email, :address, :city, :zip_code,
			:status, :payment_status, :total, :created_at, :updated_at
		)`, o)
	if err != nil {
		return err
	}
	for _, it := range o.Items {
		_, err := t.tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4, $5)`,
			it.ID, it.OrderID, it.ProductID, it.Quantity, it.Price)
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *pgTx) OrderForUpdate(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	err := t.tx.GetContext(ctx, &o, `SELECT * FROM orders WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
		}
		return nil, err
	}
	if err := t.tx.SelectContext(ctx, &o.Items, itemsWithNamesQuery, id); err != nil {
		return nil, err
	}
	return &o, nil
}

func (t *pgTx) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus, payment model.PaymentStatus) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE orders SET status = $1, payment_status = $2, updated_at = NOW()
		WHERE id = $3`, status, payment, id)
	return err
}

func (t *pgTx) Commit() error {
	return t.tx.Commit()
}

func (t *pgTx) Rollback() error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}
