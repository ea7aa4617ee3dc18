package order

import (
	"context"

	"github.com/example/otaku-market/internal/model"
)

// Store is the order persistence boundary. There is one process-wide
// implementation backed by the shared connection pool; it is constructed at
// startup and injected into the service.
type Store interface {
	// Begin opens a transaction. Everything the placement and cancellation
	// paths read or write goes through the returned Tx so stock checks and
	// decrements see a transaction-scoped view of product rows.
	Begin(ctx context.Context) (Tx, error)

	OrderByID(ctx context.Context, id string) (*model.Order, error)
	OrdersByUser(ctx context.Context, userID string) ([]model.Order, error)
	SetCheckoutSession(ctx context.Context, orderID, sessionID string) error

	// MarkPaid flips payment status UNPAID -> PAID and reports whether any
	// row changed. A redelivered webhook finds the guard already consumed
	// and returns false.
	MarkPaid(ctx context.Context, orderID string) (bool, error)
}

// Tx is one database transaction. Commit or Rollback must be called exactly
// once; Rollback after Commit is a no-op so it can sit in a defer.
type Tx interface {
	// ProductByID reads a product row with a row lock so concurrent
	// placements against the same product serialize.
	ProductByID(ctx context.Context, id string) (*model.Product, error)

	// DecrementStock subtracts qty atomically, guarded by stock >= qty.
	// It returns *InsufficientStockError when the guard fails.
	DecrementStock(ctx context.Context, productID string, qty int) error

	IncrementStock(ctx context.Context, productID string, qty int) error

	InsertOrder(ctx context.Context, o *model.Order) error

	// OrderForUpdate loads an order with its items under a row lock.
	OrderForUpdate(ctx context.Context, id string) (*model.Order, error)

	UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus, payment model.PaymentStatus) error

	Commit() error
	Rollback() error
}
