package order

import (
	"errors"
	"fmt"

	"github.com/example/otaku-market/internal/model"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrEmptyOrder       = errors.New("order must have at least one item")
	ErrInvalidStatus    = errors.New("invalid order status")
	ErrAlreadyCancelled = errors.New("order is already cancelled")
	ErrUnauthorized     = errors.New("caller is not authenticated")
)

// InsufficientStockError names the product that could not cover the
// requested quantity and how many units remain, so the buyer can retry with
// a smaller quantity.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Remaining int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, %d remaining", e.ProductID, e.Requested, e.Remaining)
}

// InvalidTransitionError reports a status change the transition graph does
// not allow.
type InvalidTransitionError struct {
	From model.OrderStatus
	To   model.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}
