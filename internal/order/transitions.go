package order

import "github.com/example/otaku-market/internal/model"

// validTransitions defines the allowed status edges. DELIVERED and
// CANCELLED are terminal.
var validTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.StatusPending:   {model.StatusShipped, model.StatusCancelled},
	model.StatusShipped:   {model.StatusDelivered, model.StatusCancelled},
	model.StatusDelivered: {},
	model.StatusCancelled: {},
}

// CanTransition reports whether an order may move from one status to
// another.
func CanTransition(from, to model.OrderStatus) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
