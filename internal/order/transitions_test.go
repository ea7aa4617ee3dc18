package order

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/otaku-market/internal/model"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to model.OrderStatus
		want     bool
	}{
		{model.StatusPending, model.StatusShipped, true},
		{model.StatusPending, model.StatusCancelled, true},
		{model.StatusPending, model.StatusDelivered, false},
		{model.StatusShipped, model.StatusDelivered, true},
		{model.StatusShipped, model.StatusCancelled, true},
		{model.StatusShipped, model.StatusPending, false},
		{model.StatusDelivered, model.StatusCancelled, false},
		{model.StatusDelivered, model.StatusShipped, false},
		{model.StatusCancelled, model.StatusPending, false},
		{model.StatusCancelled, model.StatusShipped, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}
