// Package events defines the domain events exchanged between the API and
// the notifier over Kafka, and the producer/consumer plumbing around them.
package events

import (
	"encoding/json"
	"time"
)

const (
	TypeOrderPlaced        = "order.placed"
	TypeOrderStatusChanged = "order.status_changed"
	TypeProductRestocked   = "product.restocked"
)

// Envelope wraps every published event with an id, type and timestamp.
type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

type OrderLine struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

type OrderPlaced struct {
	OrderID      string      `json:"order_id"`
	Email        string      `json:"email"`
	CustomerName string      `json:"customer_name"`
	Total        int64       `json:"total"`
	Items        []OrderLine `json:"items"`
}

type OrderStatusChanged struct {
	OrderID      string `json:"order_id"`
	Email        string `json:"email"`
	CustomerName string `json:"customer_name"`
	Status       string `json:"status"`
}

type ProductRestocked struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Stock     int    `json:"stock"`
}
