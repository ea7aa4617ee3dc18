package model

import "time"

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "UNPAID"
	PaymentPaid   PaymentStatus = "PAID"
	PaymentFailed PaymentStatus = "FAILED"
)

// Order is a committed purchase. The shipping fields are a snapshot taken at
// placement time, Total is frozen (shipping fee + sum of item line totals)
// and UserID is nil for guest checkout.
type Order struct {
	ID                string        `db:"id" json:"id"`
	UserID            *string       `db:"user_id" json:"user_id"`
	CustomerName      string        `db:"customer_name" json:"customer_name"`
	Email             string        `db:"email" json:"email"`
	Address           string        `db:"address" json:"address"`
	City              string        `db:"city" json:"city"`
	ZipCode           string        `db:"zip_code" json:"zip_code"`
	Status            OrderStatus   `db:"status" json:"status"`
	PaymentStatus     PaymentStatus `db:"payment_status" json:"payment_status"`
	Total             int64         `db:"total" json:"total"`
	CheckoutSessionID *string       `db:"checkout_session_id" json:"checkout_session_id"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updated_at"`

	Items []OrderItem `db:"-" json:"items"`
}

// OrderItem freezes the unit charge price at purchase time. Immutable once
// created; ProductName is joined in on reads for display and email.
type OrderItem struct {
	ID          string `db:"id" json:"id"`
	OrderID     string `db:"order_id" json:"order_id"`
	ProductID   string `db:"product_id" json:"product_id"`
	ProductName string `db:"product_name" json:"product_name"`
	Quantity    int    `db:"quantity" json:"quantity"`
	Price       int64  `db:"price" json:"price"`
}

// Address is a saved shipping address belonging to a user.
type Address struct {
	BaseModel
	UserID    string `db:"user_id" json:"user_id"`
	Label     string `db:"label" json:"label"`
	Recipient string `db:"recipient" json:"recipient"`
	Street    string `db:"street" json:"street"`
	City      string `db:"city" json:"city"`
	ZipCode   string `db:"zip_code" json:"zip_code"`
	IsDefault bool   `db:"is_default" json:"is_default"`
}
