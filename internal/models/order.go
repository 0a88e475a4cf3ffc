package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderStatus enumerates the order state machine. The happy path is
// PENDING -> PROCESSING -> SHIPPED -> DELIVERED; cancellation is allowed
// from PENDING or PROCESSING only.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusReturned   OrderStatus = "RETURNED"
	OrderStatusRefunded   OrderStatus = "REFUNDED"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned,
		OrderStatusRefunded:
		return true
	}
	return false
}

// Cancellable reports whether an order in status s may still be cancelled.
// Shipped and delivered orders cannot be, nor can any terminal status.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPending || s == OrderStatusProcessing
}

// Order is an immutable snapshot of a cart at checkout time. Only Status
// ever changes after creation; orders are never deleted.
type Order struct {
	ID          string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string      `json:"user_id" gorm:"index;type:varchar(36)"`
	OrderDate   time.Time   `json:"order_date"`
	TotalAmount float64     `json:"total_amount"`
	Status      OrderStatus `json:"status" gorm:"type:varchar(20)"`
	PaymentID   string      `json:"payment_id" gorm:"type:varchar(36)"`
	Payment     *Payment    `json:"payment,omitempty" gorm:"foreignKey:PaymentID"`
	Items       []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	gorm.Model              // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// OrderItem is the immutable per-line snapshot taken from a cart item.
type OrderItem struct {
	ID              string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID         string  `json:"order_id" gorm:"index;type:varchar(36)"`
	ProductID       string  `json:"product_id" gorm:"type:varchar(36)"`
	Quantity        int     `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	DiscountPercent float64 `json:"discount_percent"`
	gorm.Model              // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
