package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus enumerates the order lifecycle.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
)

var nextOrderStatus = map[OrderStatus]OrderStatus{
	OrderStatusPending:    OrderStatusProcessing,
	OrderStatusProcessing: OrderStatusShipped,
	OrderStatusShipped:    OrderStatusDelivered,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

// CanTransitionTo allows only a single step forward.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return nextOrderStatus[s] == next
}

// Order belongs to exactly one user. TotalPrice is computed at creation.
type Order struct {
	ID         int64
	UserID     int64
	Status     OrderStatus
	OrderDate  time.Time
	TotalPrice decimal.Decimal
}

// OrderItem is a line of an order with the unit price captured at creation.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Price     decimal.Decimal
	Quantity  int
}

// Subtotal returns price times quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderDetail is an eagerly loaded order with its owner and items.
type OrderDetail struct {
	Order
	UserEmail string
	Items     []OrderItem
}
