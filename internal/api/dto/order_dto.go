package dto

import (
	"time"

	"github.com/spec-kit/shop-service/internal/domain"
)

// CreateOrderRequest payload.
type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items"`
}

// OrderItemRequest is one requested line.
type OrderItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// UpdateOrderStatusRequest payload.
type UpdateOrderStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

// OrderResponse summarizes an order. Items are only filled on read endpoints.
type OrderResponse struct {
	ID         int64               `json:"id"`
	User       string              `json:"user"`
	Status     domain.OrderStatus  `json:"status"`
	OrderDate  time.Time           `json:"order_date"`
	TotalPrice Money               `json:"total_price"`
	Items      []OrderItemResponse `json:"items,omitempty"`
}

// OrderItemResponse is a line with its snapshot price.
type OrderItemResponse struct {
	ID        int64 `json:"id"`
	ProductID int64 `json:"product_id"`
	Price     Money `json:"price"`
	Quantity  int   `json:"quantity"`
	Subtotal  Money `json:"subtotal"`
}

// NewOrderSummary maps an order without its items.
func NewOrderSummary(o *domain.OrderDetail) OrderResponse {
	return OrderResponse{
		ID:         o.ID,
		User:       o.UserEmail,
		Status:     o.Status,
		OrderDate:  o.OrderDate,
		TotalPrice: NewMoney(o.TotalPrice),
	}
}

// NewOrderResponse maps an order with its items.
func NewOrderResponse(o *domain.OrderDetail) OrderResponse {
	resp := NewOrderSummary(o)
	resp.Items = make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Price:     NewMoney(item.Price),
			Quantity:  item.Quantity,
			Subtotal:  NewMoney(item.Subtotal()),
		})
	}
	return resp
}
