package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shop-service/internal/api/dto"
	"github.com/spec-kit/shop-service/internal/service"
)

// IdempotencyKeyHeader lets clients retry order creation safely.
const IdempotencyKeyHeader = "Idempotency-Key"

// OrdersHandler manages order endpoints.
type OrdersHandler struct {
	orders *service.OrderService
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orders *service.OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

// Create POST /orders.
func (h *OrdersHandler) Create(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.CreateOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	input := service.CreateOrderInput{IdempotencyKey: c.Get(IdempotencyKeyHeader)}
	for _, item := range req.Items {
		input.Items = append(input.Items, service.OrderItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	result, err := h.orders.CreateOrder(c.UserContext(), p.UserID(), input)
	if err != nil {
		return err
	}
	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
		c.Set("Idempotent-Replayed", "true")
	}
	return c.Status(status).JSON(dto.NewOrderSummary(result.Order))
}

// List GET /orders.
func (h *OrdersHandler) List(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	orders, err := h.orders.ListOrders(c.UserContext(), p.UserID())
	if err != nil {
		return err
	}
	items := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, dto.NewOrderResponse(&orders[i]))
	}
	return c.JSON(items)
}

// Get GET /orders/:id.
func (h *OrdersHandler) Get(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	order, err := h.orders.GetOrder(c.UserContext(), p.UserID(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewOrderResponse(order))
}

// UpdateStatus PATCH /orders/:id/status.
func (h *OrdersHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateOrderStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	order, err := h.orders.UpdateOrderStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewOrderResponse(order))
}
