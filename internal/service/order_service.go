package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/events"
	"github.com/spec-kit/shop-service/internal/repository"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

// OrderService places orders and serves their read side.
type OrderService struct {
	orders     repository.OrderRepository
	products   repository.ProductRepository
	users      repository.UserRepository
	tx         repository.Transactor
	dispatcher events.Dispatcher
	idem       IdempotencyStore
	logger     *zap.Logger
	now        func() time.Time
}

// OrderDependencies bundles repositories for the order service. Idempotency is optional.
type OrderDependencies struct {
	OrderRepo   repository.OrderRepository
	ProductRepo repository.ProductRepository
	UserRepo    repository.UserRepository
	Transactor  repository.Transactor
	Dispatcher  events.Dispatcher
	Idempotency IdempotencyStore
	Logger      *zap.Logger
}

// OrderItemInput is one requested line.
type OrderItemInput struct {
	ProductID int64
	Quantity  int
}

// CreateOrderInput describes an order request.
type CreateOrderInput struct {
	Items          []OrderItemInput
	IdempotencyKey string
}

// CreateOrderResult carries the order and whether it was replayed for a known key.
type CreateOrderResult struct {
	Order    *domain.OrderDetail
	Replayed bool
}

// NewOrderService constructs the service.
func NewOrderService(deps OrderDependencies) *OrderService {
	return &OrderService{
		orders:     deps.OrderRepo,
		products:   deps.ProductRepo,
		users:      deps.UserRepo,
		tx:         deps.Transactor,
		dispatcher: deps.Dispatcher,
		idem:       deps.Idempotency,
		logger:     loggerOrNop(deps.Logger),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrder snapshots current product prices into new order items and stores the
// order with its computed total. Either the order and all its items are stored or nothing is.
func (s *OrderService) CreateOrder(ctx context.Context, userID int64, input CreateOrderInput) (*CreateOrderResult, error) {
	if err := validateOrderItems(input.Items); err != nil {
		return nil, err
	}

	key := strings.TrimSpace(input.IdempotencyKey)
	if key == "" || s.idem == nil {
		detail, err := s.placeOrder(ctx, userID, input.Items)
		if err != nil {
			return nil, err
		}
		return &CreateOrderResult{Order: detail}, nil
	}

	scope := "orders:" + strconv.FormatInt(userID, 10)
	if val, ok, err := s.idem.Recall(ctx, scope, key); err == nil && ok {
		if orderID, parseErr := strconv.ParseInt(val, 10, 64); parseErr == nil {
			detail, err := s.GetOrder(ctx, userID, orderID)
			if err != nil {
				return nil, err
			}
			return &CreateOrderResult{Order: detail, Replayed: true}, nil
		}
	}

	locked, err := s.idem.TryLock(ctx, scope, key)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !locked {
		return nil, apperrors.NewConflict("A request with this Idempotency-Key is already being processed.", map[string]any{"idempotency_key": key})
	}

	detail, err := s.placeOrder(ctx, userID, input.Items)
	if err != nil {
		if relErr := s.idem.Release(context.WithoutCancel(ctx), scope, key); relErr != nil {
			s.logger.Warn("release idempotency key failed",
				zap.String("scope", scope), zap.String("key", key), zap.Error(relErr))
		}
		return nil, err
	}
	if remErr := s.idem.Remember(context.WithoutCancel(ctx), scope, key, strconv.FormatInt(detail.ID, 10)); remErr != nil {
		// The lock stays held so a retry cannot place a second order; it answers 409
		// until the key expires.
		s.logger.Error("remember idempotency key failed",
			zap.String("scope", scope),
			zap.String("key", key),
			zap.Int64("order_id", detail.ID),
			zap.Error(remErr))
	}
	return &CreateOrderResult{Order: detail}, nil
}

func (s *OrderService) placeOrder(ctx context.Context, userID int64, items []OrderItemInput) (*domain.OrderDetail, error) {
	var detail *domain.OrderDetail
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return notFoundOr(err, "user", map[string]any{"user_id": userID})
		}

		lines := make([]domain.OrderItem, 0, len(items))
		total := decimal.Zero
		for _, req := range items {
			product, err := s.products.GetByIDForShare(ctx, req.ProductID)
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewNotFoundMessage(
					fmt.Sprintf("Product with ID %d does not exist.", req.ProductID),
					map[string]any{"product_id": req.ProductID},
				)
			}
			if err != nil {
				return storageError(err)
			}
			line := domain.OrderItem{ProductID: product.ID, Price: product.Price, Quantity: req.Quantity}
			total = total.Add(line.Subtotal())
			lines = append(lines, line)
		}
		if total.GreaterThanOrEqual(maxLedgerAmount) {
			return apperrors.NewValidationError("Order total exceeds the allowed maximum.", map[string]any{"field": "items"})
		}

		order := domain.Order{
			UserID:     userID,
			Status:     domain.OrderStatusPending,
			OrderDate:  s.now(),
			TotalPrice: total,
		}
		if err := s.orders.Create(ctx, &order); err != nil {
			return storageError(err)
		}
		for i := range lines {
			lines[i].OrderID = order.ID
			if err := s.orders.AddItem(ctx, &lines[i]); err != nil {
				return storageError(err)
			}
		}
		detail = &domain.OrderDetail{Order: order, UserEmail: user.Email, Items: lines}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventOrderCreated, userID, events.OrderCreatedPayload{
		OrderID:    detail.ID,
		TotalPrice: detail.TotalPrice,
		ItemCount:  len(detail.Items),
	}))
	return detail, nil
}

// ListOrders returns the caller's orders, newest first, with their items.
func (s *OrderService) ListOrders(ctx context.Context, userID int64) ([]domain.OrderDetail, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user", map[string]any{"user_id": userID})
	}
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, storageError(err)
	}
	result := make([]domain.OrderDetail, 0, len(orders))
	for _, order := range orders {
		items, err := s.orders.ListItems(ctx, order.ID)
		if err != nil {
			return nil, storageError(err)
		}
		result = append(result, domain.OrderDetail{Order: order, UserEmail: user.Email, Items: items})
	}
	return result, nil
}

// GetOrder returns one of the caller's orders. Orders of other users are reported as missing.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID int64) (*domain.OrderDetail, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "order", map[string]any{"order_id": orderID})
	}
	if order.UserID != userID {
		return nil, apperrors.NewNotFound("order", map[string]any{"order_id": orderID})
	}
	return s.loadDetail(ctx, order)
}

// UpdateOrderStatus advances an order one step along its lifecycle.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (*domain.OrderDetail, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("Invalid order status.", map[string]any{"field": "status"})
	}

	var (
		order *domain.Order
		old   domain.OrderStatus
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orders.GetByID(ctx, orderID)
		if err != nil {
			return notFoundOr(err, "order", map[string]any{"order_id": orderID})
		}
		old = order.Status
		if !old.CanTransitionTo(status) {
			return apperrors.NewValidationError(
				fmt.Sprintf("Cannot change status from %s to %s.", old, status),
				map[string]any{"field": "status", "current": old},
			)
		}
		if err := s.orders.TransitionStatus(ctx, orderID, old, status); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return apperrors.NewConflict("Order status was changed concurrently.", map[string]any{"order_id": orderID})
			}
			return notFoundOr(err, "order", map[string]any{"order_id": orderID})
		}
		order.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventOrderStatusChanged, order.UserID, events.OrderStatusChangedPayload{
		OrderID:   order.ID,
		OldStatus: old,
		NewStatus: status,
	}))
	return s.loadDetail(ctx, order)
}

func (s *OrderService) loadDetail(ctx context.Context, order *domain.Order) (*domain.OrderDetail, error) {
	items, err := s.orders.ListItems(ctx, order.ID)
	if err != nil {
		return nil, storageError(err)
	}
	detail := &domain.OrderDetail{Order: *order, Items: items}
	if user, err := s.users.GetByID(ctx, order.UserID); err == nil {
		detail.UserEmail = user.Email
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, storageError(err)
	}
	return detail, nil
}

func validateOrderItems(items []OrderItemInput) error {
	if len(items) == 0 {
		return apperrors.NewValidationError("An order needs at least one item.", map[string]any{"field": "items"})
	}
	for i, item := range items {
		if item.ProductID <= 0 {
			return apperrors.NewValidationError("A valid product_id is required.", map[string]any{"field": "product_id", "index": i})
		}
		if item.Quantity < 1 {
			return apperrors.NewValidationError("Ensure quantity is greater than or equal to 1.", map[string]any{"field": "quantity", "index": i})
		}
		if item.Quantity > math.MaxInt32 {
			return apperrors.NewValidationError("Quantity is too large.", map[string]any{"field": "quantity", "index": i})
		}
	}
	return nil
}
