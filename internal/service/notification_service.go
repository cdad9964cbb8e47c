package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/shop-service/internal/events"
	"github.com/spec-kit/shop-service/internal/observability"
)

// NotificationService reacts to committed domain events: it logs them and counts them.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventOrderCreated, n.handleOrderCreated)
	n.dispatcher.Subscribe(events.EventOrderStatusChanged, n.handleOrderStatusChanged)
	n.dispatcher.Subscribe(events.EventBalanceChanged, n.handleBalanceChanged)
}

func (n *NotificationService) handleOrderCreated(ctx context.Context, event events.Event) error {
	n.metrics.RecordDomainEvent(string(event.Type))
	fields := []zap.Field{zap.String("event_id", event.ID), zap.Int64("user_id", event.UserID)}
	if payload, ok := event.Payload.(events.OrderCreatedPayload); ok {
		fields = append(fields,
			zap.Int64("order_id", payload.OrderID),
			zap.String("total_price", payload.TotalPrice.StringFixed(2)),
			zap.Int("items", payload.ItemCount))
	}
	n.logger.Info("OrderCreated", fields...)
	return nil
}

func (n *NotificationService) handleOrderStatusChanged(ctx context.Context, event events.Event) error {
	n.metrics.RecordDomainEvent(string(event.Type))
	n.logger.Info("OrderStatusChanged",
		zap.String("event_id", event.ID),
		zap.Int64("user_id", event.UserID),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleBalanceChanged(ctx context.Context, event events.Event) error {
	n.metrics.RecordDomainEvent(string(event.Type))
	fields := []zap.Field{zap.String("event_id", event.ID), zap.Int64("user_id", event.UserID)}
	if payload, ok := event.Payload.(events.BalanceChangedPayload); ok {
		fields = append(fields,
			zap.Int64("account_id", payload.AccountID),
			zap.String("kind", string(payload.Kind)),
			zap.String("amount", payload.Amount.StringFixed(2)),
			zap.String("new_balance", payload.NewBalance.StringFixed(2)))
		if payload.NewBalance.IsZero() {
			n.logger.Debug("account drained", zap.Int64("account_id", payload.AccountID))
		}
	}
	n.logger.Info("BalanceChanged", fields...)
	return nil
}
