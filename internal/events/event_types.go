package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/shop-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventOrderCreated       EventType = "order_created"
	EventOrderStatusChanged EventType = "order_status_changed"
	EventBalanceChanged     EventType = "balance_changed"
)

// AllEventTypes lists every type services publish.
var AllEventTypes = []EventType{EventOrderCreated, EventOrderStatusChanged, EventBalanceChanged}

// Event represents a domain event emitted by services after commit.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    int64       `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, userID int64, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// OrderCreatedPayload payload.
type OrderCreatedPayload struct {
	OrderID    int64           `json:"order_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	ItemCount  int             `json:"item_count"`
}

// OrderStatusChangedPayload payload.
type OrderStatusChangedPayload struct {
	OrderID   int64              `json:"order_id"`
	OldStatus domain.OrderStatus `json:"old_status"`
	NewStatus domain.OrderStatus `json:"new_status"`
}

// BalanceChangedPayload payload.
type BalanceChangedPayload struct {
	AccountID  int64                  `json:"account_id"`
	Kind       domain.LedgerEntryKind `json:"kind"`
	Amount     decimal.Decimal        `json:"amount"`
	NewBalance decimal.Decimal        `json:"new_balance"`
}
