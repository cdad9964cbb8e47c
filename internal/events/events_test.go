package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/shop-service/internal/domain"
)

func TestDispatcherRunsAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	d.Subscribe(EventOrderCreated, func(ctx context.Context, e Event) error {
		calls = append(calls, "first")
		return errors.New("first failed")
	})
	d.Subscribe(EventOrderCreated, func(ctx context.Context, e Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventBalanceChanged, func(ctx context.Context, e Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventOrderCreated, 1, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first failed")
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestDispatcherRecoversHandlerPanics(t *testing.T) {
	d := NewInMemoryDispatcher()
	reached := false
	d.Subscribe(EventBalanceChanged, func(ctx context.Context, e Event) error {
		panic("subscriber bug")
	})
	d.Subscribe(EventBalanceChanged, func(ctx context.Context, e Event) error {
		reached = true
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventBalanceChanged, 1, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subscriber bug")
	assert.True(t, reached)
}

func TestDispatcherWithoutListeners(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), NewEvent(EventOrderStatusChanged, 1, nil)))
}

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closes   int
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closes++
	return nil
}

func TestKafkaPublisherWritesEvents(t *testing.T) {
	writer := &fakeWriter{}
	publisher := NewKafkaPublisher(writer, zap.NewNop())
	d := NewInMemoryDispatcher()
	publisher.Register(d)

	event := NewEvent(EventBalanceChanged, 7, BalanceChangedPayload{
		AccountID:  3,
		Kind:       domain.LedgerEntryDeposit,
		Amount:     decimal.RequireFromString("5.00"),
		NewBalance: decimal.RequireFromString("15.00"),
	})
	require.NoError(t, d.Publish(context.Background(), event))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, "7", string(msg.Key))
	assert.Contains(t, msg.Headers, kafka.Header{Key: "event_type", Value: []byte("balance_changed")})

	var decoded struct {
		ID      string `json:"id"`
		Type    string `json:"type"`
		Payload struct {
			NewBalance string `json:"new_balance"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.ID, decoded.ID)
	assert.Equal(t, "balance_changed", decoded.Type)
	assert.Equal(t, "15", decoded.Payload.NewBalance)
}

func TestKafkaPublisherSurfacesWriteErrors(t *testing.T) {
	writer := &fakeWriter{err: errors.New("broker down")}
	publisher := NewKafkaPublisher(writer, zap.NewNop())

	err := publisher.Handle(context.Background(), NewEvent(EventOrderCreated, 1, nil))
	assert.EqualError(t, err, "broker down")
}

func TestKafkaPublisherCloseOnce(t *testing.T) {
	writer := &fakeWriter{}
	publisher := NewKafkaPublisher(writer, zap.NewNop())

	require.NoError(t, publisher.Close())
	require.NoError(t, publisher.Close())
	assert.Equal(t, 1, writer.closes)

	require.NoError(t, publisher.Handle(context.Background(), NewEvent(EventOrderCreated, 1, nil)))
	assert.Empty(t, writer.messages)
}
