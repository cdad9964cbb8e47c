package worker

import (
	"context"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/shop-service/internal/events"
	"github.com/spec-kit/shop-service/internal/observability"
	"github.com/spec-kit/shop-service/internal/service"
)

type recordingWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestWorkersReceiveEvents(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)
	dispatcher := events.NewInMemoryDispatcher()
	writer := &recordingWriter{}

	StartNotificationWorker(service.NewNotificationService(dispatcher, logger, observability.NewMetrics()))
	StartEventPublisher(dispatcher, events.NewKafkaPublisher(writer, logger), logger)

	event := events.NewEvent(events.EventOrderCreated, 7, events.OrderCreatedPayload{OrderID: 1})
	require.NoError(t, dispatcher.Publish(context.Background(), event))

	require.Len(t, writer.msgs, 1)
	assert.Equal(t, "7", string(writer.msgs[0].Key))
	assert.NotZero(t, logs.FilterField(zap.String("event_id", event.ID)).Len())
}

func TestWorkersTolerateNil(t *testing.T) {
	assert.NotPanics(t, func() {
		StartNotificationWorker(nil)
		StartEventPublisher(events.NewInMemoryDispatcher(), nil, zap.NewNop())
	})
}
