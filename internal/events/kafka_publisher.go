package events

import (
	"context"
	"encoding/json"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/spec-kit/shop-service/internal/config"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher forwards domain events to a Kafka topic, keyed by user id so the
// events of one user stay ordered within a partition.
type KafkaPublisher struct {
	writer MessageWriter
	logger *zap.Logger
	closed atomic.Bool
}

// NewKafkaWriter builds a synchronous writer for the configured brokers and topic.
func NewKafkaWriter(cfg config.KafkaConfig, logger *zap.Logger) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
		Transport: &kafka.Transport{
			Dial: (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		},
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Sugar().Errorf("kafka writer: "+msg, args...)
		}),
	}
}

// NewKafkaPublisher wraps a writer.
func NewKafkaPublisher(writer MessageWriter, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, logger: logger}
}

// Register subscribes the publisher to every domain event type.
func (p *KafkaPublisher) Register(dispatcher Dispatcher) {
	for _, eventType := range AllEventTypes {
		dispatcher.Subscribe(eventType, p.Handle)
	}
}

// Handle encodes and writes a single event.
func (p *KafkaPublisher) Handle(ctx context.Context, event Event) error {
	if p.closed.Load() {
		return nil
	}
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.UserID, 10)),
		Value: value,
		Time:  event.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Warn("publish event failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		return err
	}
	return nil
}

// Close flushes and closes the writer once.
func (p *KafkaPublisher) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.writer.Close()
}
