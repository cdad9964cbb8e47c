package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/shop-service/internal/events"
	"github.com/spec-kit/shop-service/internal/service"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// StartEventPublisher forwards every domain event to Kafka. A nil publisher leaves
// events in-process only.
func StartEventPublisher(dispatcher events.Dispatcher, publisher *events.KafkaPublisher, logger *zap.Logger) {
	if dispatcher == nil || publisher == nil {
		return
	}
	publisher.Register(dispatcher)
	logger.Info("kafka event publisher registered")
}
