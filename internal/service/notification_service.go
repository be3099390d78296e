package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/enterprise-onboarding/internal/events"
)

// NotificationService logs lifecycle events for operational visibility.
// Applicant-facing mail is sent directly by the owning workflows; this
// subscriber only observes.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventRequestSubmitted, n.logEvent("RequestSubmitted"))
	n.dispatcher.Subscribe(events.EventRequestStatusChanged, n.logEvent("RequestStatusChanged"))
	n.dispatcher.Subscribe(events.EventAccessCodeIssued, n.logEvent("AccessCodeIssued"))
	n.dispatcher.Subscribe(events.EventAccessCodeRedeemed, n.logEvent("AccessCodeRedeemed"))
	n.dispatcher.Subscribe(events.EventProvisioningCompleted, n.logEvent("ProvisioningCompleted"))
}

func (n *NotificationService) logEvent(name string) events.EventHandler {
	return func(_ context.Context, event events.Event) error {
		n.logger.Info(name,
			zap.String("request_id", event.RequestID),
			zap.Any("payload", event.Payload))
		return nil
	}
}
