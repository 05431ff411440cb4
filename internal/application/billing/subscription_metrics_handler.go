package billing

import (
	"context"

	"go.uber.org/zap"

	"github.com/appsnxt/platform/internal/domain/billing"
	"github.com/appsnxt/platform/internal/domain/shared"
)

// SubscriptionMetricsRecorder counts subscription lifecycle events
type SubscriptionMetricsRecorder interface {
	RecordSubscriptionEvent(ctx context.Context, eventType string)
}

// SubscriptionMetricsHandler feeds subscription lifecycle metrics from
// the domain events the aggregate emits
type SubscriptionMetricsHandler struct {
	metrics SubscriptionMetricsRecorder
	logger  *zap.Logger
}

// NewSubscriptionMetricsHandler creates a new handler for subscription lifecycle events
func NewSubscriptionMetricsHandler(metrics SubscriptionMetricsRecorder, logger *zap.Logger) *SubscriptionMetricsHandler {
	return &SubscriptionMetricsHandler{
		metrics: metrics,
		logger:  logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *SubscriptionMetricsHandler) EventTypes() []string {
	return []string{
		billing.EventTypeSubscriptionCreated,
		billing.EventTypeSubscriptionPlanChanged,
		billing.EventTypeSubscriptionCanceled,
		billing.EventTypeSubscriptionReactivated,
		billing.EventTypeSubscriptionRenewed,
	}
}

// Handle records one lifecycle counter increment per event
func (h *SubscriptionMetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var label billing.SubscriptionEventType
	switch event.EventType() {
	case billing.EventTypeSubscriptionCreated:
		label = billing.SubscriptionEventCreated
	case billing.EventTypeSubscriptionPlanChanged:
		label = billing.SubscriptionEventPlanChanged
	case billing.EventTypeSubscriptionCanceled:
		label = billing.SubscriptionEventCanceled
	case billing.EventTypeSubscriptionReactivated:
		label = billing.SubscriptionEventReactivated
	case billing.EventTypeSubscriptionRenewed:
		label = billing.SubscriptionEventRenewed
	default:
		h.logger.Warn("unexpected event type for subscription metrics",
			zap.String("event_type", event.EventType()))
		return nil
	}

	h.metrics.RecordSubscriptionEvent(ctx, string(label))
	return nil
}
