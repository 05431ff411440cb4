package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/appsnxt/platform/internal/domain/shared"
)

// ActivityLogger is a wildcard subscriber that writes one structured
// log line per domain event.
type ActivityLogger struct {
	logger *zap.Logger
}

// NewActivityLogger creates a new activity logger.
func NewActivityLogger(logger *zap.Logger) *ActivityLogger {
	return &ActivityLogger{logger: logger}
}

// EventTypes returns nil so the bus registers the handler as a wildcard.
func (h *ActivityLogger) EventTypes() []string {
	return nil
}

// Handle logs the event.
func (h *ActivityLogger) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.logger.Info("domain event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
	)
	return nil
}

var _ shared.EventHandler = (*ActivityLogger)(nil)
