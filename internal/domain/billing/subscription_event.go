package billing

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/appsnxt/platform/internal/domain/shared"
)

// SubscriptionEventType classifies audit trail entries
type SubscriptionEventType string

const (
	SubscriptionEventCreated       SubscriptionEventType = "created"
	SubscriptionEventUpdated       SubscriptionEventType = "updated"
	SubscriptionEventPlanChanged   SubscriptionEventType = "plan_changed"
	SubscriptionEventCanceled      SubscriptionEventType = "canceled"
	SubscriptionEventReactivated   SubscriptionEventType = "reactivated"
	SubscriptionEventRenewed       SubscriptionEventType = "renewed"
	SubscriptionEventTrialEnded    SubscriptionEventType = "trial_ended"
	SubscriptionEventPaymentFailed SubscriptionEventType = "payment_failed"
)

// SubscriptionEvent is one append-only audit trail entry for a subscription
type SubscriptionEvent struct {
	shared.BaseEntity
	SubscriptionID uuid.UUID             `gorm:"type:uuid;not null;index"`
	EventType      SubscriptionEventType `gorm:"type:varchar(50);not null"`
	Description    string                `gorm:"type:text"`
	Metadata       string                `gorm:"type:jsonb;default:'{}'"`
}

// TableName returns the table name for GORM
func (SubscriptionEvent) TableName() string {
	return "subscription_events"
}

// NewSubscriptionEvent creates an audit entry. Metadata must marshal to
// JSON; a nil map stores an empty object.
func NewSubscriptionEvent(subscriptionID uuid.UUID, eventType SubscriptionEventType, description string, metadata map[string]interface{}) (*SubscriptionEvent, error) {
	if subscriptionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUBSCRIPTION", "Subscription ID is required")
	}

	meta := "{}"
	if len(metadata) > 0 {
		data, err := json.Marshal(metadata)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_METADATA", "Event metadata must be JSON-serializable")
		}
		meta = string(data)
	}

	return &SubscriptionEvent{
		BaseEntity:     shared.NewBaseEntity(),
		SubscriptionID: subscriptionID,
		EventType:      eventType,
		Description:    description,
		Metadata:       meta,
	}, nil
}
