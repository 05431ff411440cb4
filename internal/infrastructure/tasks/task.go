package tasks

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Task types dispatched to the worker queue.
const (
	TaskUserSignedUp            = "user.signed_up"
	TaskSubscriptionCreated     = "subscription.created"
	TaskSubscriptionPlanChanged = "subscription.plan_changed"
	TaskSubscriptionCanceled    = "subscription.canceled"
)

// Envelope is the JSON message pushed onto the broker queue. Workers
// consume envelopes and look up the referenced aggregate themselves.
type Envelope struct {
	ID         uuid.UUID       `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// NewEnvelope wraps a task payload for dispatch.
func NewEnvelope(taskType string, payload []byte) Envelope {
	return Envelope{
		ID:         uuid.New(),
		Type:       taskType,
		Payload:    payload,
		EnqueuedAt: time.Now().UTC(),
	}
}
