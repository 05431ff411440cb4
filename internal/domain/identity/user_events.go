package identity

import (
	"github.com/google/uuid"

	"github.com/appsnxt/platform/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeUser = "User"

// Event type constants
const (
	EventTypeUserSignedUp = "UserSignedUp"
)

// UserSignedUpEvent is published when a local user projection is created
type UserSignedUpEvent struct {
	shared.BaseDomainEvent
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name,omitempty"`
}

// NewUserSignedUpEvent creates a new UserSignedUpEvent
func NewUserSignedUpEvent(user *User) *UserSignedUpEvent {
	return &UserSignedUpEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserSignedUp, AggregateTypeUser, user.ID),
		UserID:          user.ID,
		Email:           user.Email,
		FullName:        user.FullName,
	}
}
