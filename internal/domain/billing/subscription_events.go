package billing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/appsnxt/platform/internal/domain/catalog"
	"github.com/appsnxt/platform/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeSubscription = "Subscription"

// Event type constants
const (
	EventTypeSubscriptionCreated     = "SubscriptionCreated"
	EventTypeSubscriptionPlanChanged = "SubscriptionPlanChanged"
	EventTypeSubscriptionCanceled    = "SubscriptionCanceled"
	EventTypeSubscriptionReactivated = "SubscriptionReactivated"
	EventTypeSubscriptionRenewed     = "SubscriptionRenewed"
)

// SubscriptionCreatedEvent is published when a subscription is created
type SubscriptionCreatedEvent struct {
	shared.BaseDomainEvent
	SubscriptionID uuid.UUID       `json:"subscription_id"`
	UserID         uuid.UUID       `json:"user_id"`
	ProductID      uuid.UUID       `json:"product_id"`
	Plan           catalog.Plan    `json:"plan"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	BillingCycle   BillingCycle    `json:"billing_cycle"`
	Trialing       bool            `json:"trialing"`
}

// NewSubscriptionCreatedEvent creates a new SubscriptionCreatedEvent
func NewSubscriptionCreatedEvent(sub *Subscription) *SubscriptionCreatedEvent {
	return &SubscriptionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSubscriptionCreated, AggregateTypeSubscription, sub.ID),
		SubscriptionID:  sub.ID,
		UserID:          sub.UserID,
		ProductID:       sub.ProductID,
		Plan:            sub.Plan,
		Amount:          sub.Amount,
		Currency:        sub.Currency,
		BillingCycle:    sub.BillingCycle,
		Trialing:        sub.Status == SubscriptionStatusTrialing,
	}
}

// SubscriptionPlanChangedEvent is published when a subscription moves tiers
type SubscriptionPlanChangedEvent struct {
	shared.BaseDomainEvent
	SubscriptionID uuid.UUID       `json:"subscription_id"`
	UserID         uuid.UUID       `json:"user_id"`
	OldPlan        catalog.Plan    `json:"old_plan"`
	NewPlan        catalog.Plan    `json:"new_plan"`
	Amount         decimal.Decimal `json:"amount"`
}

// NewSubscriptionPlanChangedEvent creates a new SubscriptionPlanChangedEvent
func NewSubscriptionPlanChangedEvent(sub *Subscription, oldPlan catalog.Plan) *SubscriptionPlanChangedEvent {
	return &SubscriptionPlanChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSubscriptionPlanChanged, AggregateTypeSubscription, sub.ID),
		SubscriptionID:  sub.ID,
		UserID:          sub.UserID,
		OldPlan:         oldPlan,
		NewPlan:         sub.Plan,
		Amount:          sub.Amount,
	}
}

// SubscriptionCanceledEvent is published when a subscription is canceled
type SubscriptionCanceledEvent struct {
	shared.BaseDomainEvent
	SubscriptionID  uuid.UUID `json:"subscription_id"`
	UserID          uuid.UUID `json:"user_id"`
	EndedImmediately bool     `json:"ended_immediately"`
}

// NewSubscriptionCanceledEvent creates a new SubscriptionCanceledEvent
func NewSubscriptionCanceledEvent(sub *Subscription, endedImmediately bool) *SubscriptionCanceledEvent {
	return &SubscriptionCanceledEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeSubscriptionCanceled, AggregateTypeSubscription, sub.ID),
		SubscriptionID:   sub.ID,
		UserID:           sub.UserID,
		EndedImmediately: endedImmediately,
	}
}

// SubscriptionReactivatedEvent is published when a canceled subscription revives
type SubscriptionReactivatedEvent struct {
	shared.BaseDomainEvent
	SubscriptionID uuid.UUID    `json:"subscription_id"`
	UserID         uuid.UUID    `json:"user_id"`
	Plan           catalog.Plan `json:"plan"`
}

// NewSubscriptionReactivatedEvent creates a new SubscriptionReactivatedEvent
func NewSubscriptionReactivatedEvent(sub *Subscription) *SubscriptionReactivatedEvent {
	return &SubscriptionReactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSubscriptionReactivated, AggregateTypeSubscription, sub.ID),
		SubscriptionID:  sub.ID,
		UserID:          sub.UserID,
		Plan:            sub.Plan,
	}
}

// SubscriptionRenewedEvent is published when a billing period extends
type SubscriptionRenewedEvent struct {
	shared.BaseDomainEvent
	SubscriptionID uuid.UUID `json:"subscription_id"`
	UserID         uuid.UUID `json:"user_id"`
}

// NewSubscriptionRenewedEvent creates a new SubscriptionRenewedEvent
func NewSubscriptionRenewedEvent(sub *Subscription) *SubscriptionRenewedEvent {
	return &SubscriptionRenewedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSubscriptionRenewed, AggregateTypeSubscription, sub.ID),
		SubscriptionID:  sub.ID,
		UserID:          sub.UserID,
	}
}
