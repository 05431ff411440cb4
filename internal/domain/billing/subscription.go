package billing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/appsnxt/platform/internal/domain/catalog"
	"github.com/appsnxt/platform/internal/domain/shared"
)

// SubscriptionStatus represents the lifecycle state of a subscription
type SubscriptionStatus string

const (
	SubscriptionStatusActive     SubscriptionStatus = "active"
	SubscriptionStatusTrialing   SubscriptionStatus = "trialing"
	SubscriptionStatusPastDue    SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled   SubscriptionStatus = "canceled"
	SubscriptionStatusIncomplete SubscriptionStatus = "incomplete"
	SubscriptionStatusUnpaid     SubscriptionStatus = "unpaid"
	SubscriptionStatusExpired    SubscriptionStatus = "expired"
)

// IsValid returns true for a known status
func (s SubscriptionStatus) IsValid() bool {
	switch s {
	case SubscriptionStatusActive, SubscriptionStatusTrialing, SubscriptionStatusPastDue,
		SubscriptionStatusCanceled, SubscriptionStatusIncomplete, SubscriptionStatusUnpaid,
		SubscriptionStatusExpired:
		return true
	}
	return false
}

// BillingCycle represents how often a subscription renews
type BillingCycle string

const (
	BillingCycleMonthly   BillingCycle = "monthly"
	BillingCycleQuarterly BillingCycle = "quarterly"
	BillingCycleYearly    BillingCycle = "yearly"
)

// ParseBillingCycle parses a billing cycle name, case-insensitively
func ParseBillingCycle(s string) (BillingCycle, error) {
	switch BillingCycle(strings.ToLower(strings.TrimSpace(s))) {
	case BillingCycleMonthly:
		return BillingCycleMonthly, nil
	case BillingCycleQuarterly:
		return BillingCycleQuarterly, nil
	case BillingCycleYearly:
		return BillingCycleYearly, nil
	default:
		return "", shared.NewDomainError("INVALID_BILLING_CYCLE", "Billing cycle must be one of: monthly, quarterly, yearly")
	}
}

// PeriodDays returns the length of one billing period
func (c BillingCycle) PeriodDays() int {
	switch c {
	case BillingCycleQuarterly:
		return 90
	case BillingCycleYearly:
		return 365
	default:
		return 30
	}
}

// MonthsPerPeriod returns how many months one period spans, for
// normalizing recurring revenue
func (c BillingCycle) MonthsPerPeriod() int {
	switch c {
	case BillingCycleQuarterly:
		return 3
	case BillingCycleYearly:
		return 12
	default:
		return 1
	}
}

// PaymentProvider identifies the external processor a subscription bills through
type PaymentProvider string

const (
	PaymentProviderPhonePe PaymentProvider = "phonepe"
	PaymentProviderPayPal  PaymentProvider = "paypal"
	PaymentProviderStripe  PaymentProvider = "stripe"
	PaymentProviderManual  PaymentProvider = "manual"
)

// IsValid returns true for a known provider
func (p PaymentProvider) IsValid() bool {
	switch p {
	case PaymentProviderPhonePe, PaymentProviderPayPal, PaymentProviderStripe, PaymentProviderManual:
		return true
	}
	return false
}

// DefaultCurrency is applied when a subscription does not specify one
const DefaultCurrency = "INR"

// ReactivationWindow is how long after cancellation a subscription can be revived
const ReactivationWindow = 30 * 24 * time.Hour

// Subscription represents one user's paid access to a product plan.
// It is the aggregate root for billing operations.
type Subscription struct {
	shared.BaseAggregateRoot
	UserID                 uuid.UUID          `gorm:"type:uuid;not null;index"`
	ProductID              uuid.UUID          `gorm:"type:uuid;not null;index"`
	Plan                   catalog.Plan       `gorm:"type:varchar(20);not null"`
	Status                 SubscriptionStatus `gorm:"type:varchar(20);not null;index"`
	Amount                 decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	Currency               string             `gorm:"type:varchar(3);not null;default:'INR'"`
	BillingCycle           BillingCycle       `gorm:"type:varchar(20);not null"`
	StartDate              time.Time          `gorm:"not null"`
	EndDate                time.Time          `gorm:"not null;index"`
	TrialEndDate           *time.Time
	CanceledAt             *time.Time
	PaymentProvider        PaymentProvider `gorm:"type:varchar(20);not null;default:'manual'"`
	ProviderSubscriptionID string          `gorm:"type:varchar(200);index"`
	ProviderCustomerID     string          `gorm:"type:varchar(200)"`
	MaxUsers               int             `gorm:"not null;default:1"`
	MaxProjects            int             `gorm:"not null;default:1"`
	AutoRenew              bool            `gorm:"not null;default:true"`
	CancelAtPeriodEnd      bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Subscription) TableName() string {
	return "subscriptions"
}

// NewSubscription creates a subscription starting now. The first billing
// period runs one cycle from the start date; a positive trialDays opens
// the subscription in the trialing state instead.
func NewSubscription(userID, productID uuid.UUID, plan catalog.Plan, amount decimal.Decimal, currency string, cycle BillingCycle, provider PaymentProvider, trialDays int) (*Subscription, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID is required")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID is required")
	}
	if !plan.IsValid() {
		return nil, shared.NewDomainError("INVALID_PLAN", "Plan must be one of: starter, professional, enterprise")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount cannot be negative")
	}
	if _, err := ParseBillingCycle(string(cycle)); err != nil {
		return nil, err
	}
	if provider == "" {
		provider = PaymentProviderManual
	}
	if !provider.IsValid() {
		return nil, shared.NewDomainError("INVALID_PROVIDER", "Unknown payment provider")
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	if len(currency) != 3 {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter code")
	}

	now := time.Now()
	sub := &Subscription{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		ProductID:         productID,
		Plan:              plan,
		Status:            SubscriptionStatusActive,
		Amount:            amount,
		Currency:          strings.ToUpper(currency),
		BillingCycle:      cycle,
		StartDate:         now,
		EndDate:           now.AddDate(0, 0, cycle.PeriodDays()),
		PaymentProvider:   provider,
		MaxUsers:          1,
		MaxProjects:       1,
		AutoRenew:         true,
	}

	if trialDays > 0 {
		trialEnd := now.AddDate(0, 0, trialDays)
		sub.TrialEndDate = &trialEnd
		sub.Status = SubscriptionStatusTrialing
	}

	sub.AddDomainEvent(NewSubscriptionCreatedEvent(sub))

	return sub, nil
}

// IsCurrent reports whether the subscription grants access right now
func (s *Subscription) IsCurrent() bool {
	if s.Status != SubscriptionStatusActive && s.Status != SubscriptionStatusTrialing {
		return false
	}
	return s.EndDate.After(time.Now())
}

// IsInTrial reports whether the trial window is still open
func (s *Subscription) IsInTrial() bool {
	return s.TrialEndDate != nil && s.TrialEndDate.After(time.Now())
}

// DaysRemaining returns whole days until the period ends, never negative
func (s *Subscription) DaysRemaining() int {
	remaining := int(time.Until(s.EndDate).Hours() / 24)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// SetLimits sets the seat and project ceilings
func (s *Subscription) SetLimits(maxUsers, maxProjects int) error {
	if maxUsers < 1 || maxProjects < 1 {
		return shared.NewDomainError("INVALID_LIMITS", "Limits must be at least 1")
	}

	s.MaxUsers = maxUsers
	s.MaxProjects = maxProjects
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// SetProviderRefs stores the external processor identifiers
func (s *Subscription) SetProviderRefs(subscriptionID, customerID string) {
	s.ProviderSubscriptionID = subscriptionID
	s.ProviderCustomerID = customerID
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// SetAutoRenew toggles automatic renewal
func (s *Subscription) SetAutoRenew(autoRenew bool) {
	s.AutoRenew = autoRenew
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// ChangePlan moves the subscription to a different tier. The caller
// supplies the new amount, typically the product's price for that tier.
func (s *Subscription) ChangePlan(plan catalog.Plan, amount decimal.Decimal) error {
	if !plan.IsValid() {
		return shared.NewDomainError("INVALID_PLAN", "Plan must be one of: starter, professional, enterprise")
	}
	if plan == s.Plan {
		return shared.NewDomainError("SAME_PLAN", "Subscription is already on this plan")
	}
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount cannot be negative")
	}
	if s.Status == SubscriptionStatusCanceled || s.Status == SubscriptionStatusExpired {
		return shared.NewDomainError("INVALID_STATE", "Cannot change plan of a canceled or expired subscription")
	}

	oldPlan := s.Plan
	s.Plan = plan
	s.Amount = amount
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewSubscriptionPlanChangedEvent(s, oldPlan))

	return nil
}

// Cancel ends the subscription. With endImmediately the status flips to
// canceled right away; otherwise access runs to the period end and the
// subscription simply does not renew.
func (s *Subscription) Cancel(endImmediately bool) error {
	if s.Status == SubscriptionStatusCanceled {
		return shared.NewDomainError("ALREADY_CANCELED", "Subscription is already canceled")
	}
	if s.Status == SubscriptionStatusExpired {
		return shared.NewDomainError("INVALID_STATE", "Cannot cancel an expired subscription")
	}

	now := time.Now()
	s.CanceledAt = &now
	s.AutoRenew = false

	if endImmediately {
		s.Status = SubscriptionStatusCanceled
		s.EndDate = now
	} else {
		s.CancelAtPeriodEnd = true
	}

	s.UpdatedAt = now
	s.IncrementVersion()

	s.AddDomainEvent(NewSubscriptionCanceledEvent(s, endImmediately))

	return nil
}

// Reactivate revives a canceled subscription within the reactivation
// window, opening a fresh billing period from now.
func (s *Subscription) Reactivate() error {
	if s.CanceledAt == nil {
		return shared.NewDomainError("NOT_CANCELED", "Subscription has not been canceled")
	}
	if time.Since(*s.CanceledAt) > ReactivationWindow {
		return shared.NewDomainError("REACTIVATION_EXPIRED", "Subscription can no longer be reactivated")
	}

	now := time.Now()
	s.Status = SubscriptionStatusActive
	s.StartDate = now
	s.EndDate = now.AddDate(0, 0, s.BillingCycle.PeriodDays())
	s.CanceledAt = nil
	s.CancelAtPeriodEnd = false
	s.AutoRenew = true
	s.UpdatedAt = now
	s.IncrementVersion()

	s.AddDomainEvent(NewSubscriptionReactivatedEvent(s))

	return nil
}

// Renew extends the subscription by one billing period
func (s *Subscription) Renew() error {
	if !s.AutoRenew || s.CancelAtPeriodEnd {
		return shared.NewDomainError("RENEWAL_DISABLED", "Subscription does not renew")
	}
	if s.Status != SubscriptionStatusActive && s.Status != SubscriptionStatusTrialing {
		return shared.NewDomainError("INVALID_STATE", "Only active subscriptions renew")
	}

	s.Status = SubscriptionStatusActive
	s.EndDate = s.EndDate.AddDate(0, 0, s.BillingCycle.PeriodDays())
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewSubscriptionRenewedEvent(s))

	return nil
}

// MarkExpired transitions a lapsed subscription to the expired state
func (s *Subscription) MarkExpired() error {
	if s.Status == SubscriptionStatusExpired {
		return shared.NewDomainError("ALREADY_EXPIRED", "Subscription is already expired")
	}
	if s.EndDate.After(time.Now()) {
		return shared.NewDomainError("INVALID_STATE", "Subscription period has not ended")
	}

	s.Status = SubscriptionStatusExpired
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// MonthlyAmount normalizes the period amount to a per-month figure
func (s *Subscription) MonthlyAmount() decimal.Decimal {
	months := s.BillingCycle.MonthsPerPeriod()
	return s.Amount.Div(decimal.NewFromInt(int64(months)))
}
