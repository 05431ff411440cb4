package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/appsnxt/platform/internal/domain/billing"
)

// CreateSubscriptionRequest creates a subscription for a user. Amount is
// defaulted from the product's tier price when omitted.
type CreateSubscriptionRequest struct {
	UserID          uuid.UUID        `json:"user_id"`
	ProductID       uuid.UUID        `json:"product_id" binding:"required"`
	Plan            string           `json:"plan" binding:"required"`
	Amount          *decimal.Decimal `json:"amount"`
	Currency        string           `json:"currency" binding:"omitempty,len=3"`
	BillingCycle    string           `json:"billing_cycle" binding:"required"`
	PaymentProvider string           `json:"payment_provider"`
	TrialDays       int              `json:"trial_days" binding:"omitempty,min=0,max=90"`
	MaxUsers        int              `json:"max_users" binding:"omitempty,min=1"`
	MaxProjects     int              `json:"max_projects" binding:"omitempty,min=1"`
}

// UpdateSubscriptionRequest carries a partial subscription update. Nil
// fields are left unchanged.
type UpdateSubscriptionRequest struct {
	MaxUsers               *int    `json:"max_users" binding:"omitempty,min=1"`
	MaxProjects            *int    `json:"max_projects" binding:"omitempty,min=1"`
	AutoRenew              *bool   `json:"auto_renew"`
	ProviderSubscriptionID *string `json:"provider_subscription_id"`
	ProviderCustomerID     *string `json:"provider_customer_id"`
}

// ChangePlanRequest moves a subscription to a different tier
type ChangePlanRequest struct {
	Plan string `json:"plan" binding:"required"`
}

// CancelRequest cancels a subscription
type CancelRequest struct {
	EndImmediately bool   `json:"end_immediately"`
	Reason         string `json:"reason" binding:"omitempty,max=500"`
}

// SubscriptionListFilter carries list query parameters
type SubscriptionListFilter struct {
	Page            int
	PageSize        int
	OrderBy         string
	OrderDir        string
	UserID          *uuid.UUID
	ProductID       *uuid.UUID
	Status          string
	Plan            string
	PaymentProvider string
}

// SubscriptionResponse is the full subscription representation
type SubscriptionResponse struct {
	ID                     uuid.UUID       `json:"id"`
	UserID                 uuid.UUID       `json:"user_id"`
	ProductID              uuid.UUID       `json:"product_id"`
	Plan                   string          `json:"plan"`
	Status                 string          `json:"status"`
	Amount                 decimal.Decimal `json:"amount"`
	Currency               string          `json:"currency"`
	BillingCycle           string          `json:"billing_cycle"`
	StartDate              time.Time       `json:"start_date"`
	EndDate                time.Time       `json:"end_date"`
	TrialEndDate           *time.Time      `json:"trial_end_date,omitempty"`
	CanceledAt             *time.Time      `json:"canceled_at,omitempty"`
	PaymentProvider        string          `json:"payment_provider"`
	ProviderSubscriptionID string          `json:"provider_subscription_id,omitempty"`
	MaxUsers               int             `json:"max_users"`
	MaxProjects            int             `json:"max_projects"`
	AutoRenew              bool            `json:"auto_renew"`
	CancelAtPeriodEnd      bool            `json:"cancel_at_period_end"`
	DaysRemaining          int             `json:"days_remaining"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

// ToSubscriptionResponse maps a subscription aggregate to its response shape
func ToSubscriptionResponse(s *billing.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:                     s.ID,
		UserID:                 s.UserID,
		ProductID:              s.ProductID,
		Plan:                   s.Plan.String(),
		Status:                 string(s.Status),
		Amount:                 s.Amount,
		Currency:               s.Currency,
		BillingCycle:           string(s.BillingCycle),
		StartDate:              s.StartDate,
		EndDate:                s.EndDate,
		TrialEndDate:           s.TrialEndDate,
		CanceledAt:             s.CanceledAt,
		PaymentProvider:        string(s.PaymentProvider),
		ProviderSubscriptionID: s.ProviderSubscriptionID,
		MaxUsers:               s.MaxUsers,
		MaxProjects:            s.MaxProjects,
		AutoRenew:              s.AutoRenew,
		CancelAtPeriodEnd:      s.CancelAtPeriodEnd,
		DaysRemaining:          s.DaysRemaining(),
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
	}
}

// ToSubscriptionResponses maps a slice of subscriptions
func ToSubscriptionResponses(subs []billing.Subscription) []SubscriptionResponse {
	out := make([]SubscriptionResponse, len(subs))
	for i := range subs {
		out[i] = ToSubscriptionResponse(&subs[i])
	}
	return out
}

// SubscriptionEventResponse is one audit trail entry
type SubscriptionEventResponse struct {
	ID             uuid.UUID `json:"id"`
	SubscriptionID uuid.UUID `json:"subscription_id"`
	EventType      string    `json:"event_type"`
	Description    string    `json:"description"`
	Metadata       string    `json:"metadata"`
	CreatedAt      time.Time `json:"created_at"`
}

// ToSubscriptionEventResponses maps audit trail entries
func ToSubscriptionEventResponses(events []billing.SubscriptionEvent) []SubscriptionEventResponse {
	out := make([]SubscriptionEventResponse, len(events))
	for i, e := range events {
		out[i] = SubscriptionEventResponse{
			ID:             e.ID,
			SubscriptionID: e.SubscriptionID,
			EventType:      string(e.EventType),
			Description:    e.Description,
			Metadata:       e.Metadata,
			CreatedAt:      e.CreatedAt,
		}
	}
	return out
}

// DashboardStatsResponse is the admin dashboard summary
type DashboardStatsResponse struct {
	SubscriptionsByStatus map[string]int64 `json:"subscriptions_by_status"`
	SubscriptionsByPlan   map[string]int64 `json:"subscriptions_by_plan"`
	TotalProducts         int64            `json:"total_products"`
	ActiveProducts        int64            `json:"active_products"`
	TotalUsers            int64            `json:"total_users"`
	MonthlyRecurring      decimal.Decimal  `json:"monthly_recurring_revenue"`
	Currency              string           `json:"currency"`
}
