package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/appsnxt/platform/internal/domain/catalog"
	"github.com/appsnxt/platform/internal/domain/shared"
)

// SubscriptionRepository defines the interface for subscription persistence
type SubscriptionRepository interface {
	// FindByID finds a subscription by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Subscription, error)

	// FindAll finds all subscriptions matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Subscription, error)

	// FindByUser finds all subscriptions owned by a user
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Subscription, error)

	// FindCurrentByUser finds the user's active or trialing subscriptions
	// whose period has not ended
	FindCurrentByUser(ctx context.Context, userID uuid.UUID) ([]Subscription, error)

	// FindByProduct finds all subscriptions for a product
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]Subscription, error)

	// Save creates or updates a subscription
	Save(ctx context.Context, sub *Subscription) error

	// Delete hard-deletes a subscription and its audit trail
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts subscriptions matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByProduct counts subscriptions referencing a product,
	// optionally restricted to active ones
	CountByProduct(ctx context.Context, productID uuid.UUID, activeOnly bool) (int64, error)

	// CountByStatus returns subscription counts grouped by status
	CountByStatus(ctx context.Context) (map[SubscriptionStatus]int64, error)

	// CountByPlan returns subscription counts grouped by plan
	CountByPlan(ctx context.Context) (map[catalog.Plan]int64, error)

	// MonthlyRecurringRevenue sums current subscription amounts
	// normalized to a per-month figure
	MonthlyRecurringRevenue(ctx context.Context) (decimal.Decimal, error)
}

// SubscriptionEventRepository defines the interface for the audit trail
type SubscriptionEventRepository interface {
	// Save appends an audit entry
	Save(ctx context.Context, event *SubscriptionEvent) error

	// FindBySubscription returns a subscription's audit trail, newest first
	FindBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]SubscriptionEvent, error)

	// DeleteBySubscription removes the audit trail for a subscription
	DeleteBySubscription(ctx context.Context, subscriptionID uuid.UUID) (int64, error)
}
