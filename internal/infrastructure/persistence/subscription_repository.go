package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/appsnxt/platform/internal/domain/billing"
	"github.com/appsnxt/platform/internal/domain/catalog"
	"github.com/appsnxt/platform/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormSubscriptionRepository implements billing.SubscriptionRepository
// using GORM.
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionRepository creates a new GormSubscriptionRepository.
func NewGormSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

func (r *GormSubscriptionRepository) conn(ctx context.Context) *gorm.DB {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}

// FindByID finds a subscription by its ID.
func (r *GormSubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Subscription, error) {
	var sub billing.Subscription
	if err := r.conn(ctx).First(&sub, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// FindAll finds all subscriptions matching the filter.
func (r *GormSubscriptionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Subscription, error) {
	var subs []billing.Subscription
	query := r.applyFilter(r.conn(ctx).Model(&billing.Subscription{}), filter)

	if err := query.Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// FindByUser finds all subscriptions owned by a user.
func (r *GormSubscriptionRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]billing.Subscription, error) {
	var subs []billing.Subscription
	query := r.applyFilter(
		r.conn(ctx).Model(&billing.Subscription{}).Where("user_id = ?", userID),
		filter,
	)

	if err := query.Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// FindCurrentByUser finds the user's active or trialing subscriptions
// whose period has not ended.
func (r *GormSubscriptionRepository) FindCurrentByUser(ctx context.Context, userID uuid.UUID) ([]billing.Subscription, error) {
	var subs []billing.Subscription
	if err := r.conn(ctx).
		Where("user_id = ? AND status IN ? AND end_date > ?",
			userID,
			[]billing.SubscriptionStatus{billing.SubscriptionStatusActive, billing.SubscriptionStatusTrialing},
			time.Now().UTC(),
		).
		Order("created_at DESC").
		Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// FindByProduct finds all subscriptions for a product.
func (r *GormSubscriptionRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]billing.Subscription, error) {
	var subs []billing.Subscription
	query := r.applyFilter(
		r.conn(ctx).Model(&billing.Subscription{}).Where("product_id = ?", productID),
		filter,
	)

	if err := query.Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// Save creates or updates a subscription.
func (r *GormSubscriptionRepository) Save(ctx context.Context, sub *billing.Subscription) error {
	return r.conn(ctx).Save(sub).Error
}

// Delete hard-deletes a subscription together with its audit trail.
func (r *GormSubscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&billing.SubscriptionEvent{}, "subscription_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&billing.Subscription{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts subscriptions matching the filter.
func (r *GormSubscriptionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.conn(ctx).Model(&billing.Subscription{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByProduct counts subscriptions referencing a product.
func (r *GormSubscriptionRepository) CountByProduct(ctx context.Context, productID uuid.UUID, activeOnly bool) (int64, error) {
	query := r.conn(ctx).
		Model(&billing.Subscription{}).
		Where("product_id = ?", productID)
	if activeOnly {
		query = query.Where("status IN ?",
			[]billing.SubscriptionStatus{billing.SubscriptionStatusActive, billing.SubscriptionStatusTrialing})
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus returns subscription counts grouped by status.
func (r *GormSubscriptionRepository) CountByStatus(ctx context.Context) (map[billing.SubscriptionStatus]int64, error) {
	var rows []struct {
		Status billing.SubscriptionStatus
		Total  int64
	}
	if err := r.conn(ctx).
		Model(&billing.Subscription{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[billing.SubscriptionStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// CountByPlan returns subscription counts grouped by plan.
func (r *GormSubscriptionRepository) CountByPlan(ctx context.Context) (map[catalog.Plan]int64, error) {
	var rows []struct {
		Plan  catalog.Plan
		Total int64
	}
	if err := r.conn(ctx).
		Model(&billing.Subscription{}).
		Select("plan, COUNT(*) AS total").
		Group("plan").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[catalog.Plan]int64, len(rows))
	for _, row := range rows {
		counts[row.Plan] = row.Total
	}
	return counts, nil
}

// MonthlyRecurringRevenue sums the amounts of current subscriptions,
// dividing each by the months its billing cycle spans.
func (r *GormSubscriptionRepository) MonthlyRecurringRevenue(ctx context.Context) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := r.conn(ctx).
		Model(&billing.Subscription{}).
		Select("COALESCE(SUM(amount / CASE billing_cycle WHEN 'yearly' THEN 12 WHEN 'quarterly' THEN 3 ELSE 1 END), 0) AS total").
		Where("status IN ?",
			[]billing.SubscriptionStatus{billing.SubscriptionStatusActive, billing.SubscriptionStatusTrialing}).
		Where("end_date > ?", time.Now().UTC()).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

func (r *GormSubscriptionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, SubscriptionSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

func (r *GormSubscriptionRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "plan":
			query = query.Where("plan = ?", value)
		case "user_id":
			query = query.Where("user_id = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "payment_provider":
			query = query.Where("payment_provider = ?", value)
		}
	}
	return query
}

var _ billing.SubscriptionRepository = (*GormSubscriptionRepository)(nil)

// GormSubscriptionEventRepository implements
// billing.SubscriptionEventRepository using GORM.
type GormSubscriptionEventRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionEventRepository creates a new
// GormSubscriptionEventRepository.
func NewGormSubscriptionEventRepository(db *gorm.DB) *GormSubscriptionEventRepository {
	return &GormSubscriptionEventRepository{db: db}
}

func (r *GormSubscriptionEventRepository) conn(ctx context.Context) *gorm.DB {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}

// Save appends an audit entry.
func (r *GormSubscriptionEventRepository) Save(ctx context.Context, event *billing.SubscriptionEvent) error {
	return r.conn(ctx).Create(event).Error
}

// FindBySubscription returns a subscription's audit trail, newest first.
func (r *GormSubscriptionEventRepository) FindBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]billing.SubscriptionEvent, error) {
	var events []billing.SubscriptionEvent
	if err := r.conn(ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("created_at DESC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// DeleteBySubscription removes the audit trail for a subscription.
func (r *GormSubscriptionEventRepository) DeleteBySubscription(ctx context.Context, subscriptionID uuid.UUID) (int64, error) {
	result := r.conn(ctx).Delete(&billing.SubscriptionEvent{}, "subscription_id = ?", subscriptionID)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

var _ billing.SubscriptionEventRepository = (*GormSubscriptionEventRepository)(nil)
