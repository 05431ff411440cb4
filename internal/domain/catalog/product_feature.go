package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/appsnxt/platform/internal/domain/shared"
)

// ProductFeature holds the capability list one plan of a product unlocks.
// At most one row exists per (product, plan) pair; the
// uq_product_feature_plan index is the database-level backstop.
type ProductFeature struct {
	shared.BaseAggregateRoot
	ProductID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_product_feature_plan,priority:1"`
	Plan        Plan      `gorm:"type:varchar(20);not null;uniqueIndex:uq_product_feature_plan,priority:2"`
	FeatureList StringSet `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (ProductFeature) TableName() string {
	return "product_features"
}

// NewProductFeature creates a feature row for a product plan
func NewProductFeature(productID uuid.UUID, plan Plan, features []string) (*ProductFeature, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID is required")
	}
	if !plan.IsValid() {
		return nil, shared.NewDomainError("INVALID_PLAN", "Plan must be one of: starter, professional, enterprise")
	}

	return &ProductFeature{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		Plan:              plan,
		FeatureList:       NewStringSet(features...),
	}, nil
}

// ReplaceFeatures swaps the full capability list
func (f *ProductFeature) ReplaceFeatures(features []string) {
	f.FeatureList = NewStringSet(features...)
	f.UpdatedAt = time.Now()
	f.IncrementVersion()
}

// MoveToPlan reassigns the row to a different plan
func (f *ProductFeature) MoveToPlan(plan Plan) error {
	if !plan.IsValid() {
		return shared.NewDomainError("INVALID_PLAN", "Plan must be one of: starter, professional, enterprise")
	}

	f.Plan = plan
	f.UpdatedAt = time.Now()
	f.IncrementVersion()

	return nil
}

// HasFeature reports whether the plan unlocks the given capability
func (f *ProductFeature) HasFeature(name string) bool {
	return f.FeatureList.Contains(name)
}

// GroupFeaturesByPlan buckets feature rows into the three fixed tiers.
// Every tier is present in the result, empty when no row exists.
func GroupFeaturesByPlan(features []ProductFeature) map[Plan]StringSet {
	grouped := make(map[Plan]StringSet, len(AllPlans()))
	for _, plan := range AllPlans() {
		grouped[plan] = StringSet{}
	}
	for _, f := range features {
		if _, ok := grouped[f.Plan]; ok {
			grouped[f.Plan] = NewStringSet(f.FeatureList...)
		}
	}
	return grouped
}
