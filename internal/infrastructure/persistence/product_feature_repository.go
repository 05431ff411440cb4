package persistence

import (
	"context"
	"errors"

	"github.com/appsnxt/platform/internal/domain/catalog"
	"github.com/appsnxt/platform/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductFeatureRepository implements catalog.ProductFeatureRepository
// using GORM.
type GormProductFeatureRepository struct {
	db *gorm.DB
}

// NewGormProductFeatureRepository creates a new GormProductFeatureRepository.
func NewGormProductFeatureRepository(db *gorm.DB) *GormProductFeatureRepository {
	return &GormProductFeatureRepository{db: db}
}

func (r *GormProductFeatureRepository) conn(ctx context.Context) *gorm.DB {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}

// FindByID finds a feature row by its ID.
func (r *GormProductFeatureRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ProductFeature, error) {
	var feature catalog.ProductFeature
	if err := r.conn(ctx).First(&feature, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &feature, nil
}

// FindByProduct returns all feature rows for a product ordered by
// plan rank, starter first.
func (r *GormProductFeatureRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]catalog.ProductFeature, error) {
	var features []catalog.ProductFeature
	if err := r.conn(ctx).
		Where("product_id = ?", productID).
		Order("CASE plan WHEN 'starter' THEN 0 WHEN 'professional' THEN 1 WHEN 'enterprise' THEN 2 ELSE 3 END").
		Find(&features).Error; err != nil {
		return nil, err
	}
	return features, nil
}

// FindByProductAndPlan finds the feature row for one product and plan.
func (r *GormProductFeatureRepository) FindByProductAndPlan(ctx context.Context, productID uuid.UUID, plan catalog.Plan) (*catalog.ProductFeature, error) {
	var feature catalog.ProductFeature
	if err := r.conn(ctx).
		Where("product_id = ? AND plan = ?", productID, plan).
		First(&feature).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &feature, nil
}

// Save creates or updates a feature row.
func (r *GormProductFeatureRepository) Save(ctx context.Context, feature *catalog.ProductFeature) error {
	return r.conn(ctx).Save(feature).Error
}

// Delete deletes a feature row.
func (r *GormProductFeatureRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.conn(ctx).Delete(&catalog.ProductFeature{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByProduct deletes all feature rows for a product and returns
// how many were removed.
func (r *GormProductFeatureRepository) DeleteByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	result := r.conn(ctx).Delete(&catalog.ProductFeature{}, "product_id = ?", productID)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ExistsByProductAndPlan reports whether a row exists for the product
// and plan.
func (r *GormProductFeatureRepository) ExistsByProductAndPlan(ctx context.Context, productID uuid.UUID, plan catalog.Plan) (bool, error) {
	var count int64
	if err := r.conn(ctx).
		Model(&catalog.ProductFeature{}).
		Where("product_id = ? AND plan = ?", productID, plan).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ catalog.ProductFeatureRepository = (*GormProductFeatureRepository)(nil)
