package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/appsnxt/platform/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindBySlug finds a product by its slug
	FindBySlug(ctx context.Context, slug string) (*Product, error)

	// FindAll finds all products matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// FindActive finds all active products
	FindActive(ctx context.Context, filter shared.Filter) ([]Product, error)

	// FindFeatured finds all featured active products
	FindFeatured(ctx context.Context, filter shared.Filter) ([]Product, error)

	// FindByCategory finds all products in a category
	FindByCategory(ctx context.Context, category string, filter shared.Filter) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// Delete deletes a product
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts products matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountActive counts active products
	CountActive(ctx context.Context) (int64, error)

	// ExistsBySlug checks if a product with the given slug exists
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
}

// ProductFeatureRepository defines the interface for product feature persistence
type ProductFeatureRepository interface {
	// FindByID finds a feature row by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*ProductFeature, error)

	// FindByProduct finds all feature rows for a product, ordered by plan rank
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]ProductFeature, error)

	// FindByProductAndPlan finds the feature row for one product and plan
	FindByProductAndPlan(ctx context.Context, productID uuid.UUID, plan Plan) (*ProductFeature, error)

	// Save creates or updates a feature row
	Save(ctx context.Context, feature *ProductFeature) error

	// Delete deletes a feature row
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByProduct deletes all feature rows for a product, returning the count
	DeleteByProduct(ctx context.Context, productID uuid.UUID) (int64, error)

	// ExistsByProductAndPlan checks if a row exists for the product and plan
	ExistsByProductAndPlan(ctx context.Context, productID uuid.UUID, plan Plan) (bool, error)
}
