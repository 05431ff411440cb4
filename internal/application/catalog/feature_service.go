package catalog

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/appsnxt/platform/internal/domain/catalog"
	"github.com/appsnxt/platform/internal/domain/shared"
)

// FeatureService handles per-plan feature list operations
type FeatureService struct {
	featureRepo catalog.ProductFeatureRepository
	productRepo catalog.ProductRepository
	cache       ProductCache
	logger      *zap.Logger
}

// NewFeatureService creates a new FeatureService
func NewFeatureService(
	featureRepo catalog.ProductFeatureRepository,
	productRepo catalog.ProductRepository,
	cache ProductCache,
	logger *zap.Logger,
) *FeatureService {
	return &FeatureService{
		featureRepo: featureRepo,
		productRepo: productRepo,
		cache:       cache,
		logger:      logger,
	}
}

// Create adds a feature row for a product plan. At most one row may exist
// per (product, plan) pair.
func (s *FeatureService) Create(ctx context.Context, req CreateFeatureRequest) (*FeatureResponse, error) {
	plan, err := catalog.ParsePlan(req.Plan)
	if err != nil {
		return nil, err
	}

	if _, err := s.productRepo.FindByID(ctx, req.ProductID); err != nil {
		return nil, err
	}

	exists, err := s.featureRepo.ExistsByProductAndPlan(ctx, req.ProductID, plan)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Feature list for this product and plan already exists")
	}

	row, err := catalog.NewProductFeature(req.ProductID, plan, req.Features)
	if err != nil {
		return nil, err
	}
	if err := s.featureRepo.Save(ctx, row); err != nil {
		return nil, err
	}

	s.cache.InvalidateFeatures(ctx, req.ProductID)

	s.logger.Info("feature list created",
		zap.String("product_id", req.ProductID.String()),
		zap.String("plan", plan.String()))

	response := ToFeatureResponse(row)
	return &response, nil
}

// GetByID retrieves a feature row by ID
func (s *FeatureService) GetByID(ctx context.Context, id uuid.UUID) (*FeatureResponse, error) {
	row, err := s.featureRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToFeatureResponse(row)
	return &response, nil
}

// ListByProduct returns a product's feature rows ordered by plan rank
func (s *FeatureService) ListByProduct(ctx context.Context, productID uuid.UUID) ([]FeatureResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	rows, err := s.featureRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return ToFeatureResponses(rows), nil
}

// GetGrouped returns the fixed three-bucket map of plan to feature list.
// Plans without a stored row appear with an empty list.
func (s *FeatureService) GetGrouped(ctx context.Context, productID uuid.UUID) (map[string][]string, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	rows, err := s.featureRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	grouped := catalog.GroupFeaturesByPlan(rows)
	out := make(map[string][]string, len(grouped))
	for plan, features := range grouped {
		out[plan.String()] = features
	}
	return out, nil
}

// GetByProductAndPlan returns one plan's feature list for a product
func (s *FeatureService) GetByProductAndPlan(ctx context.Context, productID uuid.UUID, planName string) (*FeatureResponse, error) {
	plan, err := catalog.ParsePlan(planName)
	if err != nil {
		return nil, err
	}

	row, err := s.featureRepo.FindByProductAndPlan(ctx, productID, plan)
	if err != nil {
		return nil, err
	}

	response := ToFeatureResponse(row)
	return &response, nil
}

// Update replaces the feature list and optionally moves the row to a
// different plan. Moving fails when the target (product, plan) pair is
// already taken.
func (s *FeatureService) Update(ctx context.Context, id uuid.UUID, req UpdateFeatureRequest) (*FeatureResponse, error) {
	row, err := s.featureRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Plan != nil {
		plan, err := catalog.ParsePlan(*req.Plan)
		if err != nil {
			return nil, err
		}
		if plan != row.Plan {
			taken, err := s.featureRepo.ExistsByProductAndPlan(ctx, row.ProductID, plan)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, shared.NewDomainError("ALREADY_EXISTS", "Feature list for this product and plan already exists")
			}
			if err := row.MoveToPlan(plan); err != nil {
				return nil, err
			}
		}
	}

	if req.Features != nil {
		row.ReplaceFeatures(req.Features)
	}

	if err := s.featureRepo.Save(ctx, row); err != nil {
		return nil, err
	}

	s.cache.InvalidateFeatures(ctx, row.ProductID)

	response := ToFeatureResponse(row)
	return &response, nil
}

// Delete removes one feature row
func (s *FeatureService) Delete(ctx context.Context, id uuid.UUID) error {
	row, err := s.featureRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.featureRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.InvalidateFeatures(ctx, row.ProductID)
	return nil
}

// DeleteByProduct removes every feature row of a product, returning how
// many rows were removed
func (s *FeatureService) DeleteByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return 0, err
	}

	count, err := s.featureRepo.DeleteByProduct(ctx, productID)
	if err != nil {
		return 0, err
	}

	s.cache.InvalidateFeatures(ctx, productID)

	s.logger.Info("feature lists deleted",
		zap.String("product_id", productID.String()),
		zap.Int64("count", count))
	return count, nil
}
