// Package catalog implements the application services for the product
// catalog: products, per-plan feature lists and the assembled pricing view.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/appsnxt/platform/internal/domain/billing"
	"github.com/appsnxt/platform/internal/domain/catalog"
	"github.com/appsnxt/platform/internal/domain/shared"
)

// ProductCache is the read-through cache in front of catalog queries.
// A nil product with a nil error means a miss.
type ProductCache interface {
	GetProduct(ctx context.Context, slug string) (*catalog.Product, error)
	SetProduct(ctx context.Context, product *catalog.Product) error
	InvalidateProduct(ctx context.Context, slug string)
	GetFeatures(ctx context.Context, productID uuid.UUID) ([]catalog.ProductFeature, error)
	SetFeatures(ctx context.Context, productID uuid.UUID, features []catalog.ProductFeature) error
	InvalidateFeatures(ctx context.Context, productID uuid.UUID)
}

// ObjectStorage stores product logos on an S3-compatible backend
type ObjectStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	DeleteObject(ctx context.Context, storageKey string) error
	PublicURL(storageKey string) string
}

// ProductService handles product catalog operations
type ProductService struct {
	productRepo catalog.ProductRepository
	featureRepo catalog.ProductFeatureRepository
	subRepo     billing.SubscriptionRepository
	cache       ProductCache
	storage     ObjectStorage
	txManager   shared.TransactionManager
	eventBus    shared.EventBus
	logger      *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	featureRepo catalog.ProductFeatureRepository,
	subRepo billing.SubscriptionRepository,
	cache ProductCache,
	storage ObjectStorage,
	txManager shared.TransactionManager,
	eventBus shared.EventBus,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		featureRepo: featureRepo,
		subRepo:     subRepo,
		cache:       cache,
		storage:     storage,
		txManager:   txManager,
		eventBus:    eventBus,
		logger:      logger,
	}
}

// Create creates a new product. The slug must be unique; an empty slug is
// derived from the name.
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.Name, req.Slug)
	if err != nil {
		return nil, err
	}

	exists, err := s.productRepo.ExistsBySlug(ctx, product.Slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this slug already exists")
	}

	if req.Description != "" || req.ShortDescription != "" {
		if err := product.Update(req.Name, req.Description, req.ShortDescription); err != nil {
			return nil, err
		}
	}
	if req.WebsiteURL != "" {
		if err := product.SetLinks("", req.WebsiteURL); err != nil {
			return nil, err
		}
	}
	if req.Category != "" {
		if err := product.SetCategory(req.Category); err != nil {
			return nil, err
		}
	}
	if len(req.Tags) > 0 {
		product.SetTags(req.Tags)
	}
	if req.StarterPrice != nil || req.ProfessionalPrice != nil || req.EnterprisePrice != nil {
		starter := product.StarterPrice
		professional := product.ProfessionalPrice
		enterprise := product.EnterprisePrice
		if req.StarterPrice != nil {
			starter = *req.StarterPrice
		}
		if req.ProfessionalPrice != nil {
			professional = *req.ProfessionalPrice
		}
		if req.EnterprisePrice != nil {
			enterprise = *req.EnterprisePrice
		}
		if err := product.SetPricing(starter, professional, enterprise); err != nil {
			return nil, err
		}
	}
	if req.IsFeatured != nil {
		product.SetFeatured(*req.IsFeatured)
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, product)
	s.logger.Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.String("slug", product.Slug))

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetBySlug retrieves a product by slug, consulting the cache first
func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*ProductResponse, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))

	if cached, err := s.cache.GetProduct(ctx, slug); err == nil && cached != nil {
		response := ToProductResponse(cached)
		return &response, nil
	}

	product, err := s.productRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetProduct(ctx, product); err != nil {
		s.logger.Warn("failed to cache product", zap.String("slug", slug), zap.Error(err))
	}

	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products with filtering and pagination
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	domainFilter := s.buildFilter(filter)

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToProductResponses(products), total, nil
}

// Update applies a partial update. Nil request fields leave the stored
// values unchanged.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldSlug := product.Slug

	if req.Name != nil || req.Description != nil || req.ShortDescription != nil {
		name := product.Name
		description := product.Description
		short := product.ShortDescription
		if req.Name != nil {
			name = *req.Name
		}
		if req.Description != nil {
			description = *req.Description
		}
		if req.ShortDescription != nil {
			short = *req.ShortDescription
		}
		if err := product.Update(name, description, short); err != nil {
			return nil, err
		}
	}

	if req.Slug != nil && *req.Slug != product.Slug {
		exists, err := s.productRepo.ExistsBySlug(ctx, *req.Slug)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this slug already exists")
		}
		if err := product.UpdateSlug(*req.Slug); err != nil {
			return nil, err
		}
	}

	if req.WebsiteURL != nil {
		if err := product.SetLinks(product.LogoURL, *req.WebsiteURL); err != nil {
			return nil, err
		}
	}
	if req.Category != nil {
		if err := product.SetCategory(*req.Category); err != nil {
			return nil, err
		}
	}
	if req.Tags != nil {
		product.SetTags(req.Tags)
	}

	if req.StarterPrice != nil || req.ProfessionalPrice != nil || req.EnterprisePrice != nil {
		starter := product.StarterPrice
		professional := product.ProfessionalPrice
		enterprise := product.EnterprisePrice
		if req.StarterPrice != nil {
			starter = *req.StarterPrice
		}
		if req.ProfessionalPrice != nil {
			professional = *req.ProfessionalPrice
		}
		if req.EnterprisePrice != nil {
			enterprise = *req.EnterprisePrice
		}
		if err := product.SetPricing(starter, professional, enterprise); err != nil {
			return nil, err
		}
	}

	if req.IsActive != nil && *req.IsActive != product.IsActive {
		if *req.IsActive {
			err = product.Activate()
		} else {
			err = product.Deactivate()
		}
		if err != nil {
			return nil, err
		}
	}
	if req.IsFeatured != nil {
		product.SetFeatured(*req.IsFeatured)
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.cache.InvalidateProduct(ctx, oldSlug)
	if product.Slug != oldSlug {
		s.cache.InvalidateProduct(ctx, product.Slug)
	}
	s.cache.InvalidateFeatures(ctx, product.ID)
	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// Delete removes a product. Deletion is refused while any subscription,
// in any state, still references the product.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.subRepo.CountByProduct(ctx, id, false)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("PRODUCT_IN_USE",
			fmt.Sprintf("Product has %d subscriptions and cannot be deleted", count))
	}

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if _, err := s.featureRepo.DeleteByProduct(txCtx, id); err != nil {
			return err
		}
		return s.productRepo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}

	s.cache.InvalidateProduct(ctx, product.Slug)
	s.cache.InvalidateFeatures(ctx, id)
	if s.eventBus != nil {
		_ = s.eventBus.Publish(ctx, catalog.NewProductDeletedEvent(product))
	}

	s.logger.Info("product deleted",
		zap.String("product_id", id.String()),
		zap.String("slug", product.Slug))
	return nil
}

// GetPricing assembles the three-tier pricing view from the price columns
// and the per-plan feature lists
func (s *ProductService) GetPricing(ctx context.Context, id uuid.UUID) (*ProductPricingResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	features, err := s.cachedFeatures(ctx, id)
	if err != nil {
		return nil, err
	}
	grouped := catalog.GroupFeaturesByPlan(features)

	plans := make([]PlanPricing, 0, len(catalog.AllPlans()))
	for _, plan := range catalog.AllPlans() {
		plans = append(plans, PlanPricing{
			Plan:     plan.String(),
			Price:    product.PriceForPlan(plan),
			Features: grouped[plan],
		})
	}

	return &ProductPricingResponse{
		ProductID: product.ID,
		Slug:      product.Slug,
		Name:      product.Name,
		Plans:     plans,
	}, nil
}

// UpdatePricing replaces the tier prices and every per-plan feature list
// in a single transaction
func (s *ProductService) UpdatePricing(ctx context.Context, id uuid.UUID, req UpdatePricingRequest) (*ProductPricingResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := product.SetPricing(req.StarterPrice, req.ProfessionalPrice, req.EnterprisePrice); err != nil {
		return nil, err
	}

	planFeatures := map[catalog.Plan][]string{
		catalog.PlanStarter:      req.StarterFeatures,
		catalog.PlanProfessional: req.ProFeatures,
		catalog.PlanEnterprise:   req.EnterprisePlus,
	}

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.productRepo.Save(txCtx, product); err != nil {
			return err
		}
		for _, plan := range catalog.AllPlans() {
			if err := s.upsertPlanFeatures(txCtx, id, plan, planFeatures[plan]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateProduct(ctx, product.Slug)
	s.cache.InvalidateFeatures(ctx, id)
	s.publishEvents(ctx, product)

	s.logger.Info("product pricing updated", zap.String("product_id", id.String()))

	return s.GetPricing(ctx, id)
}

// UploadLogo stores the logo on object storage and records its public URL
func (s *ProductService) UploadLogo(ctx context.Context, id uuid.UUID, fileName, contentType string, data []byte) (*ProductResponse, error) {
	if len(data) == 0 {
		return nil, shared.NewDomainError("INVALID_FILE", "Logo file is empty")
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(path.Ext(fileName))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".svg", ".webp":
	default:
		return nil, shared.NewDomainError("INVALID_FILE", "Logo must be a png, jpg, svg or webp file")
	}

	storageKey := fmt.Sprintf("logos/%s/%s%s", product.Slug, uuid.New().String(), ext)
	if err := s.storage.Upload(ctx, storageKey, data, contentType); err != nil {
		return nil, fmt.Errorf("upload logo: %w", err)
	}

	if err := product.SetLogoURL(s.storage.PublicURL(storageKey)); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.cache.InvalidateProduct(ctx, product.Slug)
	s.publishEvents(ctx, product)

	s.logger.Info("product logo uploaded",
		zap.String("product_id", id.String()),
		zap.String("storage_key", storageKey))

	response := ToProductResponse(product)
	return &response, nil
}

// GetStats reports total and active subscriber counts for a product
func (s *ProductService) GetStats(ctx context.Context, id uuid.UUID) (*ProductStatsResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	total, err := s.subRepo.CountByProduct(ctx, id, false)
	if err != nil {
		return nil, err
	}
	active, err := s.subRepo.CountByProduct(ctx, id, true)
	if err != nil {
		return nil, err
	}

	return &ProductStatsResponse{
		ProductID:         id,
		TotalSubscribers:  total,
		ActiveSubscribers: active,
	}, nil
}

// publishEvents hands the aggregate's pending events to the in-process
// bus after a successful write
func (s *ProductService) publishEvents(ctx context.Context, product *catalog.Product) {
	if s.eventBus == nil {
		return
	}
	for _, event := range product.GetDomainEvents() {
		_ = s.eventBus.Publish(ctx, event)
	}
	product.ClearDomainEvents()
}

func (s *ProductService) cachedFeatures(ctx context.Context, productID uuid.UUID) ([]catalog.ProductFeature, error) {
	if cached, err := s.cache.GetFeatures(ctx, productID); err == nil && cached != nil {
		return cached, nil
	}

	features, err := s.featureRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetFeatures(ctx, productID, features); err != nil {
		s.logger.Warn("failed to cache features",
			zap.String("product_id", productID.String()), zap.Error(err))
	}
	return features, nil
}

func (s *ProductService) upsertPlanFeatures(ctx context.Context, productID uuid.UUID, plan catalog.Plan, features []string) error {
	existing, err := s.featureRepo.FindByProductAndPlan(ctx, productID, plan)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	if existing != nil {
		existing.ReplaceFeatures(features)
		return s.featureRepo.Save(ctx, existing)
	}

	row, err := catalog.NewProductFeature(productID, plan, features)
	if err != nil {
		return err
	}
	return s.featureRepo.Save(ctx, row)
}

func (s *ProductService) buildFilter(filter ProductListFilter) shared.Filter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Category != "" {
		domainFilter.Filters["category"] = filter.Category
	}
	if filter.IsActive != nil {
		domainFilter.Filters["is_active"] = *filter.IsActive
	}
	if filter.IsFeatured != nil {
		domainFilter.Filters["is_featured"] = *filter.IsFeatured
	}
	return domainFilter
}
