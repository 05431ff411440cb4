package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/appsnxt/platform/internal/domain/billing"
	"github.com/appsnxt/platform/internal/domain/catalog"
	"github.com/appsnxt/platform/internal/domain/shared"
)

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindActive(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindFeatured(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByCategory(ctx context.Context, category string, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, category, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) CountActive(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

// MockFeatureRepository is a mock implementation of ProductFeatureRepository
type MockFeatureRepository struct {
	mock.Mock
}

func (m *MockFeatureRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ProductFeature, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductFeature), args.Error(1)
}

func (m *MockFeatureRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]catalog.ProductFeature, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]catalog.ProductFeature), args.Error(1)
}

func (m *MockFeatureRepository) FindByProductAndPlan(ctx context.Context, productID uuid.UUID, plan catalog.Plan) (*catalog.ProductFeature, error) {
	args := m.Called(ctx, productID, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductFeature), args.Error(1)
}

func (m *MockFeatureRepository) Save(ctx context.Context, feature *catalog.ProductFeature) error {
	args := m.Called(ctx, feature)
	return args.Error(0)
}

func (m *MockFeatureRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFeatureRepository) DeleteByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFeatureRepository) ExistsByProductAndPlan(ctx context.Context, productID uuid.UUID, plan catalog.Plan) (bool, error) {
	args := m.Called(ctx, productID, plan)
	return args.Bool(0), args.Error(1)
}

// MockSubscriptionRepository is a mock implementation of billing.SubscriptionRepository
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Subscription, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]billing.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]billing.Subscription, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).([]billing.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindCurrentByUser(ctx context.Context, userID uuid.UUID) ([]billing.Subscription, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]billing.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]billing.Subscription, error) {
	args := m.Called(ctx, productID, filter)
	return args.Get(0).([]billing.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) Save(ctx context.Context, sub *billing.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSubscriptionRepository) CountByProduct(ctx context.Context, productID uuid.UUID, activeOnly bool) (int64, error) {
	args := m.Called(ctx, productID, activeOnly)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSubscriptionRepository) CountByStatus(ctx context.Context) (map[billing.SubscriptionStatus]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[billing.SubscriptionStatus]int64), args.Error(1)
}

func (m *MockSubscriptionRepository) CountByPlan(ctx context.Context) (map[catalog.Plan]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[catalog.Plan]int64), args.Error(1)
}

func (m *MockSubscriptionRepository) MonthlyRecurringRevenue(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// fakeCache is an in-memory ProductCache that records invalidations
type fakeCache struct {
	products      map[string]*catalog.Product
	features      map[uuid.UUID][]catalog.ProductFeature
	invalidations []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		products: make(map[string]*catalog.Product),
		features: make(map[uuid.UUID][]catalog.ProductFeature),
	}
}

func (c *fakeCache) GetProduct(_ context.Context, slug string) (*catalog.Product, error) {
	return c.products[slug], nil
}

func (c *fakeCache) SetProduct(_ context.Context, product *catalog.Product) error {
	c.products[product.Slug] = product
	return nil
}

func (c *fakeCache) InvalidateProduct(_ context.Context, slug string) {
	delete(c.products, slug)
	c.invalidations = append(c.invalidations, "product:"+slug)
}

func (c *fakeCache) GetFeatures(_ context.Context, productID uuid.UUID) ([]catalog.ProductFeature, error) {
	return c.features[productID], nil
}

func (c *fakeCache) SetFeatures(_ context.Context, productID uuid.UUID, features []catalog.ProductFeature) error {
	c.features[productID] = features
	return nil
}

func (c *fakeCache) InvalidateFeatures(_ context.Context, productID uuid.UUID) {
	delete(c.features, productID)
	c.invalidations = append(c.invalidations, "features:"+productID.String())
}

// fakeStorage records uploads without talking to a real backend
type fakeStorage struct {
	uploads map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploads: make(map[string][]byte)}
}

func (s *fakeStorage) Upload(_ context.Context, storageKey string, data []byte, _ string) error {
	s.uploads[storageKey] = data
	return nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, storageKey string) error {
	delete(s.uploads, storageKey)
	return nil
}

func (s *fakeStorage) PublicURL(storageKey string) string {
	return "https://cdn.example.com/" + storageKey
}

// fakeEventBus records every published event
type fakeEventBus struct {
	published []shared.DomainEvent
}

func (b *fakeEventBus) Publish(_ context.Context, events ...shared.DomainEvent) error {
	b.published = append(b.published, events...)
	return nil
}

func (b *fakeEventBus) Subscribe(shared.EventHandler, ...string) {}
func (b *fakeEventBus) Unsubscribe(shared.EventHandler)          {}
func (b *fakeEventBus) Start(context.Context) error              { return nil }
func (b *fakeEventBus) Stop(context.Context) error               { return nil }

func (b *fakeEventBus) publishedTypes() []string {
	types := make([]string, 0, len(b.published))
	for _, event := range b.published {
		types = append(types, event.EventType())
	}
	return types
}

// fakeTxManager runs the function without a real transaction
type fakeTxManager struct{}

func (fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
