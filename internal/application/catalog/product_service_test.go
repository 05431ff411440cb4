package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/appsnxt/platform/internal/domain/catalog"
	"github.com/appsnxt/platform/internal/domain/shared"
)

type productServiceFixture struct {
	service     *ProductService
	productRepo *MockProductRepository
	featureRepo *MockFeatureRepository
	subRepo     *MockSubscriptionRepository
	cache       *fakeCache
	storage     *fakeStorage
	bus         *fakeEventBus
}

func newProductServiceFixture() *productServiceFixture {
	f := &productServiceFixture{
		productRepo: new(MockProductRepository),
		featureRepo: new(MockFeatureRepository),
		subRepo:     new(MockSubscriptionRepository),
		cache:       newFakeCache(),
		storage:     newFakeStorage(),
		bus:         &fakeEventBus{},
	}
	f.service = NewProductService(
		f.productRepo, f.featureRepo, f.subRepo,
		f.cache, f.storage, fakeTxManager{}, f.bus, zap.NewNop(),
	)
	return f
}

func TestProductServiceCreate(t *testing.T) {
	f := newProductServiceFixture()

	f.productRepo.On("ExistsBySlug", mock.Anything, "billing-hub").Return(false, nil)
	f.productRepo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil)

	starter := decimal.NewFromInt(499)
	resp, err := f.service.Create(context.Background(), CreateProductRequest{
		Name:         "Billing Hub",
		Category:     "finance",
		Tags:         []string{"invoicing", "gst"},
		StarterPrice: &starter,
	})
	require.NoError(t, err)

	assert.Equal(t, "billing-hub", resp.Slug)
	assert.Equal(t, "Billing Hub", resp.Name)
	assert.True(t, resp.IsActive)
	assert.True(t, starter.Equal(resp.StarterPrice))
	assert.Contains(t, f.bus.publishedTypes(), catalog.EventTypeProductCreated)
	f.productRepo.AssertExpectations(t)
}

func TestProductServiceCreateDuplicateSlug(t *testing.T) {
	f := newProductServiceFixture()

	f.productRepo.On("ExistsBySlug", mock.Anything, "billing-hub").Return(true, nil)

	_, err := f.service.Create(context.Background(), CreateProductRequest{Name: "Billing Hub"})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	f.productRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestProductServiceGetBySlugCachesResult(t *testing.T) {
	f := newProductServiceFixture()

	product, err := catalog.NewProduct("Billing Hub", "")
	require.NoError(t, err)

	f.productRepo.On("FindBySlug", mock.Anything, "billing-hub").Return(product, nil).Once()

	resp, err := f.service.GetBySlug(context.Background(), "  Billing-Hub ")
	require.NoError(t, err)
	assert.Equal(t, product.ID, resp.ID)

	// Second read is served from the cache, the repo is not hit again.
	resp, err = f.service.GetBySlug(context.Background(), "billing-hub")
	require.NoError(t, err)
	assert.Equal(t, product.ID, resp.ID)
	f.productRepo.AssertExpectations(t)
}

func TestProductServiceUpdatePartialFields(t *testing.T) {
	f := newProductServiceFixture()

	product, err := catalog.NewProduct("Billing Hub", "")
	require.NoError(t, err)
	require.NoError(t, product.Update("Billing Hub", "full text", "short text"))

	f.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.productRepo.On("Save", mock.Anything, product).Return(nil)

	newShort := "refreshed short text"
	resp, err := f.service.Update(context.Background(), product.ID, UpdateProductRequest{
		ShortDescription: &newShort,
	})
	require.NoError(t, err)

	assert.Equal(t, "refreshed short text", resp.ShortDescription)
	assert.Equal(t, "Billing Hub", resp.Name)
	assert.Equal(t, "full text", resp.Description)
}

func TestProductServiceDeleteRefusedWithSubscriptions(t *testing.T) {
	f := newProductServiceFixture()

	product, err := catalog.NewProduct("Billing Hub", "")
	require.NoError(t, err)

	f.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.subRepo.On("CountByProduct", mock.Anything, product.ID, false).Return(int64(3), nil)

	err = f.service.Delete(context.Background(), product.ID)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "PRODUCT_IN_USE", domainErr.Code)
	f.productRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestProductServiceDelete(t *testing.T) {
	f := newProductServiceFixture()

	product, err := catalog.NewProduct("Billing Hub", "")
	require.NoError(t, err)

	f.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.subRepo.On("CountByProduct", mock.Anything, product.ID, false).Return(int64(0), nil)
	f.featureRepo.On("DeleteByProduct", mock.Anything, product.ID).Return(int64(2), nil)
	f.productRepo.On("Delete", mock.Anything, product.ID).Return(nil)

	require.NoError(t, f.service.Delete(context.Background(), product.ID))
	assert.Contains(t, f.cache.invalidations, "product:billing-hub")
	assert.Contains(t, f.bus.publishedTypes(), catalog.EventTypeProductDeleted)
}

func TestProductServiceGetPricingAlwaysThreeTiers(t *testing.T) {
	f := newProductServiceFixture()

	product, err := catalog.NewProduct("Billing Hub", "")
	require.NoError(t, err)
	require.NoError(t, product.SetPricing(
		decimal.NewFromInt(499), decimal.NewFromInt(1499), decimal.NewFromInt(4999)))

	starterRow, err := catalog.NewProductFeature(product.ID, catalog.PlanStarter, []string{"invoices"})
	require.NoError(t, err)

	f.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.featureRepo.On("FindByProduct", mock.Anything, product.ID).Return([]catalog.ProductFeature{*starterRow}, nil)

	pricing, err := f.service.GetPricing(context.Background(), product.ID)
	require.NoError(t, err)

	require.Len(t, pricing.Plans, 3)
	assert.Equal(t, "starter", pricing.Plans[0].Plan)
	assert.Equal(t, []string{"invoices"}, pricing.Plans[0].Features)
	assert.Empty(t, pricing.Plans[1].Features)
	assert.Empty(t, pricing.Plans[2].Features)
	assert.True(t, decimal.NewFromInt(4999).Equal(pricing.Plans[2].Price))
}

func TestProductServiceUpdatePricing(t *testing.T) {
	f := newProductServiceFixture()

	product, err := catalog.NewProduct("Billing Hub", "")
	require.NoError(t, err)

	f.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.productRepo.On("Save", mock.Anything, product).Return(nil)
	f.featureRepo.On("FindByProductAndPlan", mock.Anything, product.ID, mock.Anything).Return(nil, shared.ErrNotFound)
	f.featureRepo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.ProductFeature")).Return(nil)
	f.featureRepo.On("FindByProduct", mock.Anything, product.ID).Return([]catalog.ProductFeature{}, nil)

	_, err = f.service.UpdatePricing(context.Background(), product.ID, UpdatePricingRequest{
		StarterPrice:      decimal.NewFromInt(599),
		ProfessionalPrice: decimal.NewFromInt(1599),
		EnterprisePrice:   decimal.NewFromInt(5999),
		StarterFeatures:   []string{"invoices"},
	})
	require.NoError(t, err)

	f.featureRepo.AssertNumberOfCalls(t, "Save", 3)
	assert.True(t, decimal.NewFromInt(599).Equal(product.StarterPrice))
}

func TestProductServiceUploadLogo(t *testing.T) {
	f := newProductServiceFixture()

	product, err := catalog.NewProduct("Billing Hub", "")
	require.NoError(t, err)

	f.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.productRepo.On("Save", mock.Anything, product).Return(nil)

	resp, err := f.service.UploadLogo(context.Background(), product.ID, "logo.png", "image/png", []byte{0x89, 0x50})
	require.NoError(t, err)

	assert.Contains(t, resp.LogoURL, "https://cdn.example.com/logos/billing-hub/")
	assert.Len(t, f.storage.uploads, 1)
}

func TestProductServiceUploadLogoRejectsExtension(t *testing.T) {
	f := newProductServiceFixture()

	product, err := catalog.NewProduct("Billing Hub", "")
	require.NoError(t, err)
	f.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)

	_, err = f.service.UploadLogo(context.Background(), product.ID, "logo.exe", "application/octet-stream", []byte{1})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_FILE", domainErr.Code)
}

func TestProductServiceGetStats(t *testing.T) {
	f := newProductServiceFixture()

	product, err := catalog.NewProduct("Billing Hub", "")
	require.NoError(t, err)

	f.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.subRepo.On("CountByProduct", mock.Anything, product.ID, false).Return(int64(10), nil)
	f.subRepo.On("CountByProduct", mock.Anything, product.ID, true).Return(int64(7), nil)

	stats, err := f.service.GetStats(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stats.TotalSubscribers)
	assert.Equal(t, int64(7), stats.ActiveSubscribers)
}

func TestProductServiceGetByIDNotFound(t *testing.T) {
	f := newProductServiceFixture()

	id := uuid.New()
	f.productRepo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	_, err := f.service.GetByID(context.Background(), id)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}
