package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/appsnxt/platform/internal/domain/catalog"
	"github.com/appsnxt/platform/internal/domain/shared"
)

type featureServiceFixture struct {
	service     *FeatureService
	featureRepo *MockFeatureRepository
	productRepo *MockProductRepository
	cache       *fakeCache
}

func newFeatureServiceFixture() *featureServiceFixture {
	f := &featureServiceFixture{
		featureRepo: new(MockFeatureRepository),
		productRepo: new(MockProductRepository),
		cache:       newFakeCache(),
	}
	f.service = NewFeatureService(f.featureRepo, f.productRepo, f.cache, zap.NewNop())
	return f
}

func TestFeatureServiceCreate(t *testing.T) {
	f := newFeatureServiceFixture()

	product, err := catalog.NewProduct("Billing Hub", "")
	require.NoError(t, err)

	f.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.featureRepo.On("ExistsByProductAndPlan", mock.Anything, product.ID, catalog.PlanStarter).Return(false, nil)
	f.featureRepo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.ProductFeature")).Return(nil)

	resp, err := f.service.Create(context.Background(), CreateFeatureRequest{
		ProductID: product.ID,
		Plan:      "Starter",
		Features:  []string{"invoices", "invoices", "reports"},
	})
	require.NoError(t, err)

	assert.Equal(t, "starter", resp.Plan)
	// Duplicates collapse, the list behaves as a set.
	assert.ElementsMatch(t, []string{"invoices", "reports"}, resp.Features)
}

func TestFeatureServiceCreateDuplicatePlan(t *testing.T) {
	f := newFeatureServiceFixture()

	product, err := catalog.NewProduct("Billing Hub", "")
	require.NoError(t, err)

	f.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.featureRepo.On("ExistsByProductAndPlan", mock.Anything, product.ID, catalog.PlanStarter).Return(true, nil)

	_, err = f.service.Create(context.Background(), CreateFeatureRequest{
		ProductID: product.ID,
		Plan:      "starter",
	})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
}

func TestFeatureServiceCreateUnknownPlan(t *testing.T) {
	f := newFeatureServiceFixture()

	product, err := catalog.NewProduct("Billing Hub", "")
	require.NoError(t, err)

	_, err = f.service.Create(context.Background(), CreateFeatureRequest{
		ProductID: product.ID,
		Plan:      "platinum",
	})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_PLAN", domainErr.Code)
}

func TestFeatureServiceGetGroupedAlwaysThreeBuckets(t *testing.T) {
	f := newFeatureServiceFixture()

	product, err := catalog.NewProduct("Billing Hub", "")
	require.NoError(t, err)

	proRow, err := catalog.NewProductFeature(product.ID, catalog.PlanProfessional, []string{"api-access"})
	require.NoError(t, err)

	f.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.featureRepo.On("FindByProduct", mock.Anything, product.ID).Return([]catalog.ProductFeature{*proRow}, nil)

	grouped, err := f.service.GetGrouped(context.Background(), product.ID)
	require.NoError(t, err)

	require.Len(t, grouped, 3)
	assert.Empty(t, grouped["starter"])
	assert.Equal(t, []string{"api-access"}, grouped["professional"])
	assert.Empty(t, grouped["enterprise"])
}

func TestFeatureServiceUpdateMovePlanConflict(t *testing.T) {
	f := newFeatureServiceFixture()

	product, err := catalog.NewProduct("Billing Hub", "")
	require.NoError(t, err)
	row, err := catalog.NewProductFeature(product.ID, catalog.PlanStarter, []string{"invoices"})
	require.NoError(t, err)

	f.featureRepo.On("FindByID", mock.Anything, row.ID).Return(row, nil)
	f.featureRepo.On("ExistsByProductAndPlan", mock.Anything, product.ID, catalog.PlanProfessional).Return(true, nil)

	target := "professional"
	_, err = f.service.Update(context.Background(), row.ID, UpdateFeatureRequest{Plan: &target})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	assert.Equal(t, catalog.PlanStarter, row.Plan)
}

func TestFeatureServiceUpdateReplacesList(t *testing.T) {
	f := newFeatureServiceFixture()

	product, err := catalog.NewProduct("Billing Hub", "")
	require.NoError(t, err)
	row, err := catalog.NewProductFeature(product.ID, catalog.PlanStarter, []string{"invoices"})
	require.NoError(t, err)

	f.featureRepo.On("FindByID", mock.Anything, row.ID).Return(row, nil)
	f.featureRepo.On("Save", mock.Anything, row).Return(nil)

	resp, err := f.service.Update(context.Background(), row.ID, UpdateFeatureRequest{
		Features: []string{"invoices", "reports"},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"invoices", "reports"}, resp.Features)
	assert.Contains(t, f.cache.invalidations, "features:"+product.ID.String())
}

func TestFeatureServiceGetByProductAndPlan(t *testing.T) {
	f := newFeatureServiceFixture()

	product, err := catalog.NewProduct("Billing Hub", "")
	require.NoError(t, err)
	row, err := catalog.NewProductFeature(product.ID, catalog.PlanProfessional, []string{"reports"})
	require.NoError(t, err)

	f.featureRepo.On("FindByProductAndPlan", mock.Anything, product.ID, catalog.PlanProfessional).Return(row, nil)

	resp, err := f.service.GetByProductAndPlan(context.Background(), product.ID, "Professional")
	require.NoError(t, err)
	assert.Equal(t, "professional", resp.Plan)
	assert.ElementsMatch(t, []string{"reports"}, resp.Features)
}

func TestFeatureServiceGetByProductAndPlanUnknownPlan(t *testing.T) {
	f := newFeatureServiceFixture()

	_, err := f.service.GetByProductAndPlan(context.Background(), uuid.New(), "platinum")
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_PLAN", domainErr.Code)
}

func TestFeatureServiceDeleteByProduct(t *testing.T) {
	f := newFeatureServiceFixture()

	product, err := catalog.NewProduct("Billing Hub", "")
	require.NoError(t, err)

	f.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.featureRepo.On("DeleteByProduct", mock.Anything, product.ID).Return(int64(3), nil)

	count, err := f.service.DeleteByProduct(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
