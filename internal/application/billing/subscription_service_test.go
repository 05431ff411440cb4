package billing

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/appsnxt/platform/internal/domain/billing"
	"github.com/appsnxt/platform/internal/domain/catalog"
	"github.com/appsnxt/platform/internal/domain/shared"
	"github.com/appsnxt/platform/internal/infrastructure/tasks"
)

type subscriptionServiceFixture struct {
	service     *SubscriptionService
	subRepo     *MockSubscriptionRepository
	eventRepo   *MockEventRepository
	productRepo *MockProductRepository
	outbox      *fakeOutbox
	bus         *fakeEventBus
}

func newSubscriptionServiceFixture(t *testing.T) *subscriptionServiceFixture {
	t.Helper()
	f := &subscriptionServiceFixture{
		subRepo:     new(MockSubscriptionRepository),
		eventRepo:   new(MockEventRepository),
		productRepo: new(MockProductRepository),
		outbox:      &fakeOutbox{},
		bus:         &fakeEventBus{},
	}
	f.service = NewSubscriptionService(
		f.subRepo, f.eventRepo, f.productRepo,
		f.outbox, fakeTxManager{}, f.bus, zap.NewNop(),
	)
	return f
}

func testProduct(t *testing.T) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct("Billing Hub", "")
	require.NoError(t, err)
	require.NoError(t, product.SetPricing(
		decimal.NewFromInt(499), decimal.NewFromInt(1499), decimal.NewFromInt(4999)))
	return product
}

func TestSubscriptionServiceCreateDefaultsAmountFromTierPrice(t *testing.T) {
	f := newSubscriptionServiceFixture(t)
	product := testProduct(t)
	userID := uuid.New()

	f.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.subRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Subscription")).Return(nil)
	f.eventRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.SubscriptionEvent")).Return(nil)

	resp, err := f.service.Create(context.Background(), CreateSubscriptionRequest{
		UserID:       userID,
		ProductID:    product.ID,
		Plan:         "professional",
		BillingCycle: "monthly",
	})
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(1499).Equal(resp.Amount))
	assert.Equal(t, "active", resp.Status)
	assert.Equal(t, "INR", resp.Currency)

	require.Len(t, f.outbox.entries, 1)
	entry := f.outbox.entries[0]
	assert.Equal(t, tasks.TaskSubscriptionCreated, entry.TaskType)
	assert.Equal(t, shared.OutboxStatusPending, entry.Status)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(entry.Payload, &payload))
	assert.Equal(t, userID.String(), payload["user_id"])
	assert.Equal(t, "professional", payload["plan"])

	assert.Equal(t, []string{billing.EventTypeSubscriptionCreated}, f.bus.publishedTypes())
}

func TestSubscriptionServiceCreateRefusedForInactiveProduct(t *testing.T) {
	f := newSubscriptionServiceFixture(t)
	product := testProduct(t)
	require.NoError(t, product.Deactivate())

	f.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)

	_, err := f.service.Create(context.Background(), CreateSubscriptionRequest{
		UserID:       uuid.New(),
		ProductID:    product.ID,
		Plan:         "starter",
		BillingCycle: "monthly",
	})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "PRODUCT_INACTIVE", domainErr.Code)
}

func TestSubscriptionServiceCreateWithTrial(t *testing.T) {
	f := newSubscriptionServiceFixture(t)
	product := testProduct(t)

	f.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.subRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Subscription")).Return(nil)
	f.eventRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.SubscriptionEvent")).Return(nil)

	resp, err := f.service.Create(context.Background(), CreateSubscriptionRequest{
		UserID:       uuid.New(),
		ProductID:    product.ID,
		Plan:         "starter",
		BillingCycle: "yearly",
		TrialDays:    14,
	})
	require.NoError(t, err)

	assert.Equal(t, "trialing", resp.Status)
	require.NotNil(t, resp.TrialEndDate)
}

func TestSubscriptionServiceGetByIDOwnership(t *testing.T) {
	f := newSubscriptionServiceFixture(t)
	owner := uuid.New()

	sub, err := billing.NewSubscription(owner, uuid.New(), catalog.PlanStarter,
		decimal.NewFromInt(499), "", billing.BillingCycleMonthly, billing.PaymentProviderManual, 0)
	require.NoError(t, err)

	f.subRepo.On("FindByID", mock.Anything, sub.ID).Return(sub, nil)

	_, err = f.service.GetByID(context.Background(), sub.ID, uuid.New(), false)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	resp, err := f.service.GetByID(context.Background(), sub.ID, owner, false)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, resp.ID)

	resp, err = f.service.GetByID(context.Background(), sub.ID, uuid.New(), true)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, resp.ID)
}

func TestSubscriptionServiceListScopesNonAdmins(t *testing.T) {
	f := newSubscriptionServiceFixture(t)
	requester := uuid.New()

	f.subRepo.On("FindAll", mock.Anything, mock.MatchedBy(func(filter shared.Filter) bool {
		return filter.Filters["user_id"] == requester
	})).Return([]billing.Subscription{}, nil)
	f.subRepo.On("Count", mock.Anything, mock.Anything).Return(int64(0), nil)

	_, _, err := f.service.List(context.Background(), SubscriptionListFilter{}, requester, false)
	require.NoError(t, err)
	f.subRepo.AssertExpectations(t)
}

func TestSubscriptionServiceChangePlanRederivesAmount(t *testing.T) {
	f := newSubscriptionServiceFixture(t)
	product := testProduct(t)

	sub, err := billing.NewSubscription(uuid.New(), product.ID, catalog.PlanStarter,
		decimal.NewFromInt(499), "", billing.BillingCycleMonthly, billing.PaymentProviderManual, 0)
	require.NoError(t, err)

	f.subRepo.On("FindByID", mock.Anything, sub.ID).Return(sub, nil)
	f.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.subRepo.On("Save", mock.Anything, sub).Return(nil)
	f.eventRepo.On("Save", mock.Anything, mock.MatchedBy(func(e *billing.SubscriptionEvent) bool {
		return e.EventType == billing.SubscriptionEventPlanChanged
	})).Return(nil)

	resp, err := f.service.ChangePlan(context.Background(), sub.ID, ChangePlanRequest{Plan: "enterprise"})
	require.NoError(t, err)

	assert.Equal(t, "enterprise", resp.Plan)
	assert.True(t, decimal.NewFromInt(4999).Equal(resp.Amount))

	require.Len(t, f.outbox.entries, 1)
	assert.Equal(t, tasks.TaskSubscriptionPlanChanged, f.outbox.entries[0].TaskType)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(f.outbox.entries[0].Payload, &payload))
	assert.Equal(t, "starter", payload["old_plan"])
}

func TestSubscriptionServiceCancelAtPeriodEnd(t *testing.T) {
	f := newSubscriptionServiceFixture(t)

	sub, err := billing.NewSubscription(uuid.New(), uuid.New(), catalog.PlanStarter,
		decimal.NewFromInt(499), "", billing.BillingCycleMonthly, billing.PaymentProviderManual, 0)
	require.NoError(t, err)

	f.subRepo.On("FindByID", mock.Anything, sub.ID).Return(sub, nil)
	f.subRepo.On("Save", mock.Anything, sub).Return(nil)
	f.eventRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.SubscriptionEvent")).Return(nil)

	resp, err := f.service.Cancel(context.Background(), sub.ID, CancelRequest{EndImmediately: false})
	require.NoError(t, err)

	// Access continues until the period end; the subscription just
	// stops renewing.
	assert.Equal(t, "active", resp.Status)
	assert.True(t, resp.CancelAtPeriodEnd)
	assert.False(t, resp.AutoRenew)
	require.Len(t, f.outbox.entries, 1)
	assert.Equal(t, tasks.TaskSubscriptionCanceled, f.outbox.entries[0].TaskType)
	assert.Contains(t, f.bus.publishedTypes(), billing.EventTypeSubscriptionCanceled)
}

func TestSubscriptionServiceCancelImmediately(t *testing.T) {
	f := newSubscriptionServiceFixture(t)

	sub, err := billing.NewSubscription(uuid.New(), uuid.New(), catalog.PlanStarter,
		decimal.NewFromInt(499), "", billing.BillingCycleMonthly, billing.PaymentProviderManual, 0)
	require.NoError(t, err)

	f.subRepo.On("FindByID", mock.Anything, sub.ID).Return(sub, nil)
	f.subRepo.On("Save", mock.Anything, sub).Return(nil)
	f.eventRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.SubscriptionEvent")).Return(nil)

	resp, err := f.service.Cancel(context.Background(), sub.ID, CancelRequest{EndImmediately: true})
	require.NoError(t, err)

	assert.Equal(t, "canceled", resp.Status)
	require.NotNil(t, resp.CanceledAt)
}

func TestSubscriptionServiceReactivateRefusedForInactiveProduct(t *testing.T) {
	f := newSubscriptionServiceFixture(t)
	product := testProduct(t)

	sub, err := billing.NewSubscription(uuid.New(), product.ID, catalog.PlanStarter,
		decimal.NewFromInt(499), "", billing.BillingCycleMonthly, billing.PaymentProviderManual, 0)
	require.NoError(t, err)
	require.NoError(t, sub.Cancel(true))
	require.NoError(t, product.Deactivate())

	f.subRepo.On("FindByID", mock.Anything, sub.ID).Return(sub, nil)
	f.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)

	_, err = f.service.Reactivate(context.Background(), sub.ID)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "PRODUCT_INACTIVE", domainErr.Code)
}

func TestSubscriptionServiceReactivate(t *testing.T) {
	f := newSubscriptionServiceFixture(t)
	product := testProduct(t)

	sub, err := billing.NewSubscription(uuid.New(), product.ID, catalog.PlanStarter,
		decimal.NewFromInt(499), "", billing.BillingCycleMonthly, billing.PaymentProviderManual, 0)
	require.NoError(t, err)
	require.NoError(t, sub.Cancel(true))

	f.subRepo.On("FindByID", mock.Anything, sub.ID).Return(sub, nil)
	f.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.subRepo.On("Save", mock.Anything, sub).Return(nil)
	f.eventRepo.On("Save", mock.Anything, mock.MatchedBy(func(e *billing.SubscriptionEvent) bool {
		return e.EventType == billing.SubscriptionEventReactivated
	})).Return(nil)

	resp, err := f.service.Reactivate(context.Background(), sub.ID)
	require.NoError(t, err)

	assert.Equal(t, "active", resp.Status)
	assert.Nil(t, resp.CanceledAt)
	assert.True(t, resp.AutoRenew)
}

func TestSubscriptionServiceUpdatePartialFields(t *testing.T) {
	f := newSubscriptionServiceFixture(t)

	sub, err := billing.NewSubscription(uuid.New(), uuid.New(), catalog.PlanStarter,
		decimal.NewFromInt(499), "", billing.BillingCycleMonthly, billing.PaymentProviderManual, 0)
	require.NoError(t, err)

	f.subRepo.On("FindByID", mock.Anything, sub.ID).Return(sub, nil)
	f.subRepo.On("Save", mock.Anything, sub).Return(nil)
	f.eventRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.SubscriptionEvent")).Return(nil)

	maxUsers := 25
	resp, err := f.service.Update(context.Background(), sub.ID, UpdateSubscriptionRequest{
		MaxUsers: &maxUsers,
	})
	require.NoError(t, err)

	assert.Equal(t, 25, resp.MaxUsers)
	assert.Equal(t, 1, resp.MaxProjects)
}

func TestSubscriptionServiceListEventsOwnership(t *testing.T) {
	f := newSubscriptionServiceFixture(t)
	owner := uuid.New()

	sub, err := billing.NewSubscription(owner, uuid.New(), catalog.PlanStarter,
		decimal.NewFromInt(499), "", billing.BillingCycleMonthly, billing.PaymentProviderManual, 0)
	require.NoError(t, err)

	f.subRepo.On("FindByID", mock.Anything, sub.ID).Return(sub, nil)

	_, err = f.service.ListEvents(context.Background(), sub.ID, uuid.New(), false)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}
