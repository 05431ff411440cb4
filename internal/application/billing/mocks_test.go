package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/appsnxt/platform/internal/domain/billing"
	"github.com/appsnxt/platform/internal/domain/catalog"
	"github.com/appsnxt/platform/internal/domain/identity"
	"github.com/appsnxt/platform/internal/domain/shared"
)

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

// MockEventRepository is a mock implementation of billing.SubscriptionEventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Save(ctx context.Context, event *billing.SubscriptionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) FindBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]billing.SubscriptionEvent, error) {
	args := m.Called(ctx, subscriptionID)
	return args.Get(0).([]billing.SubscriptionEvent), args.Error(1)
}

func (m *MockEventRepository) DeleteBySubscription(ctx context.Context, subscriptionID uuid.UUID) (int64, error) {
	args := m.Called(ctx, subscriptionID)
	return args.Get(0).(int64), args.Error(1)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
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

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByProviderID(ctx context.Context, providerID string) (*identity.User, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// fakeOutbox records saved entries in memory
type fakeOutbox struct {
	entries []*shared.OutboxEntry
}

func (o *fakeOutbox) Save(_ context.Context, entries ...*shared.OutboxEntry) error {
	o.entries = append(o.entries, entries...)
	return nil
}

func (o *fakeOutbox) FindPending(context.Context, int) ([]*shared.OutboxEntry, error) {
	return nil, nil
}

func (o *fakeOutbox) FindRetryable(context.Context, time.Time, int) ([]*shared.OutboxEntry, error) {
	return nil, nil
}

func (o *fakeOutbox) FindDead(context.Context, int, int) ([]*shared.OutboxEntry, int64, error) {
	return nil, 0, nil
}

func (o *fakeOutbox) MarkProcessing(context.Context, []uuid.UUID) ([]*shared.OutboxEntry, error) {
	return nil, nil
}

func (o *fakeOutbox) Update(context.Context, *shared.OutboxEntry) error { return nil }

func (o *fakeOutbox) DeleteOlderThan(context.Context, time.Time) (int64, error) { return 0, nil }

func (o *fakeOutbox) CountByStatus(context.Context) (map[shared.OutboxStatus]int64, error) {
	return nil, nil
}

// fakeTxManager runs the function without a real transaction
type fakeTxManager struct{}

func (fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
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
