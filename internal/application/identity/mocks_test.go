package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/appsnxt/platform/internal/domain/identity"
	"github.com/appsnxt/platform/internal/domain/shared"
	"github.com/appsnxt/platform/internal/infrastructure/auth"
	"github.com/appsnxt/platform/internal/infrastructure/config"
	"github.com/appsnxt/platform/internal/infrastructure/telemetry"
)

const testJWTSecret = "test-secret-at-least-32-characters!!"

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

// MockAuthProvider is a mock implementation of AuthProvider
type MockAuthProvider struct {
	mock.Mock
}

func (m *MockAuthProvider) Signup(ctx context.Context, req auth.SignupRequest) (*auth.Session, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Session), args.Error(1)
}

func (m *MockAuthProvider) SignInWithPassword(ctx context.Context, email, password string) (*auth.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Session), args.Error(1)
}

func (m *MockAuthProvider) RefreshSession(ctx context.Context, refreshToken string) (*auth.Session, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Session), args.Error(1)
}

func (m *MockAuthProvider) SignOut(ctx context.Context, accessToken string) error {
	args := m.Called(ctx, accessToken)
	return args.Error(0)
}

func (m *MockAuthProvider) SendPasswordReset(ctx context.Context, email, redirectTo string) error {
	args := m.Called(ctx, email, redirectTo)
	return args.Error(0)
}

func (m *MockAuthProvider) UpdatePassword(ctx context.Context, accessToken, newPassword string) (*auth.ProviderUser, error) {
	args := m.Called(ctx, accessToken, newPassword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.ProviderUser), args.Error(1)
}

// fakeBlacklist records revocations in memory
type fakeBlacklist struct {
	jtis         map[string]time.Duration
	invalidated  map[string]time.Duration
	blacklistErr error
}

func newFakeBlacklist() *fakeBlacklist {
	return &fakeBlacklist{
		jtis:        make(map[string]time.Duration),
		invalidated: make(map[string]time.Duration),
	}
}

func (b *fakeBlacklist) AddToBlacklist(_ context.Context, jti string, ttl time.Duration) error {
	if b.blacklistErr != nil {
		return b.blacklistErr
	}
	b.jtis[jti] = ttl
	return nil
}

func (b *fakeBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := b.jtis[jti]
	return ok, nil
}

func (b *fakeBlacklist) AddUserTokensToBlacklist(_ context.Context, userID string, ttl time.Duration) error {
	b.invalidated[userID] = ttl
	return nil
}

func (b *fakeBlacklist) IsUserTokenInvalidated(_ context.Context, userID string, _ time.Time) (bool, error) {
	_, ok := b.invalidated[userID]
	return ok, nil
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

func testMetrics(t *testing.T) *telemetry.PlatformMetrics {
	t.Helper()
	mp, err := telemetry.NewMeterProvider(context.Background(),
		config.TelemetryConfig{Enabled: false}, "test", telemetry.MeterOptions{}, zap.NewNop())
	require.NoError(t, err)
	metrics, err := telemetry.NewPlatformMetrics(mp)
	require.NoError(t, err)
	return metrics
}

func testVerifier() *auth.TokenVerifier {
	return auth.NewTokenVerifier(config.AuthConfig{
		JWTSecret:   testJWTSecret,
		JWTAudience: "authenticated",
	})
}

func jwtRegisteredClaims(subject string) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   subject,
		Audience:  jwt.ClaimStrings{"authenticated"},
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
}

// mintToken signs an access token the way the hosted provider would
func mintToken(t *testing.T, subject, jti string, expiresIn time.Duration) string {
	t.Helper()
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{"authenticated"},
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
		Role: "authenticated",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}
