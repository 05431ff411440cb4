package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/appsnxt/platform/internal/domain/identity"
	"github.com/appsnxt/platform/internal/domain/shared"
	"github.com/appsnxt/platform/internal/infrastructure/auth"
	"github.com/appsnxt/platform/internal/infrastructure/tasks"
	"github.com/appsnxt/platform/internal/infrastructure/telemetry"
)

// passwordChangeInvalidation is how long tokens issued before a
// password change stay marked as revoked. Must cover the longest
// access token lifetime the provider issues.
const passwordChangeInvalidation = 24 * time.Hour

// AuthProvider is the subset of the hosted auth provider API the
// service depends on.
type AuthProvider interface {
	Signup(ctx context.Context, req auth.SignupRequest) (*auth.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*auth.Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*auth.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	SendPasswordReset(ctx context.Context, email, redirectTo string) error
	UpdatePassword(ctx context.Context, accessToken, newPassword string) (*auth.ProviderUser, error)
}

// signupTaskPayload is the body of the welcome task enqueued after a
// successful signup.
type signupTaskPayload struct {
	UserID     string `json:"user_id"`
	ProviderID string `json:"provider_id"`
	Email      string `json:"email"`
}

// AuthService handles authentication flows. Credentials and token
// issuance belong to the hosted provider; the service maintains the
// local user projection and revocation state around it.
type AuthService struct {
	provider  AuthProvider
	userRepo  identity.UserRepository
	verifier  *auth.TokenVerifier
	blacklist auth.TokenBlacklist
	outbox    shared.OutboxRepository
	txManager shared.TransactionManager
	eventBus  shared.EventBus
	metrics   *telemetry.PlatformMetrics
	logger    *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	provider AuthProvider,
	userRepo identity.UserRepository,
	verifier *auth.TokenVerifier,
	blacklist auth.TokenBlacklist,
	outbox shared.OutboxRepository,
	txManager shared.TransactionManager,
	eventBus shared.EventBus,
	metrics *telemetry.PlatformMetrics,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		provider:  provider,
		userRepo:  userRepo,
		verifier:  verifier,
		blacklist: blacklist,
		outbox:    outbox,
		txManager: txManager,
		eventBus:  eventBus,
		metrics:   metrics,
		logger:    logger,
	}
}

// Signup registers an account with the provider and creates the local
// projection. The projection row and the welcome task are written in
// one transaction.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*SessionResponse, error) {
	session, err := s.provider.Signup(ctx, auth.SignupRequest{
		Email:    req.Email,
		Password: req.Password,
		Data: map[string]any{
			"full_name": req.FullName,
			"company":   req.Company,
		},
	})
	if err != nil {
		if isProviderClientError(err) {
			s.logger.Info("signup rejected by auth provider",
				zap.String("email", req.Email),
				zap.Error(err))
			return nil, shared.NewDomainError("SIGNUP_REJECTED", providerMessage(err, "Signup was rejected"))
		}
		s.logger.Error("auth provider signup failed", zap.Error(err))
		return nil, fmt.Errorf("provider signup: %w", err)
	}

	var user *identity.User
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		existing, err := s.userRepo.FindByProviderID(ctx, session.User.ID)
		if err == nil {
			user = existing
			return nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		user, err = identity.NewUser(session.User.ID, session.User.Email, req.FullName)
		if err != nil {
			return err
		}
		user.Company = req.Company
		if err := s.userRepo.Save(ctx, user); err != nil {
			return err
		}
		return s.enqueueSignupTask(ctx, user)
	})
	if err != nil {
		s.logger.Error("failed to create user projection",
			zap.String("provider_id", session.User.ID),
			zap.Error(err))
		return nil, err
	}

	s.publishEvents(ctx, user)
	s.metrics.RecordSignup(ctx)
	s.logger.Info("user signed up",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	resp := ToSessionResponse(session, user)
	return &resp, nil
}

// Signin authenticates against the provider and stamps the login on
// the local projection. Suspended and deactivated accounts are
// refused even when the provider accepts the credentials.
func (s *AuthService) Signin(ctx context.Context, req SigninRequest) (*SessionResponse, error) {
	session, err := s.provider.SignInWithPassword(ctx, req.Email, req.Password)
	if err != nil {
		if isProviderClientError(err) {
			return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
		}
		s.logger.Error("auth provider signin failed", zap.Error(err))
		return nil, fmt.Errorf("provider signin: %w", err)
	}

	user, err := s.userRepo.FindByProviderID(ctx, session.User.ID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		// Provider account without a projection: created out of band,
		// or the signup transaction was lost. Recreate it here.
		user, err = identity.NewUser(session.User.ID, session.User.Email, "")
		if err != nil {
			return nil, err
		}
	}

	if !user.CanSignIn() {
		s.logger.Warn("signin refused for non-active account",
			zap.String("user_id", user.ID.String()),
			zap.String("status", string(user.Status)))
		if user.Status == identity.UserStatusSuspended {
			return nil, shared.NewDomainError("ACCOUNT_SUSPENDED", "Account has been suspended")
		}
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account has been deactivated")
	}

	user.RecordLogin()
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, user)
	s.metrics.RecordSignin(ctx)
	s.logger.Info("user signed in", zap.String("user_id", user.ID.String()))

	resp := ToSessionResponse(session, user)
	return &resp, nil
}

// Signout revokes the presented access token locally and ends the
// provider session. Revocation holds for the token's remaining
// lifetime even if the provider call fails.
func (s *AuthService) Signout(ctx context.Context, accessToken string) error {
	claims, err := s.verifier.Verify(accessToken)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil
		}
		return shared.NewDomainError("INVALID_TOKEN", "Access token is not valid")
	}

	if claims.ID != "" {
		if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
			s.logger.Error("failed to blacklist token",
				zap.String("jti", claims.ID),
				zap.Error(err))
			return err
		}
	}

	if err := s.provider.SignOut(ctx, accessToken); err != nil && !isProviderClientError(err) {
		s.logger.Warn("provider signout failed, token revoked locally", zap.Error(err))
	}

	s.logger.Info("user signed out", zap.String("subject", claims.Subject))
	return nil
}

// Refresh exchanges a refresh token for a new session.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*SessionResponse, error) {
	session, err := s.provider.RefreshSession(ctx, req.RefreshToken)
	if err != nil {
		if isProviderClientError(err) {
			return nil, shared.NewDomainError("INVALID_REFRESH_TOKEN", "Refresh token is expired or revoked")
		}
		s.logger.Error("auth provider refresh failed", zap.Error(err))
		return nil, fmt.Errorf("provider refresh: %w", err)
	}

	user, err := s.userRepo.FindByProviderID(ctx, session.User.ID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		user = nil
	}
	if user != nil && !user.CanSignIn() {
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account can no longer sign in")
	}

	resp := ToSessionResponse(session, user)
	return &resp, nil
}

// ResetPassword asks the provider to send a recovery email. The
// result is the same whether or not the address exists, so the
// endpoint cannot be used to enumerate accounts.
func (s *AuthService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if err := s.provider.SendPasswordReset(ctx, req.Email, req.RedirectTo); err != nil {
		if isProviderClientError(err) {
			s.logger.Debug("password reset rejected by provider", zap.Error(err))
			return nil
		}
		s.logger.Error("password reset request failed", zap.Error(err))
		return fmt.Errorf("provider password reset: %w", err)
	}
	return nil
}

// UpdatePassword sets a new password for the bearer of the access
// token and invalidates every token issued before the change.
func (s *AuthService) UpdatePassword(ctx context.Context, accessToken string, req UpdatePasswordRequest) error {
	providerUser, err := s.provider.UpdatePassword(ctx, accessToken, req.Password)
	if err != nil {
		if isProviderClientError(err) {
			return shared.NewDomainError("PASSWORD_REJECTED", providerMessage(err, "Password was rejected"))
		}
		s.logger.Error("password update failed", zap.Error(err))
		return fmt.Errorf("provider password update: %w", err)
	}

	if err := s.blacklist.AddUserTokensToBlacklist(ctx, providerUser.ID, passwordChangeInvalidation); err != nil {
		s.logger.Error("failed to invalidate tokens after password change",
			zap.String("provider_id", providerUser.ID),
			zap.Error(err))
		return err
	}

	s.logger.Info("password updated", zap.String("provider_id", providerUser.ID))
	return nil
}

// GetMe returns the signed-in user's projection.
func (s *AuthService) GetMe(ctx context.Context, claims *auth.Claims) (*UserResponse, error) {
	user, err := s.userRepo.FindByProviderID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "No account found for this token")
		}
		return nil, err
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

// publishEvents hands the projection's pending events to the in-process
// bus after the transaction has committed
func (s *AuthService) publishEvents(ctx context.Context, user *identity.User) {
	if s.eventBus == nil {
		return
	}
	for _, event := range user.GetDomainEvents() {
		_ = s.eventBus.Publish(ctx, event)
	}
	user.ClearDomainEvents()
}

func (s *AuthService) enqueueSignupTask(ctx context.Context, user *identity.User) error {
	payload, err := json.Marshal(signupTaskPayload{
		UserID:     user.ID.String(),
		ProviderID: user.ProviderID,
		Email:      user.Email,
	})
	if err != nil {
		return fmt.Errorf("marshal signup task payload: %w", err)
	}
	entry := shared.NewOutboxEntry(tasks.TaskUserSignedUp, user.ID, payload)
	return s.outbox.Save(ctx, entry)
}

// isProviderClientError reports whether the provider rejected the
// request as invalid rather than failing internally.
func isProviderClientError(err error) bool {
	var perr *auth.ProviderError
	return errors.As(err, &perr) && perr.IsClientError()
}

// providerMessage extracts the provider's message for client errors,
// falling back when there is none.
func providerMessage(err error, fallback string) string {
	var perr *auth.ProviderError
	if errors.As(err, &perr) && perr.Message != "" {
		return perr.Message
	}
	return fallback
}
