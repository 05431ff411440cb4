package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/appsnxt/platform/internal/domain/identity"
	"github.com/appsnxt/platform/internal/domain/shared"
	"github.com/appsnxt/platform/internal/infrastructure/auth"
)

// UserService handles user administration and profile management
type UserService struct {
	userRepo  identity.UserRepository
	blacklist auth.TokenBlacklist
	logger    *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo identity.UserRepository,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		blacklist: blacklist,
		logger:    logger,
	}
}

// List returns users matching the filter with a total count
func (s *UserService) List(ctx context.Context, filter UserListFilter) ([]UserResponse, int64, error) {
	f := s.buildFilter(filter)

	users, err := s.userRepo.FindAll(ctx, f)
	if err != nil {
		s.logger.Error("failed to list users", zap.Error(err))
		return nil, 0, err
	}

	total, err := s.userRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	return ToUserResponses(users), total, nil
}

// GetByID returns a single user
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

// UpdateProfile updates a user's profile fields. Only the fields
// present in the request change.
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*UserResponse, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	fullName := user.FullName
	company := user.Company
	phone := user.Phone
	avatarURL := user.AvatarURL
	if req.FullName != nil {
		fullName = *req.FullName
	}
	if req.Company != nil {
		company = *req.Company
	}
	if req.Phone != nil {
		phone = *req.Phone
	}
	if req.AvatarURL != nil {
		avatarURL = *req.AvatarURL
	}

	if err := user.UpdateProfile(fullName, company, phone, avatarURL); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("failed to update profile",
			zap.String("user_id", id.String()),
			zap.Error(err))
		return nil, err
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

// SetRole changes a user's platform role. An admin cannot change
// their own role, which keeps the last admin from locking everyone
// out.
func (s *UserService) SetRole(ctx context.Context, id, requesterID uuid.UUID, req SetRoleRequest) (*UserResponse, error) {
	if id == requesterID {
		return nil, shared.NewDomainError("SELF_ROLE_CHANGE", "Cannot change your own role")
	}

	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := user.SetRole(identity.UserRole(req.Role)); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user role changed",
		zap.String("user_id", id.String()),
		zap.String("role", req.Role),
		zap.String("changed_by", requesterID.String()))

	resp := ToUserResponse(user)
	return &resp, nil
}

// Activate re-enables a deactivated or suspended account
func (s *UserService) Activate(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := user.Activate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user activated", zap.String("user_id", id.String()))

	resp := ToUserResponse(user)
	return &resp, nil
}

// Deactivate disables an account and revokes its live tokens
func (s *UserService) Deactivate(ctx context.Context, id, requesterID uuid.UUID) (*UserResponse, error) {
	if id == requesterID {
		return nil, shared.NewDomainError("SELF_DEACTIVATE", "Cannot deactivate your own account")
	}

	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := user.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.revokeTokens(ctx, user)

	s.logger.Info("user deactivated", zap.String("user_id", id.String()))

	resp := ToUserResponse(user)
	return &resp, nil
}

// Suspend blocks an account pending review and revokes its live
// tokens
func (s *UserService) Suspend(ctx context.Context, id, requesterID uuid.UUID) (*UserResponse, error) {
	if id == requesterID {
		return nil, shared.NewDomainError("SELF_SUSPEND", "Cannot suspend your own account")
	}

	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := user.Suspend(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.revokeTokens(ctx, user)

	s.logger.Info("user suspended", zap.String("user_id", id.String()))

	resp := ToUserResponse(user)
	return &resp, nil
}

// Delete removes a user projection. The provider account is not
// touched; deleting it requires a privileged provider call done
// through the provider's own console.
func (s *UserService) Delete(ctx context.Context, id, requesterID uuid.UUID) error {
	if id == requesterID {
		return shared.NewDomainError("SELF_DELETE", "Cannot delete your own account")
	}

	user, err := s.findUser(ctx, id)
	if err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete user",
			zap.String("user_id", id.String()),
			zap.Error(err))
		return err
	}
	s.revokeTokens(ctx, user)

	s.logger.Info("user deleted", zap.String("user_id", id.String()))
	return nil
}

func (s *UserService) findUser(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return nil, err
	}
	return user, nil
}

// revokeTokens invalidates all live tokens for the user. Failure is
// logged but does not roll back the state change; middleware still
// refuses the account by status on the next request.
func (s *UserService) revokeTokens(ctx context.Context, user *identity.User) {
	if err := s.blacklist.AddUserTokensToBlacklist(ctx, user.ProviderID, passwordChangeInvalidation); err != nil {
		s.logger.Error("failed to revoke user tokens",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
	}
}

func (s *UserService) buildFilter(filter UserListFilter) shared.Filter {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	f.Search = filter.Search
	if filter.Role != "" {
		f.Filters["role"] = filter.Role
	}
	if filter.Status != "" {
		f.Filters["status"] = filter.Status
	}
	return f
}
