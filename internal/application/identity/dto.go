package identity

import (
	"time"

	"github.com/appsnxt/platform/internal/domain/identity"
	"github.com/appsnxt/platform/internal/infrastructure/auth"
)

// SignupRequest carries new account registration input
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	FullName string `json:"full_name" binding:"max=200"`
	Company  string `json:"company" binding:"max=200"`
}

// SigninRequest carries credential signin input
type SigninRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest exchanges a refresh token for a new session
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ResetPasswordRequest asks the provider to mail a recovery link
type ResetPasswordRequest struct {
	Email      string `json:"email" binding:"required,email"`
	RedirectTo string `json:"redirect_to" binding:"omitempty,url"`
}

// UpdatePasswordRequest sets a new password for the signed-in user
type UpdatePasswordRequest struct {
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// UpdateProfileRequest updates a user's own profile fields
type UpdateProfileRequest struct {
	FullName  *string `json:"full_name" binding:"omitempty,max=200"`
	Company   *string `json:"company" binding:"omitempty,max=200"`
	Phone     *string `json:"phone" binding:"omitempty,max=50"`
	AvatarURL *string `json:"avatar_url" binding:"omitempty,max=500"`
}

// SetRoleRequest changes a user's platform role
type SetRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin user guest"`
}

// UserListFilter carries user listing parameters
type UserListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=email full_name created_at last_login_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string `form:"search"`
	Role     string `form:"role" binding:"omitempty,oneof=admin user guest"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive suspended"`
}

// UserResponse is the API representation of a user
type UserResponse struct {
	ID          string     `json:"id"`
	ProviderID  string     `json:"provider_id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Company     string     `json:"company,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	AvatarURL   string     `json:"avatar_url,omitempty"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	IsSuperuser bool       `json:"is_superuser"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SessionResponse is the token bundle handed to clients after signup,
// signin and refresh
type SessionResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type"`
	ExpiresIn    int           `json:"expires_in"`
	ExpiresAt    int64         `json:"expires_at"`
	User         *UserResponse `json:"user,omitempty"`
}

// ToUserResponse converts a domain user to a response DTO
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID.String(),
		ProviderID:  u.ProviderID,
		Email:       u.Email,
		FullName:    u.FullName,
		Company:     u.Company,
		Phone:       u.Phone,
		AvatarURL:   u.AvatarURL,
		Role:        string(u.Role),
		Status:      string(u.Status),
		IsSuperuser: u.IsSuperuser,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// ToUserResponses converts a slice of users to response DTOs
func ToUserResponses(users []identity.User) []UserResponse {
	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = ToUserResponse(&users[i])
	}
	return responses
}

// ToSessionResponse converts a provider session to a response DTO,
// attaching the local projection when available
func ToSessionResponse(session *auth.Session, user *identity.User) SessionResponse {
	resp := SessionResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		TokenType:    session.TokenType,
		ExpiresIn:    session.ExpiresIn,
		ExpiresAt:    session.ExpiresAt,
	}
	if user != nil {
		u := ToUserResponse(user)
		resp.User = &u
	}
	return resp
}
