package identity

import (
	"strings"
	"time"

	"github.com/appsnxt/platform/internal/domain/shared"
)

// UserRole represents the access level of a user
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
	UserRoleGuest UserRole = "guest"
)

// IsValid returns true for a known role
func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleAdmin, UserRoleUser, UserRoleGuest:
		return true
	}
	return false
}

// UserStatus represents the account state of a user
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

// User is the local projection of an account held by the hosted auth
// provider. Credentials and sessions live with the provider; this row
// carries profile data and platform-level role/status.
type User struct {
	shared.BaseAggregateRoot
	ProviderID  string     `gorm:"type:varchar(100);not null;uniqueIndex"`
	Email       string     `gorm:"type:varchar(200);not null;uniqueIndex"`
	FullName    string     `gorm:"type:varchar(200)"`
	Company     string     `gorm:"type:varchar(200)"`
	Phone       string     `gorm:"type:varchar(50)"`
	AvatarURL   string     `gorm:"type:varchar(500)"`
	Role        UserRole   `gorm:"type:varchar(20);not null;default:'user'"`
	Status      UserStatus `gorm:"type:varchar(20);not null;default:'active'"`
	IsSuperuser bool       `gorm:"not null;default:false"`
	LastLoginAt *time.Time
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a local projection for a provider account
func NewUser(providerID, email, fullName string) (*User, error) {
	if providerID == "" {
		return nil, shared.NewDomainError("INVALID_PROVIDER_ID", "Auth provider subject is required")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProviderID:        providerID,
		Email:             strings.ToLower(email),
		FullName:          fullName,
		Role:              UserRoleUser,
		Status:            UserStatusActive,
	}

	user.AddDomainEvent(NewUserSignedUpEvent(user))

	return user, nil
}

// UpdateProfile updates the user's profile fields
func (u *User) UpdateProfile(fullName, company, phone, avatarURL string) error {
	if len(fullName) > 200 || len(company) > 200 {
		return shared.NewDomainError("INVALID_PROFILE", "Name and company cannot exceed 200 characters")
	}
	if len(avatarURL) > 500 {
		return shared.NewDomainError("INVALID_PROFILE", "Avatar URL cannot exceed 500 characters")
	}

	u.FullName = fullName
	u.Company = company
	u.Phone = phone
	u.AvatarURL = avatarURL
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// SetRole changes the user's platform role
func (u *User) SetRole(role UserRole) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Role must be one of: admin, user, guest")
	}

	u.Role = role
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// RecordLogin stamps the last login time
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

// Activate enables a deactivated account
func (u *User) Activate() error {
	if u.Status == UserStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "User is already active")
	}

	u.Status = UserStatusActive
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// Deactivate disables the account
func (u *User) Deactivate() error {
	if u.Status == UserStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "User is already inactive")
	}

	u.Status = UserStatusInactive
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// Suspend blocks the account pending review
func (u *User) Suspend() error {
	if u.Status == UserStatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "User is already suspended")
	}

	u.Status = UserStatusSuspended
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// IsAdmin reports whether the user has administrative access
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin || u.IsSuperuser
}

// CanSignIn reports whether the account may authenticate
func (u *User) CanSignIn() bool {
	return u.Status == UserStatusActive
}

// validateEmail performs a light shape check; the hosted provider is the
// authority on deliverability
func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return shared.NewDomainError("INVALID_EMAIL", "Email format is invalid")
	}
	return nil
}
