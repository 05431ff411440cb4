package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appsnxt/platform/internal/domain/shared"
)

func TestNewUser(t *testing.T) {
	user, err := NewUser("prov-123", "Jane@Example.com", "Jane Doe")

	require.NoError(t, err)
	assert.Equal(t, "prov-123", user.ProviderID)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, UserRoleUser, user.Role)
	assert.Equal(t, UserStatusActive, user.Status)
	assert.False(t, user.IsSuperuser)
	require.Len(t, user.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeUserSignedUp, user.GetDomainEvents()[0].EventType())
}

func TestNewUser_MissingProviderID(t *testing.T) {
	_, err := NewUser("", "jane@example.com", "")

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_PROVIDER_ID", domainErr.Code)
}

func TestNewUser_InvalidEmail(t *testing.T) {
	for _, email := range []string{"", "no-at-sign", "@example.com", "jane@"} {
		_, err := NewUser("prov-123", email, "")

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr, "email %q", email)
		assert.Equal(t, "INVALID_EMAIL", domainErr.Code)
	}
}

func TestUser_UpdateProfile(t *testing.T) {
	user, err := NewUser("prov-123", "jane@example.com", "Jane")
	require.NoError(t, err)

	require.NoError(t, user.UpdateProfile("Jane Doe", "Acme", "+91-99999", "https://cdn/avatar.png"))

	assert.Equal(t, "Jane Doe", user.FullName)
	assert.Equal(t, "Acme", user.Company)
	assert.Equal(t, 2, user.GetVersion())
}

func TestUser_SetRole(t *testing.T) {
	user, err := NewUser("prov-123", "jane@example.com", "")
	require.NoError(t, err)

	require.NoError(t, user.SetRole(UserRoleAdmin))
	assert.True(t, user.IsAdmin())

	err = user.SetRole(UserRole("owner"))
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_ROLE", domainErr.Code)
}

func TestUser_IsAdmin_Superuser(t *testing.T) {
	user, err := NewUser("prov-123", "jane@example.com", "")
	require.NoError(t, err)

	assert.False(t, user.IsAdmin())
	user.IsSuperuser = true
	assert.True(t, user.IsAdmin())
}

func TestUser_StatusTransitions(t *testing.T) {
	user, err := NewUser("prov-123", "jane@example.com", "")
	require.NoError(t, err)

	require.NoError(t, user.Suspend())
	assert.Equal(t, UserStatusSuspended, user.Status)
	assert.False(t, user.CanSignIn())

	require.NoError(t, user.Activate())
	assert.True(t, user.CanSignIn())

	require.NoError(t, user.Deactivate())
	assert.Equal(t, UserStatusInactive, user.Status)

	err = user.Deactivate()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_INACTIVE", domainErr.Code)
}

func TestUser_RecordLogin(t *testing.T) {
	user, err := NewUser("prov-123", "jane@example.com", "")
	require.NoError(t, err)
	require.Nil(t, user.LastLoginAt)

	user.RecordLogin()

	require.NotNil(t, user.LastLoginAt)
	assert.WithinDuration(t, time.Now(), *user.LastLoginAt, time.Second)
}
