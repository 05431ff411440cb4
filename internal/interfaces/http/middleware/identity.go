package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/appsnxt/platform/internal/domain/identity"
	"github.com/appsnxt/platform/internal/domain/shared"
	"github.com/appsnxt/platform/internal/interfaces/http/dto"
)

// User context keys
const (
	CurrentUserKey   = "current_user"
	CurrentUserIDKey = "current_user_id"
	IsAdminKey       = "current_user_is_admin"
)

// UserResolver looks up the local projection for a provider subject
type UserResolver interface {
	FindByProviderID(ctx context.Context, providerID string) (*identity.User, error)
}

// ResolveUser loads the local user projection for the authenticated
// subject and refuses accounts that are no longer active. Must run
// after the auth middleware.
func ResolveUser(resolver UserResolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		providerID := GetProviderID(c)
		if providerID == "" {
			c.Next()
			return
		}

		user, err := resolver.FindByProviderID(c.Request.Context(), providerID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					dto.NewErrorResponse(dto.ErrCodeUnauthorized, "No account found for this token"))
				return
			}
			logger.Error("failed to resolve user",
				zap.String("provider_id", providerID),
				zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				dto.NewErrorResponse(dto.ErrCodeInternal, "Failed to resolve account"))
			return
		}

		if !user.CanSignIn() {
			code := dto.ErrCodeAccountInactive
			message := "Account has been deactivated"
			if user.Status == identity.UserStatusSuspended {
				code = dto.ErrCodeAccountSuspended
				message = "Account has been suspended"
			}
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(code, message))
			return
		}

		c.Set(CurrentUserKey, user)
		c.Set(CurrentUserIDKey, user.ID)
		c.Set(IsAdminKey, user.IsAdmin())

		c.Next()
	}
}

// RequireAdmin refuses requests from non-administrators. Must run
// after ResolveUser.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.ErrCodeForbidden, "Administrator access required"))
			return
		}
		c.Next()
	}
}

// CurrentUser retrieves the resolved user from the context
func CurrentUser(c *gin.Context) *identity.User {
	if v, exists := c.Get(CurrentUserKey); exists {
		if user, ok := v.(*identity.User); ok {
			return user
		}
	}
	return nil
}

// CurrentUserID retrieves the resolved user's ID from the context
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	if v, exists := c.Get(CurrentUserIDKey); exists {
		if id, ok := v.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}

// IsAdmin reports whether the resolved user is an administrator
func IsAdmin(c *gin.Context) bool {
	if v, exists := c.Get(IsAdminKey); exists {
		if admin, ok := v.(bool); ok {
			return admin
		}
	}
	return false
}
