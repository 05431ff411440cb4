package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/appsnxt/platform/internal/infrastructure/auth"
	"github.com/appsnxt/platform/internal/interfaces/http/dto"
)

// JWT context keys
const (
	ClaimsKey     = "auth_claims"
	ProviderIDKey = "auth_provider_id"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// AuthMiddlewareConfig holds configuration for the auth middleware
type AuthMiddlewareConfig struct {
	// Verifier validates provider-issued access tokens
	Verifier *auth.TokenVerifier
	// Blacklist is optional revocation state for signed-out tokens
	Blacklist auth.TokenBlacklist
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that don't require authentication
	SkipPathPrefixes []string
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultAuthConfig returns the default auth middleware configuration
func DefaultAuthConfig(verifier *auth.TokenVerifier) AuthMiddlewareConfig {
	return AuthMiddlewareConfig{
		Verifier: verifier,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/ready",
			"/api/v1/auth/signup",
			"/api/v1/auth/signin",
			"/api/v1/auth/refresh",
			"/api/v1/auth/reset-password",
		},
		SkipPathPrefixes: []string{
			"/swagger",
		},
	}
}

// AuthMiddleware creates authentication middleware with default config
func AuthMiddleware(verifier *auth.TokenVerifier) gin.HandlerFunc {
	return AuthMiddlewareWithConfig(DefaultAuthConfig(verifier))
}

// AuthMiddlewareWithConfig creates authentication middleware with
// custom config. Tokens are verified locally against the provider's
// signing secret; the provider is never called on the request path.
func AuthMiddlewareWithConfig(cfg AuthMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		tokenString, ok := bearerToken(c)
		if !ok {
			abortAuthError(c, cfg, auth.ErrInvalidToken, "missing or malformed authorization header")
			return
		}

		claims, err := cfg.Verifier.Verify(tokenString)
		if err != nil {
			abortAuthError(c, cfg, err, "token verification failed")
			return
		}

		if cfg.Blacklist != nil {
			ctx := c.Request.Context()

			if claims.ID != "" {
				revoked, err := cfg.Blacklist.IsBlacklisted(ctx, claims.ID)
				if err != nil {
					// Fail open: revocation is best effort, availability wins
					if cfg.Logger != nil {
						cfg.Logger.Error("blacklist check failed",
							zap.String("jti", claims.ID),
							zap.Error(err))
					}
				} else if revoked {
					abortAuthError(c, cfg, auth.ErrTokenBlacklisted, "token has been revoked")
					return
				}
			}

			invalidated, err := cfg.Blacklist.IsUserTokenInvalidated(ctx, claims.Subject, claims.GetIssuedAtTime())
			if err != nil {
				if cfg.Logger != nil {
					cfg.Logger.Error("token invalidation check failed",
						zap.String("subject", claims.Subject),
						zap.Error(err))
				}
			} else if invalidated {
				abortAuthError(c, cfg, auth.ErrTokenBlacklisted, "session has been invalidated")
				return
			}
		}

		c.Set(ClaimsKey, claims)
		c.Set(ProviderIDKey, claims.Subject)

		c.Next()
	}
}

// bearerToken extracts the token from the Authorization header
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(AuthHeaderKey)
	if header == "" || !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimPrefix(header, BearerPrefix)
	return token, token != ""
}

// abortAuthError aborts the request with a 401
func abortAuthError(c *gin.Context, cfg AuthMiddlewareConfig, err error, message string) {
	if cfg.Logger != nil {
		cfg.Logger.Warn("authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path))
	}

	code := dto.ErrCodeUnauthorized
	apiMessage := "Authentication required"
	switch err {
	case auth.ErrExpiredToken:
		code = dto.ErrCodeTokenExpired
		apiMessage = "Token has expired"
	case auth.ErrInvalidToken, auth.ErrInvalidClaims, auth.ErrInvalidAudience, auth.ErrMissingSubject:
		code = dto.ErrCodeTokenInvalid
		apiMessage = "Invalid token"
	case auth.ErrTokenNotYetValid:
		code = dto.ErrCodeTokenInvalid
		apiMessage = "Token is not yet valid"
	case auth.ErrTokenBlacklisted:
		code = dto.ErrCodeTokenRevoked
		apiMessage = "Token has been revoked"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, apiMessage))
}

// GetClaims retrieves verified token claims from the context
func GetClaims(c *gin.Context) *auth.Claims {
	if v, exists := c.Get(ClaimsKey); exists {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetProviderID retrieves the provider subject from the context
func GetProviderID(c *gin.Context) string {
	if v, exists := c.Get(ProviderIDKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
