package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appsnxt/platform/internal/infrastructure/auth"
	"github.com/appsnxt/platform/internal/infrastructure/config"
)

const testSecret = "middleware-test-secret-0123456789ab"

func testVerifier() *auth.TokenVerifier {
	return auth.NewTokenVerifier(config.AuthConfig{
		JWTSecret:   testSecret,
		JWTAudience: "authenticated",
	})
}

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
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

type stubBlacklist struct {
	revokedJTIs     map[string]bool
	invalidatedSubs map[string]bool
}

func (b *stubBlacklist) AddToBlacklist(context.Context, string, time.Duration) error { return nil }

func (b *stubBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return b.revokedJTIs[jti], nil
}

func (b *stubBlacklist) AddUserTokensToBlacklist(context.Context, string, time.Duration) error {
	return nil
}

func (b *stubBlacklist) IsUserTokenInvalidated(_ context.Context, userID string, _ time.Time) (bool, error) {
	return b.invalidatedSubs[userID], nil
}

func newAuthTestRouter(cfg AuthMiddlewareConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddlewareWithConfig(cfg))
	r.GET("/api/v1/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"subject": GetProviderID(c)})
	})
	r.POST("/api/v1/auth/signin", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	r := newAuthTestRouter(DefaultAuthConfig(testVerifier()))
	token := mintToken(t, "prov-1", "jti-1", time.Hour)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "prov-1")
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	r := newAuthTestRouter(DefaultAuthConfig(testVerifier()))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsExpiredToken(t *testing.T) {
	r := newAuthTestRouter(DefaultAuthConfig(testVerifier()))
	token := mintToken(t, "prov-1", "jti-1", -time.Minute)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_TOKEN_EXPIRED")
}

func TestAuthMiddlewareSkipsConfiguredPaths(t *testing.T) {
	r := newAuthTestRouter(DefaultAuthConfig(testVerifier()))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signin", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddlewareRejectsRevokedToken(t *testing.T) {
	cfg := DefaultAuthConfig(testVerifier())
	cfg.Blacklist = &stubBlacklist{
		revokedJTIs:     map[string]bool{"jti-revoked": true},
		invalidatedSubs: map[string]bool{},
	}
	r := newAuthTestRouter(cfg)
	token := mintToken(t, "prov-1", "jti-revoked", time.Hour)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_TOKEN_REVOKED")
}

func TestAuthMiddlewareRejectsInvalidatedSession(t *testing.T) {
	cfg := DefaultAuthConfig(testVerifier())
	cfg.Blacklist = &stubBlacklist{
		revokedJTIs:     map[string]bool{},
		invalidatedSubs: map[string]bool{"prov-1": true},
	}
	r := newAuthTestRouter(cfg)
	token := mintToken(t, "prov-1", "jti-1", time.Hour)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsTamperedToken(t *testing.T) {
	r := newAuthTestRouter(DefaultAuthConfig(testVerifier()))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/protected", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_TOKEN_INVALID")
}
