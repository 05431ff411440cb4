package auth

import (
	"testing"
	"time"

	"github.com/appsnxt/platform/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret-at-least-32-chars-long"

func newTestVerifier() *TokenVerifier {
	return NewTokenVerifier(config.AuthConfig{
		JWTSecret:   testSecret,
		JWTAudience: "authenticated",
	})
}

func signTestToken(t *testing.T, claims *Claims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validTestClaims() *Claims {
	now := time.Now()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-1",
			Subject:   "provider-user-1",
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email: "ada@example.com",
		Role:  "authenticated",
	}
}

func TestTokenVerifier_Verify(t *testing.T) {
	verifier := newTestVerifier()

	t.Run("accepts valid token", func(t *testing.T) {
		token := signTestToken(t, validTestClaims(), testSecret)

		claims, err := verifier.Verify(token)

		require.NoError(t, err)
		assert.Equal(t, "provider-user-1", claims.Subject)
		assert.Equal(t, "ada@example.com", claims.Email)
	})

	t.Run("rejects wrong secret", func(t *testing.T) {
		token := signTestToken(t, validTestClaims(), "some-other-secret-that-is-also-long")

		_, err := verifier.Verify(token)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		claims := validTestClaims()
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		token := signTestToken(t, claims, testSecret)

		_, err := verifier.Verify(token)

		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("rejects wrong audience", func(t *testing.T) {
		claims := validTestClaims()
		claims.Audience = jwt.ClaimStrings{"anon"}
		token := signTestToken(t, claims, testSecret)

		_, err := verifier.Verify(token)

		assert.ErrorIs(t, err, ErrInvalidAudience)
	})

	t.Run("rejects missing subject", func(t *testing.T) {
		claims := validTestClaims()
		claims.Subject = ""
		token := signTestToken(t, claims, testSecret)

		_, err := verifier.Verify(token)

		assert.ErrorIs(t, err, ErrMissingSubject)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := verifier.Verify("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestClaims_GetRemainingTTL(t *testing.T) {
	claims := validTestClaims()
	assert.Greater(t, claims.GetRemainingTTL(), 50*time.Minute)

	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	assert.Equal(t, time.Duration(0), claims.GetRemainingTTL())

	claims.ExpiresAt = nil
	assert.Equal(t, time.Duration(0), claims.GetRemainingTTL())
}
