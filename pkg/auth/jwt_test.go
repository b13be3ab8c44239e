package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, ttl time.Duration) *JWTManager {
	t.Helper()
	manager, err := NewJWTManager(JWTConfig{
		SecretKey: "test-secret-key-for-unit-tests",
		Issuer:    "taskflow-test",
		TokenTTL:  ttl,
	})
	require.NoError(t, err)
	return manager
}

func TestJWTManager_IssueAndValidate(t *testing.T) {
	manager := newTestManager(t, time.Hour)

	token, err := manager.Issue("user-1", "ada@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestJWTManager_RejectsExpiredToken(t *testing.T) {
	manager := newTestManager(t, time.Hour)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: "user-1",
		Email:  "ada@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "taskflow-test",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	token, err := expired.SignedString([]byte("test-secret-key-for-unit-tests"))
	require.NoError(t, err)

	_, err = manager.Validate(token)
	assert.Error(t, err)
}

func TestJWTManager_RejectsForeignSignature(t *testing.T) {
	manager := newTestManager(t, time.Hour)
	other, err := NewJWTManager(JWTConfig{
		SecretKey: "a-completely-different-secret",
		Issuer:    "taskflow-test",
		TokenTTL:  time.Hour,
	})
	require.NoError(t, err)

	token, err := other.Issue("user-1", "ada@example.com")
	require.NoError(t, err)

	_, err = manager.Validate(token)
	assert.Error(t, err)
}

func TestJWTManager_RejectsGarbage(t *testing.T) {
	manager := newTestManager(t, time.Hour)

	_, err := manager.Validate("not.a.token")
	assert.Error(t, err)
}
