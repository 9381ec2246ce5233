package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_AccessTokenRoundTrip(t *testing.T) {
	m := NewManager("secret")

	token, err := m.GenerateAccessToken("u-1", "tenant-a", "admin", time.Minute)
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "tenant-a", claims.TenantID)
	assert.Equal(t, "admin", claims.Role)
}

func TestManager_RejectsWrongSecret(t *testing.T) {
	token, err := NewManager("secret").GenerateAccessToken("u-1", "tenant-a", "admin", time.Minute)
	require.NoError(t, err)

	_, err = NewManager("other").ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestManager_RejectsExpired(t *testing.T) {
	m := NewManager("secret")
	token, err := m.GenerateAccessToken("u-1", "tenant-a", "admin", -time.Minute)
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestManager_RejectsMissingTenant(t *testing.T) {
	m := NewManager("secret")
	token, err := m.GenerateAccessToken("u-1", "", "admin", time.Minute)
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.ErrorContains(t, err, "no tenant")
}

func TestManager_RejectsRefreshToken(t *testing.T) {
	m := NewManager("secret")
	claims := Claims{
		UserID:   "u-1",
		TenantID: "tenant-a",
		Type:     "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.ErrorContains(t, err, "invalid token type")
}
