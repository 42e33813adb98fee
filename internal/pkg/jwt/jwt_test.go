package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAdminToken(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)

	tokenString, expiresAt, err := svc.GenerateAdminToken("ops")
	require.NoError(t, err)
	assert.Greater(t, expiresAt, time.Now().Unix())

	token, err := svc.JWTAuth().Decode(tokenString)
	require.NoError(t, err)
	claims, err := token.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, true, claims["is_admin"])
	assert.Equal(t, TokenTypeAccess, claims["type"])
	assert.Equal(t, "ops", token.Subject())
}

func TestSSEToken(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)

	tokenString, expiresIn, err := svc.GenerateSSEToken("ops")
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	subject, err := svc.ValidateSSEToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "ops", subject)
}

func TestValidateSSEToken_RejectsAccessToken(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)

	access, _, err := svc.GenerateAdminToken("ops")
	require.NoError(t, err)

	_, err = svc.ValidateSSEToken(access)
	assert.Error(t, err)
}

func TestValidateSSEToken_RejectsOtherKey(t *testing.T) {
	issued, _, err := NewJWTService("one", time.Hour).GenerateSSEToken("ops")
	require.NoError(t, err)

	_, err = NewJWTService("two", time.Hour).ValidateSSEToken(issued)
	assert.Error(t, err)
}
