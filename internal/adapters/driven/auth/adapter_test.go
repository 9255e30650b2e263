package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	v := NewVerifier("test-secret")
	now := time.Now()

	token, err := v.GenerateToken(&Claims{
		UserID:    "user-1",
		Email:     "test@example.com",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	})
	require.NoError(t, err)

	claims, err := v.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "test@example.com", claims.Email)
	assert.Equal(t, now.Unix(), claims.IssuedAt)
}

func TestParseToken_WrongSecret(t *testing.T) {
	a := NewVerifier("secret-a")
	b := NewVerifier("secret-b")
	now := time.Now()

	token, err := a.GenerateToken(&Claims{
		UserID:    "user-1",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	})
	require.NoError(t, err)

	_, err = b.ParseToken(token)
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	v := NewVerifier("test-secret")
	now := time.Now()

	token, err := v.GenerateToken(&Claims{
		UserID:    "user-1",
		IssuedAt:  now.Add(-2 * time.Hour).Unix(),
		ExpiresAt: now.Add(-time.Hour).Unix(),
	})
	require.NoError(t, err)

	_, err = v.ParseToken(token)
	assert.Error(t, err)
}

func TestParseToken_RejectsUnsignedAlg(t *testing.T) {
	v := NewVerifier("test-secret")

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": "user-1"})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = v.ParseToken(token)
	assert.Error(t, err)
}

func TestParseToken_Garbage(t *testing.T) {
	v := NewVerifier("test-secret")

	_, err := v.ParseToken("not-a-token")
	assert.Error(t, err)
}
