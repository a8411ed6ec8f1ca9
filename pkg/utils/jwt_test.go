package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestGenerateAndParseToken(t *testing.T) {
	j := NewJWT(testSecret, "mini-shop", time.Hour)

	token, expireAt, err := j.GenerateToken(42, "admin")
	require.NoError(t, err)
	require.NotNil(t, expireAt)

	claims, err := j.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	token, _, err := NewJWT(testSecret, "mini-shop", time.Hour).GenerateToken(1, "user")
	require.NoError(t, err)

	_, err = NewJWT("another-secret-another-secret-xx", "mini-shop", time.Hour).ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	j := NewJWT(testSecret, "mini-shop", -time.Minute)
	token, _, err := j.GenerateToken(1, "user")
	require.NoError(t, err)

	_, err = j.ParseToken(token)
	assert.Error(t, err)
}

func TestGenerateTokenWithoutSecret(t *testing.T) {
	_, _, err := NewJWT("", "mini-shop", time.Hour).GenerateToken(1, "user")
	assert.Error(t, err)
}
