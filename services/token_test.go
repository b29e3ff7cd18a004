package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_SignAndVerify(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	svc, err := NewTokenService()
	require.NoError(t, err)

	token, err := svc.Sign("user-123")
	require.NoError(t, err)

	userID, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestTokenService_RejectsTamperedToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	svc, err := NewTokenService()
	require.NoError(t, err)

	token, err := svc.Sign("user-123")
	require.NoError(t, err)

	_, err = svc.Verify(token + "x")
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "other-secret")
	other, err := NewTokenService()
	require.NoError(t, err)
	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestTokenService_ExpiredToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_EXPIRES_IN", "-1h")
	svc, err := NewTokenService()
	require.NoError(t, err)

	token, err := svc.Sign("user-123")
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.Error(t, err)
}

func TestTokenService_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := NewTokenService()
	require.Error(t, err)
}
