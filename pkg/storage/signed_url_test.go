package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Sign("exp-1", "2024-01-07/exp-1.csv")
	require.NoError(t, err)

	claims, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "exp-1", claims.ExportID)
	assert.Equal(t, "2024-01-07/exp-1.csv", claims.File)
	assert.True(t, expiresAt.Equal(claims.ExpiresAt))
}

func TestVerifyRejectsTamperingAndExpiry(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	token, _, err := signer.Sign("exp-1", "a.csv")
	require.NoError(t, err)

	other := NewSignedURLSigner("other", time.Minute)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = signer.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	signer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = signer.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestSignRequiresSecret(t *testing.T) {
	_, _, err := NewSignedURLSigner("", time.Minute).Sign("exp-1", "a.csv")
	assert.Error(t, err)
}
