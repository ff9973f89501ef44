package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Sign("doc-1", "drivers/d1/licence.pdf")
	require.NoError(t, err)

	grant, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", grant.DocumentID)
	assert.Equal(t, "drivers/d1/licence.pdf", grant.Key)
	assert.Equal(t, expiresAt, grant.ExpiresAt)
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Sign("doc-1", "drivers/d1/licence.pdf")
	require.NoError(t, err)

	_, err = NewSignedURLSigner("other", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = signer.Verify("doc-2" + token[len("doc-1"):])
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = signer.Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	token, _, err := signer.Sign("doc-1", "buses/b1/insurance.pdf")
	require.NoError(t, err)

	signer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = signer.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestSignRequiresSecret(t *testing.T) {
	_, _, err := NewSignedURLSigner("", time.Hour).Sign("doc", "key")
	assert.Error(t, err)
}
