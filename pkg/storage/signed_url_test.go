package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)

	token, expiresAt, err := signer.Generate("job-1", "pickups-2024-06.csv")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	jobID, relPath, _, err := signer.Parse(token, false)
	require.NoError(t, err)
	assert.Equal(t, "job-1", jobID)
	assert.Equal(t, "pickups-2024-06.csv", relPath)
}

func TestSignedURLRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)

	token, _, err := signer.Generate("job-1", "pickups-2024-06.csv")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token+"x", false)
	assert.Error(t, err)

	other := NewSignedURLSigner("other-secret", time.Hour)
	_, _, _, err = other.Parse(token, false)
	assert.Error(t, err)
}

func TestSignedURLExpiry(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("job-1", "returns-2024-06.pdf")
	require.NoError(t, err)

	// Rewind the embedded expiry by issuing with a negative-length window.
	expired := &SignedURLSigner{secret: []byte("secret"), ttl: -time.Minute}
	expiredToken, _, err := expired.Generate("job-1", "returns-2024-06.pdf")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(expiredToken, false)
	assert.Error(t, err)

	_, _, _, err = signer.Parse(expiredToken, true)
	assert.NoError(t, err)

	_, _, _, err = signer.Parse(token, false)
	assert.NoError(t, err)
}

func TestSignedURLRequiresInputs(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	_, _, err := signer.Generate("", "file.csv")
	assert.Error(t, err)
	_, _, err = signer.Generate("job-1", "")
	assert.Error(t, err)
}
