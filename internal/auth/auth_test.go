package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	mgr := NewJWTManager("test-secret-at-least-32-characters!!", time.Hour)
	playerID := uuid.New()
	sessionID := uuid.New()

	token, err := mgr.GenerateToken(playerID, "player@example.com", sessionID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := mgr.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, playerID.String(), claims.Subject)
	assert.Equal(t, "player@example.com", claims.Email)
	assert.Equal(t, sessionID.String(), claims.SessionID)
}

func TestJWTManager_WrongSecretRejected(t *testing.T) {
	mgr := NewJWTManager("test-secret-at-least-32-characters!!", time.Hour)
	other := NewJWTManager("another-secret-that-is-also-32-chars", time.Hour)

	token, err := mgr.GenerateToken(uuid.New(), "player@example.com", uuid.New())
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTManager_ExpiredTokenRejected(t *testing.T) {
	mgr := NewJWTManager("test-secret-at-least-32-characters!!", -time.Minute)

	token, err := mgr.GenerateToken(uuid.New(), "player@example.com", uuid.New())
	require.NoError(t, err)

	_, err = mgr.ValidateToken(token)
	assert.Error(t, err)
}

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher()

	digest, err := hasher.Hash("correct-horse-battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse-battery", digest)

	assert.True(t, hasher.Verify("correct-horse-battery", digest))
	assert.False(t, hasher.Verify("wrong-password", digest))
}
