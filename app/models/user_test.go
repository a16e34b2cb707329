package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserHashesPassword(t *testing.T) {
	u, err := CreateUser("Alice", "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	assert.NotEmpty(t, u.UUID)
	assert.Equal(t, ROLE_USER, u.Role)
	assert.Equal(t, STATUS_ACTIVE, u.Status)

	// The plaintext never lands in the record
	assert.NotEqual(t, "s3cret-pass", u.Password)
	assert.True(t, u.CheckPassword("s3cret-pass"))
	assert.False(t, u.CheckPassword("wrong"))
}

func TestCreateUserRejectsInvalidInput(t *testing.T) {
	_, err := CreateUser("Alice", "not-an-email", "s3cret-pass")
	assert.Error(t, err)

	_, err = CreateUser("A", "alice@example.com", "s3cret-pass")
	assert.Error(t, err)
}

func TestRefreshTokenIsValid(t *testing.T) {
	now := time.Now()
	revoked := now.Add(-time.Hour)

	live := RefreshToken{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, live.IsValid(now))

	expired := RefreshToken{ExpiresAt: now.Add(-time.Minute)}
	assert.False(t, expired.IsValid(now))

	dead := RefreshToken{ExpiresAt: now.Add(time.Hour), RevokedAt: &revoked}
	assert.False(t, dead.IsValid(now))
}
