package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/agencyportal/internal/app/models"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	svc := NewSessionService(SessionConfig{SecretKey: "secret", Expiration: time.Hour, TokenIssuer: "agencyportal"})
	agencyID := "a1"
	user := &models.User{ID: "u1", Name: "Priya", Email: "priya@example.com", Role: models.RoleAgency, AgencyID: &agencyID}

	token, expiresAt, err := svc.IssueToken(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleAgency, claims.Role)
	assert.Equal(t, "a1", claims.AgencyID)
}

func TestValidateTokenRejectsExpiredAndForeign(t *testing.T) {
	svc := NewSessionService(SessionConfig{SecretKey: "secret", Expiration: time.Minute})
	token, _, err := svc.IssueToken(&models.User{ID: "u1", Role: models.RoleAdmin})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)

	other := NewSessionService(SessionConfig{SecretKey: "other", Expiration: time.Minute})
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	BcryptCost = bcrypt.MinCost
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "s3cret-pass"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestExtractBearerToken(t *testing.T) {
	tok, err := ExtractBearerToken("Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
