package auth

import (
	"testing"
	"time"

	"eventhub/internal/clock"
	"eventhub/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, h.Verify(hash, "secret1"))
	assert.False(t, h.Verify(hash, "secret2"))
	assert.False(t, h.Verify("not-a-hash", "secret1"))
}

func TestTokenRoundTrip(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer(TokenConfig{Secret: "s3cret", Issuer: "eventhub", Expiration: 30}, clock.NewFixed(now))
	user := &models.User{ID: 42, Name: "Ann", Email: "ann@example.com", Role: models.RoleAdmin}

	token, exp, err := issuer.Issue(user)
	require.NoError(t, err)
	assert.Equal(t, now.Add(30*time.Minute), exp)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "ann@example.com", claims.Email)
}

func TestTokenRejectsExpiredAndForeign(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	user := &models.User{ID: 1, Role: models.RoleAttendee}

	token, _, err := NewTokenIssuer(TokenConfig{Secret: "a", Expiration: 1}, clock.NewFixed(now)).Issue(user)
	require.NoError(t, err)

	later := NewTokenIssuer(TokenConfig{Secret: "a", Expiration: 1}, clock.NewFixed(now.Add(time.Hour)))
	_, err = later.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewTokenIssuer(TokenConfig{Secret: "b", Expiration: 1}, clock.NewFixed(now))
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsNoneAlgorithm(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	claims := jwt.RegisteredClaims{Subject: "1", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenIssuer(TokenConfig{Secret: "a"}, clock.NewFixed(now)).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
