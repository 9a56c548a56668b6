package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/contest-seating-api/internal/models"
	appErrors "github.com/noah-isme/contest-seating-api/pkg/errors"
)

func TestTokenVerifierRoundTrip(t *testing.T) {
	verifier := NewTokenVerifier(TokenConfig{Secret: "secret", Issuer: "gate"})
	token, expiresAt, err := verifier.Issue("u1", "admin@example.com", "Admin", models.RoleAdmin, time.Hour)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := verifier.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestTokenVerifierRejectsWrongIssuerAndSecret(t *testing.T) {
	other := NewTokenVerifier(TokenConfig{Secret: "secret", Issuer: "elsewhere"})
	token, _, err := other.Issue("u1", "", "", models.RoleAdmin, time.Hour)
	require.NoError(t, err)

	_, err = NewTokenVerifier(TokenConfig{Secret: "secret", Issuer: "gate"}).ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	_, err = NewTokenVerifier(TokenConfig{Secret: "other", Issuer: "elsewhere"}).ValidateToken(token)
	require.Error(t, err)
}

func TestTokenVerifierRejectsExpiredAndUnknownRole(t *testing.T) {
	verifier := NewTokenVerifier(TokenConfig{Secret: "secret"})
	verifier.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := verifier.Issue("u1", "", "", models.RoleAdmin, time.Hour)
	require.NoError(t, err)
	verifier.now = time.Now
	_, err = verifier.ValidateToken(expired)
	require.Error(t, err)

	claims := models.JWTClaims{UserID: "u2", Role: "TEACHER", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = verifier.ValidateToken(signed)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
