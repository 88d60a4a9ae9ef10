package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestNewJWTServiceRequiresSecret(t *testing.T) {
	_, err := NewJWTService(JWTConfig{})
	require.EqualError(t, err, "jwt: secret must be provided")
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return current }

	svc, err := NewJWTService(JWTConfig{
		Secret:         "super-secret",
		Issuer:         "nutralink",
		Audience:       "directory",
		AccessTokenTTL: time.Hour,
		Clock:          now,
	})
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(AccessTokenInput{
		UserID: "user-123",
		Email:  "buyer@herbs.in",
		Role:   "Admin",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)

	require.Equal(t, "user-123", claims.UserID)
	require.Equal(t, "nutralink", claims.Issuer)
	require.Equal(t, jwt.ClaimStrings{"directory"}, claims.Audience)
	require.True(t, claims.IsAdmin())
	require.Equal(t, "buyer", claims.DisplayName())
	require.True(t, claims.IssuedAt.Time.Equal(current))
	require.True(t, claims.ExpiresAt.Time.Equal(current.Add(time.Hour)))
}

func TestGenerateAccessTokenDefaultsRole(t *testing.T) {
	svc, err := NewJWTService(JWTConfig{Secret: "secret"})
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(AccessTokenInput{UserID: "u1", Name: "Asha"})
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, RoleMember, claims.Role)
	require.False(t, claims.IsAdmin())
	require.Equal(t, "Asha", claims.DisplayName())

	_, err = svc.GenerateAccessToken(AccessTokenInput{UserID: "  "})
	require.Error(t, err)
}

func TestValidateAccessTokenInvalidSignature(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC) }

	issuer, err := NewJWTService(JWTConfig{Secret: "issuer-secret", Clock: now})
	require.NoError(t, err)

	token, err := issuer.GenerateAccessToken(AccessTokenInput{UserID: "user-123"})
	require.NoError(t, err)

	verifier, err := NewJWTService(JWTConfig{Secret: "other-secret", Clock: now})
	require.NoError(t, err)

	_, err = verifier.ValidateAccessToken(token)
	require.True(t, errors.Is(err, jwt.ErrTokenSignatureInvalid))
}

func TestValidateAccessTokenRejectsWrongIssuerAndAudience(t *testing.T) {
	minted, err := NewJWTService(JWTConfig{Secret: "shared", Issuer: "elsewhere", Audience: "other"})
	require.NoError(t, err)
	token, err := minted.GenerateAccessToken(AccessTokenInput{UserID: "user-1"})
	require.NoError(t, err)

	byIssuer, err := NewJWTService(JWTConfig{Secret: "shared", Issuer: "nutralink"})
	require.NoError(t, err)
	_, err = byIssuer.ValidateAccessToken(token)
	require.ErrorIs(t, err, ErrInvalidIssuer)

	byAudience, err := NewJWTService(JWTConfig{Secret: "shared", Audience: "directory"})
	require.NoError(t, err)
	_, err = byAudience.ValidateAccessToken(token)
	require.ErrorIs(t, err, jwt.ErrTokenInvalidAudience)

	_, err = byAudience.ValidateAccessToken(" ")
	require.ErrorIs(t, err, ErrEmptyToken)
}

func TestValidateAccessTokenExpired(t *testing.T) {
	current := time.Date(2024, 1, 1, 14, 0, 0, 0, time.UTC)
	now := func() time.Time { return current }

	svc, err := NewJWTService(JWTConfig{
		Secret:         "secret",
		AccessTokenTTL: time.Minute,
		Clock:          now,
	})
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(AccessTokenInput{UserID: "user-123"})
	require.NoError(t, err)

	current = current.Add(2 * time.Minute)

	_, err = svc.ValidateAccessToken(token)
	require.True(t, errors.Is(err, jwt.ErrTokenExpired))
}
