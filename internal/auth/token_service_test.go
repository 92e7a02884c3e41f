package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenService_RefreshRoundTrip(t *testing.T) {
	svc := NewTokenService("access-secret", "refresh-secret", time.Hour, time.Hour)

	token, err := svc.GenerateRefreshToken(42)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	userID, err := svc.VerifyRefreshToken(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestTokenService_AccessRoundTrip(t *testing.T) {
	svc := NewTokenService("access-secret", "refresh-secret", time.Hour, time.Hour)

	token, err := svc.GenerateAccessToken(7, "admin")
	assert.NoError(t, err)

	claims, err := svc.VerifyAccessToken(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenService_RefreshTokensAreUnique(t *testing.T) {
	svc := NewTokenService("access-secret", "refresh-secret", time.Hour, time.Hour)

	// Tokens issued back-to-back for the same user share the same
	// second-precision iat; the jti must still make them distinct, or a
	// rotation could hand back the token it was meant to replace.
	first, err := svc.GenerateRefreshToken(42)
	assert.NoError(t, err)
	second, err := svc.GenerateRefreshToken(42)
	assert.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestTokenService_SecretsAreSeparate(t *testing.T) {
	svc := NewTokenService("access-secret", "refresh-secret", time.Hour, time.Hour)

	// An access token must not pass refresh verification and vice versa.
	accessToken, err := svc.GenerateAccessToken(1, "user")
	assert.NoError(t, err)
	_, err = svc.VerifyRefreshToken(accessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	refreshToken, err := svc.GenerateRefreshToken(1)
	assert.NoError(t, err)
	_, err = svc.VerifyAccessToken(refreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	issuer := NewTokenService("access-secret", "refresh-secret", time.Hour, time.Hour)
	other := NewTokenService("access-secret", "another-secret", time.Hour, time.Hour)

	token, err := issuer.GenerateRefreshToken(3)
	assert.NoError(t, err)

	_, err = other.VerifyRefreshToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RejectsExpiredToken(t *testing.T) {
	svc := NewTokenService("access-secret", "refresh-secret", -time.Minute, -time.Minute)

	token, err := svc.GenerateRefreshToken(5)
	assert.NoError(t, err)

	_, err = svc.VerifyRefreshToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RejectsGarbage(t *testing.T) {
	svc := NewTokenService("access-secret", "refresh-secret", time.Hour, time.Hour)

	_, err := svc.VerifyRefreshToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
