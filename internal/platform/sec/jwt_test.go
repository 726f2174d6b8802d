// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSigningKey = "unit-test-signing-key-0123456789"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()

	service, err := NewTokenService(testSigningKey, "identra.test", 15*time.Minute)
	require.NoError(t, err)
	return service
}

func TestNewTokenServiceRejectsBlankSecret(t *testing.T) {
	testCases := []struct {
		name   string
		secret string
	}{
		{name: "empty", secret: ""},
		{name: "whitespace only", secret: "   \t"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := NewTokenService(testCase.secret, "identra.test", time.Minute)
			assert.ErrorIs(t, err, ErrMissingSigningKey)
		})
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	service := newTestTokenService(t)

	signed, err := service.GenerateAccessToken(
		"user-1", "adalovelace", "Ada Lovelace", "ada@example.com", "member",
	)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := service.VerifyToken(signed)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "adalovelace", claims.Username)
	assert.Equal(t, "Ada Lovelace", claims.DisplayName)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "member", claims.Role)
	assert.Equal(t, "identra.test", claims.Issuer)
}

func TestVerifyTokenRejectsWrongKey(t *testing.T) {
	service := newTestTokenService(t)
	otherService, err := NewTokenService("a-completely-different-key", "identra.test", 15*time.Minute)
	require.NoError(t, err)

	signed, err := service.GenerateAccessToken("user-1", "ada", "Ada", "ada@example.com", "member")
	require.NoError(t, err)

	_, err = otherService.VerifyToken(signed)
	assert.Error(t, err)
}

func TestVerifyTokenRejectsTampering(t *testing.T) {
	service := newTestTokenService(t)

	signed, err := service.GenerateAccessToken("user-1", "ada", "Ada", "ada@example.com", "member")
	require.NoError(t, err)

	tampered := signed[:len(signed)-2] + "xx"
	_, err = service.VerifyToken(tampered)
	assert.Error(t, err)
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	service, err := NewTokenService(testSigningKey, "identra.test", -time.Minute)
	require.NoError(t, err)

	signed, err := service.GenerateAccessToken("user-1", "ada", "Ada", "ada@example.com", "member")
	require.NoError(t, err)

	_, err = service.VerifyToken(signed)
	assert.Error(t, err)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	service := newTestTokenService(t)

	_, err := service.VerifyToken("not.a.jwt")
	assert.Error(t, err)
}
