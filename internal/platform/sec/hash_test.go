// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPasswordPolicy(t *testing.T) {
	testCases := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "valid", password: "s3cret-Pass!", wantErr: false},
		{name: "minimal valid", password: "abcdef1!", wantErr: false},
		{name: "too short", password: "a1!", wantErr: true},
		{name: "missing digit", password: "password!!", wantErr: true},
		{name: "missing lowercase", password: "PASSWORD1!", wantErr: true},
		{name: "missing symbol", password: "password11", wantErr: true},
		{name: "empty", password: "", wantErr: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			err := CheckPasswordPolicy(testCase.password)
			if testCase.wantErr {
				assert.ErrorIs(t, err, ErrWeakPassword)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHashPasswordRoundTrip(t *testing.T) {
	const password = "s3cret-Pass!"

	hash, err := HashPassword(password)
	require.NoError(t, err)
	require.NotEqual(t, password, hash)

	assert.True(t, CheckPasswordHash(password, hash))
	assert.False(t, CheckPasswordHash("wrong-Pass1!", hash))
}

func TestHashPasswordEnforcesPolicy(t *testing.T) {
	_, err := HashPassword("weak")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestGenerateSecureToken(t *testing.T) {
	first, err := GenerateSecureToken(64)
	require.NoError(t, err)
	second, err := GenerateSecureToken(64)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Len(t, first, 88) // base64 of 64 bytes
}

func TestHashTokenIsDeterministic(t *testing.T) {
	assert.Equal(t, HashToken("secret"), HashToken("secret"))
	assert.NotEqual(t, HashToken("secret"), HashToken("secret2"))
	assert.NotEqual(t, "secret", HashToken("secret"))

	// SHA-256 digest base64-encodes to 44 characters regardless of input size.
	assert.Len(t, HashToken("x"), 44)
}
