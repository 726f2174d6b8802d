// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/identra/internal/platform/apperr"
)

func TestValidatorPassesOnValidInput(t *testing.T) {
	validator := &Validator{}
	err := validator.
		Required("email", "ada@example.com").
		Email("email", "ada@example.com").
		MinLen("password", "s3cret-Pass!", 8).
		MaxLen("first_name", "Ada", 64).
		UUID("id", "0190a000-0000-7000-8000-000000000001").
		Err()

	assert.NoError(t, err)
	assert.False(t, validator.HasErrors())
}

func TestValidatorCollectsAllFailures(t *testing.T) {
	validator := &Validator{}
	err := validator.
		Required("email", "   ").
		Required("password", "").
		Err()

	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	assert.Len(t, appError.Details, 2)
}

func TestValidatorRules(t *testing.T) {
	testCases := []struct {
		name    string
		run     func(v *Validator) *Validator
		wantErr bool
	}{
		{
			name:    "email invalid format",
			run:     func(v *Validator) *Validator { return v.Email("email", "not-an-email") },
			wantErr: true,
		},
		{
			name:    "email empty is skipped",
			run:     func(v *Validator) *Validator { return v.Email("email", "") },
			wantErr: false,
		},
		{
			name:    "min length too short",
			run:     func(v *Validator) *Validator { return v.MinLen("password", "abc", 8) },
			wantErr: true,
		},
		{
			name:    "max length exceeded",
			run:     func(v *Validator) *Validator { return v.MaxLen("name", "abcdef", 3) },
			wantErr: true,
		},
		{
			name:    "uuid malformed",
			run:     func(v *Validator) *Validator { return v.UUID("id", "not-a-uuid") },
			wantErr: true,
		},
		{
			name:    "one-of rejected",
			run:     func(v *Validator) *Validator { return v.OneOf("gender", "robot", "male", "female", "other") },
			wantErr: true,
		},
		{
			name:    "one-of accepted",
			run:     func(v *Validator) *Validator { return v.OneOf("gender", "other", "male", "female", "other") },
			wantErr: false,
		},
		{
			name:    "custom failed",
			run:     func(v *Validator) *Validator { return v.Custom("age", true, "must be positive") },
			wantErr: true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			err := testCase.run(&Validator{}).Err()
			if testCase.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRequiredError(t *testing.T) {
	err := RequiredError("refresh_token", "Refresh token is required")

	require.NotNil(t, err)
	assert.Equal(t, "VALIDATION_ERROR", err.Code)
	require.Len(t, err.Details, 1)
	assert.Equal(t, "refresh_token", err.Details[0].Field)
}
