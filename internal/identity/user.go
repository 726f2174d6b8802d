// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package identity implements the user identity and credential lifecycle layer.

It defines the core domain entity (User) and the logic for registration,
login, refresh-token management, revocation, and current-session resolution.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to user identity.
*/
package identity

import (
	"time"

	"github.com/taibuivan/identra/internal/platform/sec"
)

// # Domain Entities

// User represents a registered account in the Identra store.
//
// # Refresh Session State
//
// RefreshTokenHash and RefreshTokenExpiresAt are both set or both unset,
// never one without the other. A nil hash means no active session. The two
// fields are only ever written together in a single store update, so a
// half-written session state cannot be observed.
type User struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	FirstName    string       `json:"first_name"`
	LastName     string       `json:"last_name"`
	Gender       string       `json:"gender,omitempty"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	Role         sec.UserRole `json:"role"`

	// One-way digest of the active refresh secret. Never the secret itself.
	RefreshTokenHash      *string    `json:"-"`
	RefreshTokenExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName returns the presentation name derived from the profile fields.
func (u *User) DisplayName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// HasActiveSession reports whether a refresh token is currently stored for
// the account. It says nothing about expiry.
func (u *User) HasActiveSession() bool {
	return u.RefreshTokenHash != nil
}

// # Field Identifiers

// Global field names for validation and identity mapping in the credential domain.
const (
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldFirstName    = "first_name"
	FieldLastName     = "last_name"
	FieldGender       = "gender"
	FieldRefreshToken = "refresh_token"
	FieldAccessToken  = "access_token"
	FieldTokenType    = "token_type"
	FieldExpiresIn    = "expires_in"
	FieldUser         = "user"
	FieldToken        = "token"
	FieldMessage      = "message"
	FieldID           = "id"
)
