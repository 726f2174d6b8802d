// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"context"
	"time"

	"github.com/taibuivan/identra/internal/platform/apperr"
	"github.com/taibuivan/identra/internal/platform/sec"
	"github.com/taibuivan/identra/pkg/pointer"
)

// # Refresh Token Lifecycle

// RefreshTokenManager owns the lifecycle of opaque refresh tokens.
//
// The raw secret is generated from a CSPRNG and handed to the caller exactly
// once; only its SHA-256 digest is ever persisted. Because each user record
// holds at most one digest, issuing a new token atomically invalidates the
// previous session.
type RefreshTokenManager struct {
	users UserRepository

	// now is injectable for deterministic tests.
	now func() time.Time
}

// NewRefreshTokenManager creates a refresh-token manager backed by the given
// user repository.
func NewRefreshTokenManager(users UserRepository) *RefreshTokenManager {
	return &RefreshTokenManager{
		users: users,
		now:   time.Now,
	}
}

// Generate produces a new base64-encoded refresh secret.
func (m *RefreshTokenManager) Generate() (string, error) {
	secret, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return secret, nil
}

// Hash returns the one-way digest of a refresh secret as stored at rest.
func (m *RefreshTokenManager) Hash(secret string) string {
	return sec.HashToken(secret)
}

// IssueFor generates a fresh refresh secret for the user, persists its digest
// and expiry, and returns the raw secret. Any previously active session is
// overwritten by the same write.
//
// # Returns
//   - string: The base64-encoded refresh secret. This is the only time the
//     raw value exists outside the caller.
//   - error: Not-found if the user row vanished, unavailable on storage failure.
func (m *RefreshTokenManager) IssueFor(ctx context.Context, user *User) (string, error) {
	secret, err := m.Generate()
	if err != nil {
		return "", err
	}

	hash := m.Hash(secret)
	issuedAt := m.now().UTC()
	expiresAt := issuedAt.Add(RefreshTokenTTL)

	if err := m.users.SetRefreshToken(ctx, user.ID, hash, expiresAt, issuedAt); err != nil {
		return "", err
	}

	// Mirror the persisted state on the in-memory entity.
	user.RefreshTokenHash = pointer.To(hash)
	user.RefreshTokenExpiresAt = pointer.To(expiresAt)
	user.UpdatedAt = issuedAt

	return secret, nil
}

// Resolve maps a presented refresh secret back to its owning user.
//
// The presented secret is hashed and looked up against the stored digests; no
// raw comparison ever happens. A secret with no matching digest is
// indistinguishable from one that never existed, so both fail the same way.
//
// # Returns
//   - *User: The owning user when the secret matches an unexpired session.
//   - error: Unauthorized when no digest matches, token-expired when the
//     matched session's expiry has passed.
func (m *RefreshTokenManager) Resolve(ctx context.Context, secret string) (*User, error) {
	if secret == "" {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	user, err := m.users.FindByRefreshTokenHash(ctx, m.Hash(secret))
	if err != nil {
		if appError := apperr.As(err); appError != nil && appError.Code == "NOT_FOUND" {
			return nil, apperr.Unauthorized("Invalid refresh token")
		}
		return nil, err
	}

	if user.RefreshTokenExpiresAt == nil || m.now().After(*user.RefreshTokenExpiresAt) {
		return nil, apperr.TokenExpired("Refresh token has expired")
	}

	return user, nil
}

// Revoke clears the user's stored refresh-token state. Revoking a user with
// no active session is a no-op success.
func (m *RefreshTokenManager) Revoke(ctx context.Context, user *User) error {
	if !user.HasActiveSession() {
		return nil
	}

	revokedAt := m.now().UTC()
	if err := m.users.ClearRefreshToken(ctx, user.ID, revokedAt); err != nil {
		return err
	}

	user.RefreshTokenHash = nil
	user.RefreshTokenExpiresAt = nil
	user.UpdatedAt = revokedAt

	return nil
}
