// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"context"
	"time"
)

// # Storage Contracts

// UserRepository defines persistence operations for user accounts.
//
// Implementations must translate storage-level failures into the application
// error taxonomy: a missing row surfaces as a not-found error, a uniqueness
// violation as a conflict, and infrastructure failures as unavailable.
type UserRepository interface {
	// Create persists a new user account.
	Create(ctx context.Context, user *User) error

	// FindByID returns the user with the given ID.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail returns the user with the given email address.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByRefreshTokenHash returns the user whose stored refresh-token
	// digest matches the given hash. At most one user can match because the
	// hash column carries a unique index.
	FindByRefreshTokenHash(ctx context.Context, hash string) (*User, error)

	// ExistsByUsername reports whether a user with the given username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// Update persists changes to the user's profile fields.
	Update(ctx context.Context, user *User) error

	// SetRefreshToken stores a new refresh-token digest and expiry for the
	// user in a single atomic write, replacing any previous session.
	SetRefreshToken(ctx context.Context, userID string, hash string, expiresAt time.Time, updatedAt time.Time) error

	// ClearRefreshToken removes the user's refresh-token state in a single
	// atomic write.
	ClearRefreshToken(ctx context.Context, userID string, updatedAt time.Time) error

	// Delete removes the user account permanently.
	Delete(ctx context.Context, id string) error
}

// LoginThrottle tracks failed login attempts per account to slow down
// credential-stuffing attacks. Implementations are best-effort: the login
// flow treats throttle errors as non-fatal.
type LoginThrottle interface {
	// TooManyAttempts reports whether the account identified by key has
	// exceeded the failure budget, and if so how many seconds remain until
	// the window resets.
	TooManyAttempts(ctx context.Context, key string) (blocked bool, retryAfterSeconds int, err error)

	// RecordFailure increments the failed-attempt counter for the key.
	RecordFailure(ctx context.Context, key string) error

	// Reset clears the failed-attempt counter after a successful login.
	Reset(ctx context.Context, key string) error
}
