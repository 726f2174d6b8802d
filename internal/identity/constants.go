// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import "time"

// # Credential Constraints

const (
	// RefreshTokenTTL is the duration a refresh token remains valid.
	// Fixed at 2 days by design; deliberately not user-configurable.
	RefreshTokenTTL = 48 * time.Hour

	// RefreshTokenLength is the byte length of the random refresh secret.
	// 64 bytes = 512 bits of entropy before encoding.
	RefreshTokenLength = 64
)

// # Login Throttling

const (
	// MaxLoginAttempts is the number of failed logins tolerated per account
	// before the throttle kicks in.
	MaxLoginAttempts = 5

	// LoginAttemptWindow is how long failed-attempt counters live.
	LoginAttemptWindow = 15 * time.Minute
)
