// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/taibuivan/identra/internal/platform/apperr"
	"github.com/taibuivan/identra/internal/platform/ctxutil"
	"github.com/taibuivan/identra/internal/platform/sec"
	"github.com/taibuivan/identra/pkg/slug"
	"github.com/taibuivan/identra/pkg/uuidv7"
)

// # Service Contracts

// TokenProvider issues signed access tokens for authenticated users.
type TokenProvider interface {
	GenerateAccessToken(userID, username, displayName, email, role string) (string, error)
	AccessTokenTTL() time.Duration
}

// # Inputs and Outputs

// RegisterInput carries the fields needed to create a new account.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Gender    string
}

// LoginInput carries the credentials presented at login.
type LoginInput struct {
	Email    string
	Password string
}

// UpdateInput carries the mutable profile fields. Password and refresh-token
// state are deliberately excluded; they change only through their own flows.
type UpdateInput struct {
	FirstName string
	LastName  string
	Email     string
	Gender    string
}

// LoginSession is the result of a successful login: a signed access token
// plus the freshly issued refresh secret.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}

// RefreshedSession is the result of a successful token refresh. The refresh
// secret itself is not rotated, so it is not part of the result.
type RefreshedSession struct {
	AccessToken string
	User        *User
}

// RevokeConfirmation echoes the revoked token back to the caller.
type RevokeConfirmation struct {
	Token   string
	Message string
}

// # Credential Service

// Service implements the user identity and credential lifecycle operations.
type Service struct {
	users         UserRepository
	refreshTokens *RefreshTokenManager
	tokenProvider TokenProvider
	throttle      LoginThrottle
	logger        *slog.Logger

	now func() time.Time
}

// NewService wires the credential service with its collaborators.
//
// # Parameters
//   - users: User account persistence.
//   - refreshTokens: Refresh-token lifecycle manager.
//   - tokenProvider: Signed access-token issuer.
//   - throttle: Failed-login throttle. May be nil, in which case throttling
//     is disabled.
//   - logger: Structured logger for service-level events.
func NewService(
	users UserRepository,
	refreshTokens *RefreshTokenManager,
	tokenProvider TokenProvider,
	throttle LoginThrottle,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:         users,
		refreshTokens: refreshTokens,
		tokenProvider: tokenProvider,
		throttle:      throttle,
		logger:        logger,
		now:           time.Now,
	}
}

// Register creates a new user account.
//
// The email must be unused; the check here gives a friendly error early, but
// the database unique constraint is the authoritative guard against races.
// The username is derived from the profile name, never chosen by the caller.
//
// # Returns
//   - *User: The created account with its derived username.
//   - error: Conflict on duplicate email, validation error on weak password.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	email := normalizeEmail(input.Email)

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("Email is already registered")
	} else if appError := apperr.As(err); appError == nil || appError.Code != "NOT_FOUND" {
		return nil, err
	}

	passwordHash, err := sec.HashPassword(input.Password)
	if err != nil {
		if errors.Is(err, sec.ErrWeakPassword) {
			return nil, apperr.ValidationError("Password does not meet the policy", apperr.FieldError{
				Field:   FieldPassword,
				Message: err.Error(),
			})
		}
		return nil, apperr.Internal(err)
	}

	username, err := s.deriveUsername(ctx, input.FirstName, input.LastName)
	if err != nil {
		return nil, err
	}

	createdAt := s.now().UTC()
	user := &User{
		ID:           uuidv7.New(),
		Username:     username,
		Email:        email,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Gender:       strings.TrimSpace(input.Gender),
		PasswordHash: passwordHash,
		Role:         sec.RoleMember,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(ctx).Info("user_registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login authenticates an email/password pair and starts a new session.
//
// An unknown email and a wrong password produce the same error, so a caller
// cannot probe which addresses are registered. Issuing the new refresh token
// overwrites any previous session for the account.
//
// # Returns
//   - *LoginSession: Access token, refresh secret, and the user.
//   - error: Unauthorized on bad credentials, rate-limited when throttled.
func (s *Service) Login(ctx context.Context, input LoginInput) (*LoginSession, error) {
	email := normalizeEmail(input.Email)
	logger := ctxutil.GetLogger(ctx)

	if s.throttle != nil {
		blocked, retryAfter, err := s.throttle.TooManyAttempts(ctx, email)
		if err != nil {
			// Throttle is best-effort; never fail a login over it.
			logger.Warn("login_throttle_check_failed", slog.Any("error", err))
		} else if blocked {
			return nil, apperr.RateLimited(retryAfter)
		}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if appError := apperr.As(err); appError != nil && appError.Code == "NOT_FOUND" {
			s.recordLoginFailure(ctx, email)
			return nil, apperr.Unauthorized("Invalid email or password")
		}
		return nil, err
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		s.recordLoginFailure(ctx, email)
		return nil, apperr.Unauthorized("Invalid email or password")
	}

	accessToken, err := s.tokenProvider.GenerateAccessToken(
		user.ID, user.Username, user.DisplayName(), user.Email, string(user.Role),
	)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	refreshSecret, err := s.refreshTokens.IssueFor(ctx, user)
	if err != nil {
		return nil, err
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			logger.Warn("login_throttle_reset_failed", slog.Any("error", err))
		}
	}

	logger.Info("user_logged_in", slog.String("user_id", user.ID))

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshSecret,
		RefreshTokenExpiresAt: *user.RefreshTokenExpiresAt,
		User:                  user,
	}, nil
}

// Refresh exchanges a valid refresh secret for a new access token.
//
// The refresh secret is not rotated: the same secret keeps working until it
// expires or is revoked. Identity comes entirely from the stored digest; no
// access token is consulted.
//
// # Returns
//   - *RefreshedSession: A new signed access token and the owning user.
//   - error: Unauthorized when the secret matches nothing, token-expired
//     when the session has lapsed.
func (s *Service) Refresh(ctx context.Context, refreshSecret string) (*RefreshedSession, error) {
	user, err := s.refreshTokens.Resolve(ctx, refreshSecret)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.tokenProvider.GenerateAccessToken(
		user.ID, user.Username, user.DisplayName(), user.Email, string(user.Role),
	)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &RefreshedSession{
		AccessToken: accessToken,
		User:        user,
	}, nil
}

// Revoke invalidates the session owned by the presented refresh secret.
//
// A secret that matches no stored digest is indistinguishable from one that
// was already revoked, so both return success: revocation is idempotent. An
// expired-but-still-stored session fails distinctly so the caller knows the
// token lapsed rather than never existed.
//
// # Returns
//   - *RevokeConfirmation: Echo of the revoked token.
//   - error: Token-expired when the matched session's expiry has passed.
func (s *Service) Revoke(ctx context.Context, refreshSecret string) (*RevokeConfirmation, error) {
	confirmation := &RevokeConfirmation{
		Token:   refreshSecret,
		Message: "Refresh token revoked successfully",
	}

	user, err := s.refreshTokens.Resolve(ctx, refreshSecret)
	if err != nil {
		if appError := apperr.As(err); appError != nil && appError.Code == "UNAUTHORIZED" {
			// Already revoked (or never issued): no-op success.
			return confirmation, nil
		}
		return nil, err
	}

	if err := s.refreshTokens.Revoke(ctx, user); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(ctx).Info("refresh_token_revoked", slog.String("user_id", user.ID))

	return confirmation, nil
}

// CurrentUser loads the full profile of the authenticated caller.
//
// The caller's identity comes from the verified access-token claims on the
// context; the profile itself is always re-read from the store so the caller
// sees current data, not a token-time snapshot.
func (s *Service) CurrentUser(ctx context.Context) (*User, error) {
	claims := ctxutil.GetAuthUser(ctx)
	if claims == nil || strings.TrimSpace(claims.UserID) == "" {
		return nil, apperr.Unauthorized("Missing identity claims")
	}

	return s.users.FindByID(ctx, claims.UserID)
}

// GetByID returns the user with the given ID.
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.users.FindByID(ctx, id)
}

// Update modifies a user's profile fields.
//
// Only name, email, and gender are updatable here. The database unique
// constraint turns an email collision into a conflict error.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.FirstName = strings.TrimSpace(input.FirstName)
	user.LastName = strings.TrimSpace(input.LastName)
	user.Email = normalizeEmail(input.Email)
	user.Gender = strings.TrimSpace(input.Gender)
	user.UpdatedAt = s.now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(ctx).Info("user_updated", slog.String("user_id", user.ID))

	return user, nil
}

// Delete removes a user account permanently. Deleting an unknown ID fails
// with a not-found error.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	ctxutil.GetLogger(ctx).Info("user_deleted", slog.String("user_id", id))

	return nil
}

// # Internal Helpers

// deriveUsername builds a unique username from the profile name.
//
// The base is the lowercased, diacritic-stripped concatenation of first and
// last name with everything non-alphanumeric removed. On collision a numeric
// suffix is probed sequentially: base, base1, base2, and so on.
func (s *Service) deriveUsername(ctx context.Context, firstName, lastName string) (string, error) {
	base := slug.Compact(firstName + lastName)
	if base == "" {
		base = "user"
	}

	candidate := base
	for suffix := 1; ; suffix++ {
		taken, err := s.users.ExistsByUsername(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(suffix)
	}
}

// recordLoginFailure bumps the throttle counter, best-effort.
func (s *Service) recordLoginFailure(ctx context.Context, email string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		ctxutil.GetLogger(ctx).Warn("login_throttle_record_failed", slog.Any("error", err))
	}
}

// normalizeEmail lowercases and trims an email for lookup and storage.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
