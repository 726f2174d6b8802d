// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via the [identity.TokenProvider] interface.
package sec

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMissingSigningKey is returned by [NewTokenService] when the configured
// signing secret is absent or blank. This is a fatal configuration error:
// main aborts startup rather than serving unsigned identities.
var ErrMissingSigningKey = errors.New("sec: signing key must not be empty")

// AuthClaims represents the payload embedded inside a JWT Access Token.
//
// # Why custom claims?
//
// By embedding the UserID, Email, and Role directly inside the JWT,
// the [middleware.Authenticate] can reconstruct the active user context
// WITHOUT querying the database on every single API request. This provides
// massive read-scalability.
//
// # Statelessness
//
// Claims carry no linkage to the refresh token that co-issued them. Revoking
// a refresh token therefore does not invalidate in-flight access tokens;
// they remain trusted until their natural expiry. Accepted behavior.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	UserID      string `json:"uid"`
	Username    string `json:"unm"`
	DisplayName string `json:"dnm"`
	Email       string `json:"eml"`
	Role        string `json:"rol"`
}

// TokenService handles generation and verification of JWT tokens using HS256.
//
// # Key Material
//
// The symmetric secret is injected once at construction and never mutated.
// Concurrent reads are safe without synchronization.
type TokenService struct {
	secret     []byte
	issuer     string
	timeToLive time.Duration
}

// NewTokenService creates a new TokenService from the configured secret.
//
// It fails with [ErrMissingSigningKey] if the secret is empty or blank —
// there is no fallback key and no retry.
func NewTokenService(secret, issuer string, timeToLive time.Duration) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSigningKey
	}

	return &TokenService{
		secret:     []byte(secret),
		issuer:     issuer,
		timeToLive: timeToLive,
	}, nil
}

// GenerateAccessToken creates a new signed JWT access token for a user.
//
// The expiry is always now + the configured lifetime; issuance has no side
// effects and never touches the store.
func (service *TokenService) GenerateAccessToken(userID, username, displayName, email, role string) (string, error) {
	currentTime := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(service.timeToLive)),
		},
		UserID:      userID,
		Username:    username,
		DisplayName: displayName,
		Email:       email,
		Role:        role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// VerifyToken checks the signature and validity of a JWT string.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	return claims, nil
}

// AccessTokenTTL exposes the configured lifetime for transport headers
// (e.g. the expires_in field of token responses).
func (service *TokenService) AccessTokenTTL() time.Duration {
	return service.timeToLive
}
