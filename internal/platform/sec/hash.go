// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// ErrWeakPassword is returned by [HashPassword] when the candidate password
// violates the account password policy. Services map it to a field-level
// validation error; the policy lives here so that no caller can bypass it.
var ErrWeakPassword = errors.New("sec: password does not meet the policy")

// # Password Credential Verifier

// Policy: minimum 8 characters, at least one digit, one lowercase letter,
// and one non-alphanumeric character.
const minPasswordLength = 8

// CheckPasswordPolicy validates a candidate password against the policy.
func CheckPasswordPolicy(plainTextPassword string) error {
	var hasDigit, hasLower, hasSymbol bool
	for _, r := range plainTextPassword {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case !unicode.IsLetter(r) && !unicode.IsNumber(r):
			hasSymbol = true
		}
	}

	if len(plainTextPassword) < minPasswordLength || !hasDigit || !hasLower || !hasSymbol {
		return ErrWeakPassword
	}

	return nil
}

// HashPassword hashes a plain-text password using the bcrypt algorithm.
//
// The policy check runs first: a weak password fails with [ErrWeakPassword]
// before any hashing work is done.
func HashPassword(plainTextPassword string) (string, error) {
	if err := CheckPasswordPolicy(plainTextPassword); err != nil {
		return "", err
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version.
// bcrypt performs the comparison in constant time.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}

// # Opaque Secrets

// GenerateSecureToken produces a cryptographically secure random secret of
// byteLength raw bytes, base64-encoded for transport.
//
// # Entropy
//
// crypto/rand is mandatory here — refresh secrets are bearer credentials and
// a guessable generator would be equivalent to storing plaintext passwords.
func GenerateSecureToken(byteLength int) (string, error) {
	buffer := make([]byte, byteLength)
	if _, err := rand.Read(buffer); err != nil {
		return "", fmt.Errorf("sec: failed to generate secure token: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buffer), nil
}

// HashToken produces the deterministic one-way digest of an opaque secret.
//
// SHA-256 over the encoded secret, base64 encoded. The digest is what gets
// persisted and what lookups compare against; the secret itself never
// touches storage, so a store compromise does not leak usable tokens.
func HashToken(token string) string {
	digest := sha256.Sum256([]byte(token))
	return base64.StdEncoding.EncodeToString(digest[:])
}
