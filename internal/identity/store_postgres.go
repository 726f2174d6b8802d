// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/identra/internal/platform/apperr"
	"github.com/taibuivan/identra/internal/platform/dberr"
)

// # PostgreSQL Repository

// PostgresUserRepository is the pgx-backed implementation of [UserRepository].
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates a user repository backed by the given pool.
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// userColumns is the canonical SELECT column list, kept in one place so every
// find method scans the same shape.
const userColumns = `
	id, username, email, firstname, lastname, gender, passwordhash, role,
	refreshtokenhash, refreshtokenexpiresat, createdat, updatedat`

// Create persists a new user account.
//
// # Returns
//   - error: Conflict when the email or derived username is already taken
//     (the unique constraint is authoritative, not any prior existence check).
func (r *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, username, email, firstname, lastname, gender, passwordhash, role,
			refreshtokenhash, refreshtokenexpiresat, createdat, updatedat
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Username, user.Email, user.FirstName, user.LastName,
		user.Gender, user.PasswordHash, user.Role,
		user.RefreshTokenHash, user.RefreshTokenExpiresAt,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Email is already registered")
	}

	return nil
}

// FindByID returns the user with the given ID.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	const query = `SELECT` + userColumns + ` FROM users.account WHERE id = $1`
	return r.findOne(ctx, query, id)
}

// FindByEmail returns the user with the given email address.
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	const query = `SELECT` + userColumns + ` FROM users.account WHERE email = $1`
	return r.findOne(ctx, query, email)
}

// FindByRefreshTokenHash returns the user owning the given refresh-token digest.
func (r *PostgresUserRepository) FindByRefreshTokenHash(ctx context.Context, hash string) (*User, error) {
	const query = `SELECT` + userColumns + ` FROM users.account WHERE refreshtokenhash = $1`
	return r.findOne(ctx, query, hash)
}

// ExistsByUsername reports whether the username is already taken.
func (r *PostgresUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users.account WHERE username = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, username).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "")
	}

	return exists, nil
}

// Update persists the user's profile fields.
//
// Password and refresh-token state are intentionally not touched here; they
// have their own dedicated writes.
func (r *PostgresUserRepository) Update(ctx context.Context, user *User) error {
	const query = `
		UPDATE users.account
		SET firstname = $2, lastname = $3, email = $4, gender = $5, updatedat = $6
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		user.ID, user.FirstName, user.LastName, user.Email, user.Gender, user.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Email is already registered")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

// SetRefreshToken writes the refresh digest and expiry in one atomic UPDATE.
// Both columns change together so the session-state invariant cannot be
// half-applied.
func (r *PostgresUserRepository) SetRefreshToken(ctx context.Context, userID string, hash string, expiresAt time.Time, updatedAt time.Time) error {
	const query = `
		UPDATE users.account
		SET refreshtokenhash = $2, refreshtokenexpiresat = $3, updatedat = $4
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, userID, hash, expiresAt, updatedAt)
	if err != nil {
		return dberr.Wrap(err, "")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

// ClearRefreshToken nulls both refresh columns in one atomic UPDATE.
func (r *PostgresUserRepository) ClearRefreshToken(ctx context.Context, userID string, updatedAt time.Time) error {
	const query = `
		UPDATE users.account
		SET refreshtokenhash = NULL, refreshtokenexpiresat = NULL, updatedat = $2
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, userID, updatedAt)
	if err != nil {
		return dberr.Wrap(err, "")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

// Delete removes the user account permanently.
func (r *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM users.account WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

// findOne runs a single-row query and scans the canonical column shape.
func (r *PostgresUserRepository) findOne(ctx context.Context, query string, args ...any) (*User, error) {
	row := r.pool.QueryRow(ctx, query, args...)

	var user User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.FirstName, &user.LastName,
		&user.Gender, &user.PasswordHash, &user.Role,
		&user.RefreshTokenHash, &user.RefreshTokenExpiresAt,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, dberr.Wrap(err, "")
	}

	return &user, nil
}
