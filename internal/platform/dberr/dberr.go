// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// # Why the constraint is authoritative
//
// Existence pre-checks (email taken? username taken?) are check-then-act
// races under concurrency. The unique constraint at the store boundary is the
// single source of truth: a 23505 violation surfacing here IS the Conflict,
// regardless of what a prior SELECT said.
package dberr

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/identra/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
func Wrap(err error, conflictMessage string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. Unique / constraint violations become structured client errors
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		switch pgError.Code {
		case pgerrcode.UniqueViolation:
			return apperr.Conflict(conflictMessage)
		case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
			return apperr.ValidationError("Stored record would violate data constraints")
		}
	}

	// 3. Caller cancellation propagates as-is; it is not a server fault.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	// 4. Unknown query errors become a retryable Unavailable condition
	return apperr.Unavailable(err)
}
