// Copyright (c) 2026 Bibliora. All rights reserved.
// Author: ngocanh.tran.books@gmail.com

/*
Package dberr provides a bridge between low-level database errors and
higher-level application errors.

It classifies PostgreSQL SQLSTATE codes (via jackc/pgerrcode) so that the
service layer never inspects driver errors directly:

  - Unique violations become CONFLICT responses. The pre-write uniqueness
    checks in the service layer reduce user-facing collisions, but under
    concurrency the partial unique index is the authoritative guard — the
    losing writer's constraint violation must surface as the same conflict,
    not as an internal failure.
  - Serialization failures and deadlocks are transient: they are wrapped as
    retryable and replayed by [Retry] with bounded backoff.
  - Everything else is wrapped as an internal error and never leaked verbatim.
*/
package dberr

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ngocanhtran/bibliora/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// retryable marks an error as a transient transaction abort.
type retryable struct {
	cause error
}

func (e *retryable) Error() string { return "transient transaction abort: " + e.cause.Error() }
func (e *retryable) Unwrap() error { return e.cause }

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// The action string names the failed operation for server-side logs only.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. SQLSTATE classification
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return conflictFromConstraint(pgErr)
		case pgerrcode.ForeignKeyViolation:
			appError := apperr.ValidationError("A referenced resource does not exist")
			appError.Cause = err
			return appError
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
			return &retryable{cause: err}
		}
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(err)
}

// IsRetryable reports whether err is a transient transaction abort that may
// be replayed safely.
func IsRetryable(err error) bool {
	var r *retryable
	return errors.As(err, &r)
}

// conflictFromConstraint maps a unique-constraint name to a field-specific
// conflict message so racing writers see the same error the fast-path
// uniqueness check would have produced.
func conflictFromConstraint(pgErr *pgconn.PgError) *apperr.AppError {
	appError := apperr.Conflict("Resource already exists")

	switch pgErr.ConstraintName {
	case "book_slug_live_key":
		appError = apperr.Conflict("Slug already exists")
	case "book_isbn_live_key":
		appError = apperr.Conflict("ISBN already exists")
	case "media_publicid_key":
		appError = apperr.Conflict("Media public id already exists")
	}

	appError.Cause = pgErr
	return appError
}

// Retry settings for transient transaction aborts.
const (
	maxAttempts   = 3
	baseBackoff   = 25 * time.Millisecond
	backoffJitter = 25 * time.Millisecond
)

// Retry executes fn, replaying it on transient transaction aborts
// (serialization failure, deadlock) with bounded jittered backoff.
//
// # Contract
//
// fn must be safe to replay: it has to open its own transaction on every
// attempt, so a failed attempt leaves no partial state behind. Non-retryable
// errors are returned immediately.
func Retry(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil || !IsRetryable(err) {
			return err
		}

		if attempt == maxAttempts {
			break
		}

		// Jittered linear backoff keeps racing writers from re-colliding.
		delay := time.Duration(attempt)*baseBackoff + time.Duration(rand.Int63n(int64(backoffJitter)))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return apperr.Internal(err)
}
