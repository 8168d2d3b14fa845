// Copyright (c) 2026 Bibliora. All rights reserved.
// Author: ngocanh.tran.books@gmail.com

package dberr_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngocanhtran/bibliora/internal/platform/apperr"
	"github.com/ngocanhtran/bibliora/internal/platform/dberr"
)

/*
TestWrap_Classification checks the SQLSTATE to AppError mapping.
*/
func TestWrap_Classification(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:     "no_rows_is_not_found",
			err:      pgx.ErrNoRows,
			wantCode: "NOT_FOUND",
		},
		{
			name:        "slug_unique_violation_is_conflict",
			err:         &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "book_slug_live_key"},
			wantCode:    "CONFLICT",
			wantMessage: "Slug already exists",
		},
		{
			name:        "isbn_unique_violation_is_conflict",
			err:         &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "book_isbn_live_key"},
			wantCode:    "CONFLICT",
			wantMessage: "ISBN already exists",
		},
		{
			name:     "unknown_unique_violation_is_generic_conflict",
			err:      &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "something_else"},
			wantCode: "CONFLICT",
		},
		{
			name:     "foreign_key_violation_is_validation",
			err:      &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation},
			wantCode: "VALIDATION_ERROR",
		},
		{
			name:     "unknown_error_is_internal",
			err:      errors.New("connection reset"),
			wantCode: "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := dberr.Wrap(tt.err, "test_action")
			require.Error(t, wrapped)

			appError := apperr.As(wrapped)
			require.NotNil(t, appError)
			assert.Equal(t, tt.wantCode, appError.Code)

			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, appError.Message)
			}
		})
	}
}

/*
TestWrap_Retryable checks that serialization failures and deadlocks are
classified as transient.
*/
func TestWrap_Retryable(t *testing.T) {
	serialization := dberr.Wrap(&pgconn.PgError{Code: pgerrcode.SerializationFailure}, "commit")
	deadlock := dberr.Wrap(&pgconn.PgError{Code: pgerrcode.DeadlockDetected}, "commit")
	conflict := dberr.Wrap(&pgconn.PgError{Code: pgerrcode.UniqueViolation}, "commit")

	assert.True(t, dberr.IsRetryable(serialization))
	assert.True(t, dberr.IsRetryable(deadlock))
	assert.False(t, dberr.IsRetryable(conflict))
	assert.False(t, dberr.IsRetryable(nil))
}

/*
TestRetry_ReplaysTransientAborts verifies the bounded replay loop.
*/
func TestRetry_ReplaysTransientAborts(t *testing.T) {
	transient := dberr.Wrap(&pgconn.PgError{Code: pgerrcode.SerializationFailure}, "commit")

	t.Run("succeeds_on_second_attempt", func(t *testing.T) {
		attempts := 0
		err := dberr.Retry(context.Background(), func(ctx context.Context) error {
			attempts++
			if attempts == 1 {
				return transient
			}
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 2, attempts)
	})

	t.Run("gives_up_after_max_attempts", func(t *testing.T) {
		attempts := 0
		err := dberr.Retry(context.Background(), func(ctx context.Context) error {
			attempts++
			return transient
		})

		require.Error(t, err)
		assert.Equal(t, 3, attempts)

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "INTERNAL_ERROR", appError.Code)
	})

	t.Run("does_not_replay_permanent_errors", func(t *testing.T) {
		attempts := 0
		conflict := apperr.Conflict("Slug already exists")
		err := dberr.Retry(context.Background(), func(ctx context.Context) error {
			attempts++
			return conflict
		})

		assert.Equal(t, 1, attempts)
		assert.Equal(t, conflict, apperr.As(err))
	})
}
