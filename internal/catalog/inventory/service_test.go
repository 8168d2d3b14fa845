// Copyright (c) 2026 Bibliora. All rights reserved.
// Author: ngocanh.tran.books@gmail.com

package inventory

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngocanhtran/bibliora/internal/platform/apperr"
	"github.com/ngocanhtran/bibliora/internal/platform/constants"
)

const testBookID = "0190b6f2-1111-7000-8000-000000000001"

type stockKey struct {
	bookID   string
	location string
}

type fakeStockRepo struct {
	rows map[stockKey]*Stock
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{rows: map[stockKey]*Stock{}}
}

func (r *fakeStockRepo) seed(bookID, location string, quantity int) {
	r.rows[stockKey{bookID, location}] = &Stock{
		ID:       "stock-" + location,
		BookID:   bookID,
		Quantity: quantity,
		Location: location,
		Status:   StatusAvailable,
	}
}

func (r *fakeStockRepo) ListByBook(_ context.Context, bookID string) ([]*Stock, error) {
	matches := []*Stock{}
	for key, row := range r.rows {
		if key.bookID == bookID {
			clone := *row
			matches = append(matches, &clone)
		}
	}
	return matches, nil
}

func (r *fakeStockRepo) Adjust(_ context.Context, bookID, location string, delta int) (*Stock, error) {
	row, ok := r.rows[stockKey{bookID, location}]
	if !ok {
		return nil, apperr.NotFound("stock")
	}
	if row.Quantity+delta < 0 {
		return nil, apperr.Conflict("insufficient stock quantity")
	}
	row.Quantity += delta
	clone := *row
	return &clone, nil
}

func (r *fakeStockRepo) SetImportPrice(_ context.Context, bookID, location string, price float64) (*Stock, error) {
	row, ok := r.rows[stockKey{bookID, location}]
	if !ok {
		return nil, apperr.NotFound("stock")
	}
	row.ImportPrice = price
	clone := *row
	return &clone, nil
}

func newTestStockService(repo *fakeStockRepo) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, logger)
}

func TestAdjust_AppliesDeltaAtDefaultLocation(t *testing.T) {
	repo := newFakeStockRepo()
	repo.seed(testBookID, constants.DefaultStockLocation, 10)
	service := newTestStockService(repo)

	stock, err := service.Adjust(context.Background(), testBookID, AdjustInput{Delta: -4}, "staff-1")
	require.NoError(t, err)

	assert.Equal(t, 6, stock.Quantity)
	assert.Equal(t, constants.DefaultStockLocation, stock.Location)
}

func TestAdjust_RejectsZeroDelta(t *testing.T) {
	service := newTestStockService(newFakeStockRepo())

	_, err := service.Adjust(context.Background(), testBookID, AdjustInput{Delta: 0}, "staff-1")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

func TestAdjust_RejectsMalformedBookID(t *testing.T) {
	service := newTestStockService(newFakeStockRepo())

	_, err := service.Adjust(context.Background(), "not-a-uuid", AdjustInput{Delta: 1}, "staff-1")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

func TestAdjust_NeverDrivesQuantityNegative(t *testing.T) {
	repo := newFakeStockRepo()
	repo.seed(testBookID, constants.DefaultStockLocation, 3)
	service := newTestStockService(repo)

	_, err := service.Adjust(context.Background(), testBookID, AdjustInput{Delta: -5}, "staff-1")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	assert.Equal(t, "insufficient stock quantity", apperr.As(err).Message)

	stock, err := service.Adjust(context.Background(), testBookID, AdjustInput{Delta: -3}, "staff-1")
	require.NoError(t, err)
	assert.Equal(t, 0, stock.Quantity)
}

func TestAdjust_UnknownStockIsNotFound(t *testing.T) {
	service := newTestStockService(newFakeStockRepo())

	_, err := service.Adjust(context.Background(), testBookID, AdjustInput{Delta: 1}, "staff-1")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

func TestSetImportPrice_UpdatesRow(t *testing.T) {
	repo := newFakeStockRepo()
	repo.seed(testBookID, "HCM-01", 5)
	service := newTestStockService(repo)

	stock, err := service.SetImportPrice(context.Background(), testBookID, PriceInput{Location: "HCM-01", ImportPrice: 95000}, "staff-1")
	require.NoError(t, err)
	assert.Equal(t, 95000.0, stock.ImportPrice)
}

func TestSetImportPrice_RejectsNegativePrice(t *testing.T) {
	service := newTestStockService(newFakeStockRepo())

	_, err := service.SetImportPrice(context.Background(), testBookID, PriceInput{ImportPrice: -1}, "staff-1")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}
