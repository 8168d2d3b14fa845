// Copyright (c) 2026 Bibliora. All rights reserved.
// Author: ngocanh.tran.books@gmail.com

/*
Package inventory exposes warehouse-facing stock reads and adjustments.

Stock rows are created by the book module when an entry is added; this
package only moves quantities afterwards. Lifecycle flips (available vs
inactive) belong to the book's soft-delete/restore transactions and are out
of reach here on purpose.
*/
package inventory

import (
	"context"
	"log/slog"

	"github.com/ngocanhtran/bibliora/internal/platform/constants"
	"github.com/ngocanhtran/bibliora/internal/platform/validate"
)

// Service handles stock reads and quantity adjustments.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs the inventory service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// FindByBook returns all stock rows for a book, ordered by location.
func (service *Service) FindByBook(context context.Context, bookID string) ([]*Stock, error) {
	validator := validate.New().UUID("book_id", bookID)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	return service.repo.ListByBook(context, bookID)
}

// AdjustInput describes one quantity movement.
type AdjustInput struct {
	Location string `json:"location"`
	Delta    int    `json:"delta"`
}

// Adjust applies a signed quantity delta to a book's stock at one location.
// An omitted location targets the default warehouse.
func (service *Service) Adjust(context context.Context, bookID string, input AdjustInput, staffID string) (*Stock, error) {
	if input.Location == "" {
		input.Location = constants.DefaultStockLocation
	}

	validator := validate.New().
		UUID("book_id", bookID).
		Custom("delta", input.Delta == 0, "delta must be non-zero")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	stock, err := service.repo.Adjust(context, bookID, input.Location, input.Delta)
	if err != nil {
		return nil, err
	}

	service.logger.Info("stock adjusted",
		slog.String("book_id", bookID),
		slog.String("location", input.Location),
		slog.Int("delta", input.Delta),
		slog.Int("quantity", stock.Quantity),
		slog.String("staff_id", staffID))

	return stock, nil
}

// PriceInput sets the unit acquisition cost at one location.
type PriceInput struct {
	Location    string  `json:"location"`
	ImportPrice float64 `json:"import_price"`
}

// SetImportPrice records a new acquisition cost for a book's stock row.
func (service *Service) SetImportPrice(context context.Context, bookID string, input PriceInput, staffID string) (*Stock, error) {
	if input.Location == "" {
		input.Location = constants.DefaultStockLocation
	}

	validator := validate.New().
		UUID("book_id", bookID).
		NonNegative("import_price", input.ImportPrice)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	stock, err := service.repo.SetImportPrice(context, bookID, input.Location, input.ImportPrice)
	if err != nil {
		return nil, err
	}

	service.logger.Info("import price updated",
		slog.String("book_id", bookID),
		slog.String("location", input.Location),
		slog.Float64("import_price", input.ImportPrice),
		slog.String("staff_id", staffID))

	return stock, nil
}
