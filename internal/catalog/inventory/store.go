// Copyright (c) 2026 Bibliora. All rights reserved.
// Author: ngocanh.tran.books@gmail.com

package inventory

import "context"

// Repository is the persistence contract for stock rows.
type Repository interface {
	ListByBook(context context.Context, bookID string) ([]*Stock, error)

	// Adjust applies a signed quantity delta to one book/location row.
	// It fails with a conflict when the delta would drive quantity below
	// zero, and with not-found when no row exists for the pair.
	Adjust(context context.Context, bookID, location string, delta int) (*Stock, error)

	// SetImportPrice updates the unit acquisition cost for one row.
	SetImportPrice(context context.Context, bookID, location string, price float64) (*Stock, error)
}
