// Copyright (c) 2026 Bibliora. All rights reserved.
// Author: ngocanh.tran.books@gmail.com

package inventory

import "time"

// Stock status values. Rows follow their book's lifecycle: soft-deleting a
// book flips its rows to inactive, restoring flips them back. The quantity
// is never touched by either transition.
const (
	StatusAvailable = "available"
	StatusInactive  = "inactive"
)

// Stock is one book's on-hand quantity at a single location.
type Stock struct {
	ID          string    `json:"id"`
	BookID      string    `json:"book_id"`
	Quantity    int       `json:"quantity"`
	Location    string    `json:"location"`
	ImportPrice float64   `json:"import_price"`
	Status      string    `json:"status"`
	LastUpdated time.Time `json:"last_updated"`
}
