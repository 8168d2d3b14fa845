// Copyright (c) 2026 Bibliora. All rights reserved.
// Author: ngocanh.tran.books@gmail.com

package book

import (
	"context"

	"github.com/ngocanhtran/bibliora/internal/catalog/media"
)

// InitialStock seeds a book's inventory row at creation time.
type InitialStock struct {
	Quantity    int
	Location    string
	ImportPrice float64
}

// Repository is the persistence contract for catalog entries.
//
// The mutating methods own their transactions: each one runs the entry
// write, the image rows, the inventory write and the media status flips
// inside a single database transaction so no reader ever observes a
// half-applied mutation.
type Repository interface {
	List(context context.Context, filter Filter, limit, offset int) ([]*Book, int, error)

	// GetByID returns the entry regardless of lifecycle state.
	GetByID(context context.Context, id string) (*Book, error)

	// GetLiveBySlug returns a non-deleted entry by slug.
	GetLiveBySlug(context context.Context, slug string) (*Book, error)

	// SlugExists and ISBNExists are fast-path uniqueness checks against
	// non-deleted rows. The partial unique indexes remain authoritative;
	// a race that slips past these checks surfaces as a CONFLICT from
	// the insert itself.
	SlugExists(context context.Context, slug, excludeID string) (bool, error)
	ISBNExists(context context.Context, isbn, excludeID string) (bool, error)

	// Create inserts the entry, its image rows and one stock row, and
	// claims every referenced media asset (TEMP -> ATTACHED). A claim
	// that matches fewer rows than requested aborts the transaction.
	Create(context context.Context, book *Book, stock InitialStock, attachIDs []string) error

	// Update saves the entry's scalars, replaces its image rows with
	// plan.Images, claims plan.AttachIDs and releases plan.DetachIDs.
	// Releases are scoped to this entry: a stale id is a silent no-op.
	Update(context context.Context, book *Book, plan media.Plan) error

	// SoftDelete marks the entry deleted and flips its stock rows to
	// inactive, quantity untouched. A second delete is rejected.
	SoftDelete(context context.Context, id, staffID string) error

	// Restore clears the deletion mark and flips stock back to
	// available, quantity unchanged.
	Restore(context context.Context, id, staffID string) error
}
