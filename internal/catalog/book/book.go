// Copyright (c) 2026 Bibliora. All rights reserved.
// Author: ngocanh.tran.books@gmail.com

package book

import (
	"time"

	"github.com/ngocanhtran/bibliora/internal/catalog/media"
)

// # Book Lifecycle

// Book status codes. The numeric status is a visibility axis independent of
// soft-deletion: a hidden book is still live, a deleted book keeps whatever
// status it had so a restore brings it back unchanged.
const (
	StatusInactive   = 0
	StatusActive     = 1
	StatusHidden     = 2
	StatusDraft      = 3
	StatusOutOfStock = 4
)

// Book represents a catalog entry for a sellable title.
type Book struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Subtitle    *string `json:"subtitle,omitempty"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`

	Authors     []string   `json:"authors"`
	Language    *string    `json:"language,omitempty"`
	Format      *string    `json:"format,omitempty"`
	PublishDate *time.Time `json:"publish_date,omitempty"`
	PageCount   *int       `json:"page_count,omitempty"`
	ISBN        *string    `json:"isbn,omitempty"`

	PublisherID string   `json:"publisher_id"`
	CategoryIDs []string `json:"category_ids"`

	BasePrice     float64  `json:"base_price"`
	OriginalPrice *float64 `json:"original_price,omitempty"`
	Currency      string   `json:"currency"`

	// ThumbnailURL is the denormalized cover URL for list views; the
	// authoritative image set lives in Images.
	ThumbnailURL *string       `json:"thumbnail_url,omitempty"`
	Images       []media.Image `json:"images,omitempty"`

	Status int      `json:"status"`
	Tags   []string `json:"tags,omitempty"`

	SoldCount     int `json:"sold_count"`
	StockOnHand   int `json:"stock_on_hand"`
	StockReserved int `json:"stock_reserved"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	DeletedBy  *string    `json:"-"`
	RestoredAt *time.Time `json:"-"`
	RestoredBy *string    `json:"-"`
}

// IsDeleted reports whether the book is soft-deleted. The deletedat
// timestamp is the single source of truth for the lifecycle state.
func (b *Book) IsDeleted() bool { return b.DeletedAt != nil }

// Cover returns the cover image, or nil when the book has none.
func (b *Book) Cover() *media.Image {
	for index := range b.Images {
		if b.Images[index].Kind == media.KindCover {
			return &b.Images[index]
		}
	}
	return nil
}

// Filter narrows book listings.
type Filter struct {
	// Search matches against title and author names.
	Search string

	CategoryID  string
	PublisherID string

	// Status filters on the numeric visibility codes when non-empty.
	Status []int

	// IncludeDeleted widens admin listings to soft-deleted rows.
	IncludeDeleted bool

	// OnlyDeleted restricts admin listings to the recycle bin.
	OnlyDeleted bool

	// Sort is one of "newest", "oldest", "price_asc", "price_desc",
	// "bestselling". Empty means "newest".
	Sort string
}
