// Copyright (c) 2026 Bibliora. All rights reserved.
// Author: ngocanh.tran.books@gmail.com

package book

import (
	"context"
	stdcontext "context"
	"log/slog"
	"time"

	"github.com/ngocanhtran/bibliora/internal/catalog/media"
	"github.com/ngocanhtran/bibliora/internal/platform/apperr"
	"github.com/ngocanhtran/bibliora/internal/platform/constants"
	"github.com/ngocanhtran/bibliora/internal/platform/dberr"
	"github.com/ngocanhtran/bibliora/internal/platform/validate"
	"github.com/ngocanhtran/bibliora/pkg/pointer"
	"github.com/ngocanhtran/bibliora/pkg/slug"
	uuid "github.com/ngocanhtran/bibliora/pkg/uuid"
)

// # Admin Coordinator

// AdminService coordinates catalog mutations: validation, slug and ISBN
// uniqueness, media resolution and the single-transaction persistence of
// entry + inventory + media state.
//
// Transient transaction aborts (serialization failures, deadlocks) are
// replayed with a bounded backoff; every other error surfaces immediately.
type AdminService struct {
	repo      Repository
	mediaRepo media.Repository
	cache     *SlugCache
	logger    *slog.Logger
}

// NewAdminService constructs the mutation coordinator.
func NewAdminService(repo Repository, mediaRepo media.Repository, cache *SlugCache, logger *slog.Logger) *AdminService {
	return &AdminService{
		repo:      repo,
		mediaRepo: mediaRepo,
		cache:     cache,
		logger:    logger,
	}
}

// List is the admin listing: same query surface as the public one plus the
// deleted-row scoping switches.
func (service *AdminService) List(context context.Context, filter Filter, limit, offset int) ([]*Book, int, error) {
	return service.repo.List(context, filter, limit, offset)
}

// Get returns one entry regardless of lifecycle state.
func (service *AdminService) Get(context context.Context, id string) (*Book, error) {
	validator := validate.New().UUID("id", id)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	return service.repo.GetByID(context, id)
}

// AddInput is the payload for creating a catalog entry.
type AddInput struct {
	Title       string  `json:"title"`
	Subtitle    *string `json:"subtitle"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`

	Authors     []string   `json:"authors"`
	Language    *string    `json:"language"`
	Format      *string    `json:"format"`
	PublishDate *time.Time `json:"publish_date"`
	PageCount   *int       `json:"page_count"`
	ISBN        *string    `json:"isbn"`

	PublisherID string   `json:"publisher_id"`
	CategoryIDs []string `json:"category_ids"`

	BasePrice     float64  `json:"base_price"`
	OriginalPrice *float64 `json:"original_price"`
	Currency      string   `json:"currency"`

	Status *int     `json:"status"`
	Tags   []string `json:"tags"`

	CoverMediaID    string   `json:"cover_media_id"`
	GalleryMediaIDs []string `json:"gallery_media_ids"`

	InitialQuantity int     `json:"initial_quantity"`
	StockLocation   string  `json:"stock_location"`
	ImportPrice     float64 `json:"import_price"`
}

/*
AddBook creates a catalog entry with its cover, gallery, and seed inventory.

Description: Validation and uniqueness checks run before any write. Media
candidates are resolved strictly — every referenced id must exist and be
claimable. The persistence itself is one transaction in the repository; a
slug or ISBN race that slips past the fast-path check rolls the whole
transaction back and surfaces as the same CONFLICT.

Parameters:
  - context: context.Context
  - input: AddInput payload.
  - uploaderID: Caller's user id; enforces media ownership when non-empty.

Returns:
  - *Book: The created entry, images included.
  - error: VALIDATION_ERROR, CONFLICT, NOT_FOUND, FORBIDDEN or wrapped
    storage errors.
*/
func (service *AdminService) AddBook(context context.Context, input AddInput, uploaderID string) (*Book, error) {
	generated := slug.From(firstNonEmpty(input.Slug, input.Title))

	validator := validate.New().
		Required("title", input.Title).
		MaxLen("title", input.Title, 512).
		UUID("publisher_id", input.PublisherID).
		Custom("category_ids", len(input.CategoryIDs) == 0, "at least one category is required").
		NonNegative("base_price", input.BasePrice).
		NonNegative("import_price", input.ImportPrice).
		Custom("initial_quantity", input.InitialQuantity < 0, "must be non-negative").
		Required("cover_media_id", input.CoverMediaID).
		UUID("cover_media_id", input.CoverMediaID).
		Custom("slug", generated == "", "cannot generate slug")
	for _, categoryID := range input.CategoryIDs {
		validator.UUID("category_ids", categoryID)
	}
	for _, galleryID := range input.GalleryMediaIDs {
		validator.UUID("gallery_media_ids", galleryID)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.checkSlugFree(context, generated, ""); err != nil {
		return nil, err
	}
	if err := service.checkISBNFree(context, input.ISBN, ""); err != nil {
		return nil, err
	}

	cover, gallery, err := service.resolveMedia(context, input.CoverMediaID, input.GalleryMediaIDs)
	if err != nil {
		return nil, err
	}

	plan, err := media.BuildPlan(nil, cover, gallery, nil, uploaderID)
	if err != nil {
		return nil, err
	}

	entry := &Book{
		ID:            uuid.New(),
		Title:         input.Title,
		Subtitle:      input.Subtitle,
		Slug:          generated,
		Description:   input.Description,
		Authors:       defaultSlice(input.Authors),
		Language:      input.Language,
		Format:        input.Format,
		PublishDate:   input.PublishDate,
		PageCount:     input.PageCount,
		ISBN:          input.ISBN,
		PublisherID:   input.PublisherID,
		CategoryIDs:   input.CategoryIDs,
		BasePrice:     input.BasePrice,
		OriginalPrice: input.OriginalPrice,
		Currency:      firstNonEmpty(input.Currency, constants.DefaultCurrency),
		Status:        StatusActive,
		Tags:          defaultSlice(input.Tags),
		Images:        plan.Images,
	}
	if input.Status != nil {
		entry.Status = *input.Status
	}
	if coverImage := entry.Cover(); coverImage != nil {
		entry.ThumbnailURL = pointer.To(coverImage.URL)
	}

	stock := InitialStock{
		Quantity:    input.InitialQuantity,
		Location:    firstNonEmpty(input.StockLocation, constants.DefaultStockLocation),
		ImportPrice: input.ImportPrice,
	}

	err = dberr.Retry(context, func(retryCtx stdcontext.Context) error {
		return service.repo.Create(retryCtx, entry, stock, plan.AttachIDs)
	})
	if err != nil {
		return nil, err
	}

	service.cache.Invalidate(context, entry.Slug)
	service.logger.Info("book created",
		slog.String("book_id", entry.ID),
		slog.String("slug", entry.Slug),
		slog.String("uploader_id", uploaderID))

	return entry, nil
}

// UpdateInput is the patch payload for updating an entry. Nil pointers
// leave the corresponding field untouched.
type UpdateInput struct {
	Title       *string `json:"title"`
	Subtitle    *string `json:"subtitle"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`

	Authors     *[]string  `json:"authors"`
	Language    *string    `json:"language"`
	Format      *string    `json:"format"`
	PublishDate *time.Time `json:"publish_date"`
	PageCount   *int       `json:"page_count"`
	ISBN        *string    `json:"isbn"`

	PublisherID *string   `json:"publisher_id"`
	CategoryIDs *[]string `json:"category_ids"`

	BasePrice     *float64 `json:"base_price"`
	OriginalPrice *float64 `json:"original_price"`
	Currency      *string  `json:"currency"`

	Status *int      `json:"status"`
	Tags   *[]string `json:"tags"`

	NewCoverMediaID    *string  `json:"new_cover_media_id"`
	AddGalleryMediaIDs []string `json:"add_gallery_media_ids"`
	RemoveMediaIDs     []string `json:"remove_media_ids"`
}

/*
UpdateBook patches an entry's scalars and reconciles its media set.

Description: The entry must be live — updating a soft-deleted book is a
validation failure, not a resurrection. The slug is recomputed only when a
new slug or title arrives, and only re-checked when it actually changes.
The media plan's attach and detach sets are applied in the same transaction
as the scalar save.
*/
func (service *AdminService) UpdateBook(context context.Context, id string, input UpdateInput, uploaderID string) (*Book, error) {
	validator := validate.New().UUID("id", id)
	for _, mediaID := range input.AddGalleryMediaIDs {
		validator.UUID("add_gallery_media_ids", mediaID)
	}
	for _, mediaID := range input.RemoveMediaIDs {
		validator.UUID("remove_media_ids", mediaID)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	entry, err := service.repo.GetByID(context, id)
	if err != nil {
		return nil, err
	}
	if entry.IsDeleted() {
		return nil, apperr.ValidationError("book is deleted")
	}

	previousSlug := entry.Slug

	if err := service.applyScalarPatch(context, entry, input); err != nil {
		return nil, err
	}

	var newCover *media.Media
	var additions []*media.Media

	if input.NewCoverMediaID != nil || len(input.AddGalleryMediaIDs) > 0 {
		coverID := ""
		if input.NewCoverMediaID != nil {
			coverID = *input.NewCoverMediaID
		}
		newCover, additions, err = service.resolveMedia(context, coverID, input.AddGalleryMediaIDs)
		if err != nil {
			return nil, err
		}
	}

	plan, err := media.BuildPlan(entry.Images, newCover, additions, input.RemoveMediaIDs, uploaderID)
	if err != nil {
		return nil, err
	}

	entry.Images = plan.Images
	entry.ThumbnailURL = nil
	if coverImage := entry.Cover(); coverImage != nil {
		entry.ThumbnailURL = pointer.To(coverImage.URL)
	}

	err = dberr.Retry(context, func(retryCtx stdcontext.Context) error {
		return service.repo.Update(retryCtx, entry, plan)
	})
	if err != nil {
		return nil, err
	}

	service.cache.Invalidate(context, previousSlug)
	if entry.Slug != previousSlug {
		service.cache.Invalidate(context, entry.Slug)
	}

	service.logger.Info("book updated",
		slog.String("book_id", entry.ID),
		slog.String("slug", entry.Slug),
		slog.Int("attached", len(plan.AttachIDs)),
		slog.Int("detached", len(plan.DetachIDs)))

	return entry, nil
}

// DeleteBook soft-deletes an entry. Deleting an already-deleted book is
// rejected so the audit trail records exactly one transition.
func (service *AdminService) DeleteBook(context context.Context, id, staffID string) error {
	validator := validate.New().UUID("id", id)
	if err := validator.Err(); err != nil {
		return err
	}

	entry, err := service.repo.GetByID(context, id)
	if err != nil {
		return err
	}

	err = dberr.Retry(context, func(retryCtx stdcontext.Context) error {
		return service.repo.SoftDelete(retryCtx, id, staffID)
	})
	if err != nil {
		return err
	}

	service.cache.Invalidate(context, entry.Slug)
	service.logger.Info("book deleted",
		slog.String("book_id", id),
		slog.String("staff_id", staffID))

	return nil
}

// RestoreBook brings a soft-deleted entry back. Restoring a live book is a
// validation failure.
func (service *AdminService) RestoreBook(context context.Context, id, staffID string) (*Book, error) {
	validator := validate.New().UUID("id", id)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	err := dberr.Retry(context, func(retryCtx stdcontext.Context) error {
		return service.repo.Restore(retryCtx, id, staffID)
	})
	if err != nil {
		return nil, err
	}

	entry, err := service.repo.GetByID(context, id)
	if err != nil {
		return nil, err
	}

	// The slug is live again; drop any stale negative knowledge.
	service.cache.Invalidate(context, entry.Slug)
	service.logger.Info("book restored",
		slog.String("book_id", id),
		slog.String("staff_id", staffID))

	return entry, nil
}

// # Coordinator Helpers

// applyScalarPatch folds an [UpdateInput] into a loaded entry, including
// the conditional slug recompute and uniqueness re-checks.
func (service *AdminService) applyScalarPatch(context context.Context, entry *Book, input UpdateInput) error {
	if input.Title != nil {
		if *input.Title == "" {
			return apperr.ValidationError("title cannot be empty")
		}
		entry.Title = *input.Title
	}
	if input.Subtitle != nil {
		entry.Subtitle = input.Subtitle
	}
	if input.Description != nil {
		entry.Description = input.Description
	}
	if input.Authors != nil {
		entry.Authors = defaultSlice(*input.Authors)
	}
	if input.Language != nil {
		entry.Language = input.Language
	}
	if input.Format != nil {
		entry.Format = input.Format
	}
	if input.PublishDate != nil {
		entry.PublishDate = input.PublishDate
	}
	if input.PageCount != nil {
		entry.PageCount = input.PageCount
	}
	if input.PublisherID != nil {
		if err := validate.New().UUID("publisher_id", *input.PublisherID).Err(); err != nil {
			return err
		}
		entry.PublisherID = *input.PublisherID
	}
	if input.CategoryIDs != nil {
		if len(*input.CategoryIDs) == 0 {
			return apperr.ValidationError("at least one category is required")
		}
		entry.CategoryIDs = *input.CategoryIDs
	}
	if input.BasePrice != nil {
		if err := validate.New().NonNegative("base_price", *input.BasePrice).Err(); err != nil {
			return err
		}
		entry.BasePrice = *input.BasePrice
	}
	if input.OriginalPrice != nil {
		entry.OriginalPrice = input.OriginalPrice
	}
	if input.Currency != nil && *input.Currency != "" {
		entry.Currency = *input.Currency
	}
	if input.Status != nil {
		entry.Status = *input.Status
	}
	if input.Tags != nil {
		entry.Tags = defaultSlice(*input.Tags)
	}

	// Slug only moves when the caller touches it or the title.
	if input.Slug != nil || input.Title != nil {
		candidate := entry.Title
		if input.Slug != nil && *input.Slug != "" {
			candidate = *input.Slug
		}

		generated := slug.From(candidate)
		if generated == "" {
			return apperr.ValidationError("cannot generate slug")
		}

		if generated != entry.Slug {
			if err := service.checkSlugFree(context, generated, entry.ID); err != nil {
				return err
			}
			entry.Slug = generated
		}
	}

	if input.ISBN != nil {
		if *input.ISBN != "" && (entry.ISBN == nil || *entry.ISBN != *input.ISBN) {
			if err := service.checkISBNFree(context, input.ISBN, entry.ID); err != nil {
				return err
			}
		}
		entry.ISBN = input.ISBN
		if *input.ISBN == "" {
			entry.ISBN = nil
		}
	}

	return nil
}

// checkSlugFree is the fast-path slug uniqueness check.
func (service *AdminService) checkSlugFree(context context.Context, candidate, excludeID string) error {
	exists, err := service.repo.SlugExists(context, candidate, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return apperr.Conflict("Slug already exists")
	}
	return nil
}

// checkISBNFree is the fast-path ISBN uniqueness check. A nil or empty
// ISBN is always free.
func (service *AdminService) checkISBNFree(context context.Context, isbn *string, excludeID string) error {
	if isbn == nil || *isbn == "" {
		return nil
	}

	exists, err := service.repo.ISBNExists(context, *isbn, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return apperr.Conflict("ISBN already exists")
	}
	return nil
}

// resolveMedia loads the referenced media strictly: every id must resolve.
// Lifecycle and ownership checks happen later in [media.BuildPlan].
func (service *AdminService) resolveMedia(context context.Context, coverID string, galleryIDs []string) (*media.Media, []*media.Media, error) {
	ids := make([]string, 0, len(galleryIDs)+1)
	if coverID != "" {
		ids = append(ids, coverID)
	}
	ids = append(ids, galleryIDs...)

	if len(ids) == 0 {
		return nil, nil, nil
	}

	assets, err := service.mediaRepo.GetByIDs(context, ids)
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[string]*media.Media, len(assets))
	for _, asset := range assets {
		byID[asset.ID] = asset
	}

	var cover *media.Media
	if coverID != "" {
		cover = byID[coverID]
		if cover == nil {
			return nil, nil, apperr.NotFound("cover media")
		}
	}

	gallery := make([]*media.Media, 0, len(galleryIDs))
	for _, galleryID := range galleryIDs {
		asset := byID[galleryID]
		if asset == nil {
			return nil, nil, apperr.NotFound("gallery media")
		}
		gallery = append(gallery, asset)
	}

	return cover, gallery, nil
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

// defaultSlice normalizes a nil slice to an empty one so array columns
// never receive NULL.
func defaultSlice(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
