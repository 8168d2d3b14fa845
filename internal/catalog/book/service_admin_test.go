// Copyright (c) 2026 Bibliora. All rights reserved.
// Author: ngocanh.tran.books@gmail.com

package book

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngocanhtran/bibliora/internal/catalog/media"
	"github.com/ngocanhtran/bibliora/internal/platform/apperr"
	uuid "github.com/ngocanhtran/bibliora/pkg/uuid"
)

// # In-Memory Fakes

// fakeMediaRepo keeps media assets in a map so tests can observe status
// flips without a database.
type fakeMediaRepo struct {
	assets map[string]*media.Media
}

func newFakeMediaRepo() *fakeMediaRepo {
	return &fakeMediaRepo{assets: make(map[string]*media.Media)}
}

func (repo *fakeMediaRepo) addTemp(owner string) *media.Media {
	asset := &media.Media{
		ID:         uuid.New(),
		URL:        "https://cdn.test/" + uuid.New(),
		PublicID:   uuid.New(),
		Type:       media.TypeImage,
		Status:     media.StatusTemp,
		UploadedBy: &owner,
	}
	repo.assets[asset.ID] = asset
	return asset
}

func (repo *fakeMediaRepo) Create(_ context.Context, asset *media.Media) error {
	repo.assets[asset.ID] = asset
	return nil
}

func (repo *fakeMediaRepo) GetByID(_ context.Context, id string) (*media.Media, error) {
	asset, ok := repo.assets[id]
	if !ok {
		return nil, apperr.NotFound("media")
	}
	return asset, nil
}

func (repo *fakeMediaRepo) GetByIDs(_ context.Context, ids []string) ([]*media.Media, error) {
	found := make([]*media.Media, 0, len(ids))
	for _, id := range ids {
		if asset, ok := repo.assets[id]; ok {
			found = append(found, asset)
		}
	}
	return found, nil
}

func (repo *fakeMediaRepo) ListByUploader(_ context.Context, _ string, _ media.Filter, _, _ int) ([]*media.Media, int, error) {
	return nil, 0, nil
}

func (repo *fakeMediaRepo) Delete(_ context.Context, id string) error {
	delete(repo.assets, id)
	return nil
}

func (repo *fakeMediaRepo) ListExpiredTemp(_ context.Context, _ time.Time, _ int) ([]*media.Media, error) {
	return nil, nil
}

// stockState mirrors the inventory row a create seeds.
type stockState struct {
	Quantity    int
	Location    string
	ImportPrice float64
	Status      string
}

// fakeBookRepo is an in-memory [Repository] that reproduces the store's
// transactional semantics: nothing mutates when an injected failure or a
// guarded media claim aborts the operation.
type fakeBookRepo struct {
	books     map[string]*Book
	stocks    map[string]*stockState
	mediaRepo *fakeMediaRepo

	failCreate error
	failUpdate error
}

func newFakeBookRepo(mediaRepo *fakeMediaRepo) *fakeBookRepo {
	return &fakeBookRepo{
		books:     make(map[string]*Book),
		stocks:    make(map[string]*stockState),
		mediaRepo: mediaRepo,
	}
}

func (repo *fakeBookRepo) List(_ context.Context, _ Filter, _, _ int) ([]*Book, int, error) {
	return nil, 0, nil
}

func (repo *fakeBookRepo) GetByID(_ context.Context, id string) (*Book, error) {
	entry, ok := repo.books[id]
	if !ok {
		return nil, apperr.NotFound("book")
	}
	clone := *entry
	return &clone, nil
}

func (repo *fakeBookRepo) GetLiveBySlug(_ context.Context, slug string) (*Book, error) {
	for _, entry := range repo.books {
		if entry.Slug == slug && !entry.IsDeleted() {
			clone := *entry
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("book")
}

func (repo *fakeBookRepo) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	for _, entry := range repo.books {
		if entry.Slug == slug && !entry.IsDeleted() && entry.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *fakeBookRepo) ISBNExists(_ context.Context, isbn, excludeID string) (bool, error) {
	for _, entry := range repo.books {
		if entry.ISBN != nil && *entry.ISBN == isbn && !entry.IsDeleted() && entry.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *fakeBookRepo) Create(_ context.Context, book *Book, stock InitialStock, attachIDs []string) error {
	if repo.failCreate != nil {
		return repo.failCreate
	}

	if err := repo.claimMedia(book.ID, attachIDs); err != nil {
		return err
	}

	clone := *book
	clone.CreatedAt = time.Now()
	clone.UpdatedAt = clone.CreatedAt
	repo.books[book.ID] = &clone
	repo.stocks[book.ID] = &stockState{
		Quantity:    stock.Quantity,
		Location:    stock.Location,
		ImportPrice: stock.ImportPrice,
		Status:      "available",
	}
	return nil
}

func (repo *fakeBookRepo) Update(_ context.Context, book *Book, plan media.Plan) error {
	if repo.failUpdate != nil {
		return repo.failUpdate
	}

	stored, ok := repo.books[book.ID]
	if !ok || stored.IsDeleted() {
		return apperr.NotFound("book")
	}

	if err := repo.claimMedia(book.ID, plan.AttachIDs); err != nil {
		return err
	}
	for _, id := range plan.DetachIDs {
		asset, ok := repo.mediaRepo.assets[id]
		if !ok || asset.AttachedToID == nil || *asset.AttachedToID != book.ID {
			continue // stale id, silent no-op
		}
		asset.Status = media.StatusTemp
		asset.AttachedToKind = nil
		asset.AttachedToID = nil
	}

	clone := *book
	clone.Images = plan.Images
	clone.UpdatedAt = time.Now()
	repo.books[book.ID] = &clone
	return nil
}

func (repo *fakeBookRepo) SoftDelete(_ context.Context, id, staffID string) error {
	entry, ok := repo.books[id]
	if !ok {
		return apperr.NotFound("book")
	}
	if entry.IsDeleted() {
		return apperr.ValidationError("book is already deleted")
	}

	now := time.Now()
	entry.DeletedAt = &now
	entry.DeletedBy = &staffID
	repo.stocks[id].Status = "inactive"
	return nil
}

func (repo *fakeBookRepo) Restore(_ context.Context, id, staffID string) error {
	entry, ok := repo.books[id]
	if !ok {
		return apperr.NotFound("book")
	}
	if !entry.IsDeleted() {
		return apperr.ValidationError("book is not deleted")
	}

	now := time.Now()
	entry.DeletedAt = nil
	entry.DeletedBy = nil
	entry.RestoredAt = &now
	entry.RestoredBy = &staffID
	repo.stocks[id].Status = "available"
	return nil
}

// claimMedia reproduces the status-guarded attach: any non-TEMP id aborts
// without mutating anything.
func (repo *fakeBookRepo) claimMedia(bookID string, ids []string) error {
	for _, id := range ids {
		asset, ok := repo.mediaRepo.assets[id]
		if !ok || asset.Status != media.StatusTemp {
			return apperr.Conflict("media is no longer available for attachment")
		}
	}

	kind := "book"
	for _, id := range ids {
		asset := repo.mediaRepo.assets[id]
		asset.Status = media.StatusAttached
		asset.AttachedToKind = &kind
		target := bookID
		asset.AttachedToID = &target
	}
	return nil
}

// # Test Setup

func newTestAdminService(t *testing.T) (*AdminService, *fakeBookRepo, *fakeMediaRepo) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mediaRepo := newFakeMediaRepo()
	repo := newFakeBookRepo(mediaRepo)
	cache := NewSlugCache(nil, logger)

	return NewAdminService(repo, mediaRepo, cache, logger), repo, mediaRepo
}

func validAddInput(coverID string) AddInput {
	return AddInput{
		Title:           "Café Sûnrise",
		PublisherID:     uuid.New(),
		CategoryIDs:     []string{uuid.New()},
		BasePrice:       125000,
		CoverMediaID:    coverID,
		InitialQuantity: 10,
	}
}

// # Tests

func TestAddBook_CreatesEntryWithSlugStockAndCover(t *testing.T) {
	service, repo, mediaRepo := newTestAdminService(t)
	uploader := uuid.New()
	cover := mediaRepo.addTemp(uploader)

	entry, err := service.AddBook(context.Background(), validAddInput(cover.ID), uploader)
	require.NoError(t, err)

	assert.Equal(t, "cafe-sunrise", entry.Slug)
	assert.Equal(t, StatusActive, entry.Status)
	require.NotNil(t, entry.ThumbnailURL)
	assert.Equal(t, cover.URL, *entry.ThumbnailURL)

	require.Len(t, entry.Images, 1)
	assert.Equal(t, media.KindCover, entry.Images[0].Kind)

	// The cover was claimed for this entry.
	assert.Equal(t, media.StatusAttached, cover.Status)
	require.NotNil(t, cover.AttachedToID)
	assert.Equal(t, entry.ID, *cover.AttachedToID)

	// One stock row, seeded with the caller's quantity at the default location.
	stock := repo.stocks[entry.ID]
	require.NotNil(t, stock)
	assert.Equal(t, 10, stock.Quantity)
	assert.Equal(t, "MAIN", stock.Location)
	assert.Equal(t, "available", stock.Status)
}

func TestAddBook_SlugConflict(t *testing.T) {
	service, _, mediaRepo := newTestAdminService(t)
	uploader := uuid.New()

	first := mediaRepo.addTemp(uploader)
	_, err := service.AddBook(context.Background(), validAddInput(first.ID), uploader)
	require.NoError(t, err)

	second := mediaRepo.addTemp(uploader)
	_, err = service.AddBook(context.Background(), validAddInput(second.ID), uploader)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)

	// The losing create never claimed its media.
	assert.Equal(t, media.StatusTemp, second.Status)
}

func TestAddBook_ISBNConflict(t *testing.T) {
	service, _, mediaRepo := newTestAdminService(t)
	uploader := uuid.New()
	isbn := "978-604-1-09289-5"

	first := validAddInput(mediaRepo.addTemp(uploader).ID)
	first.ISBN = &isbn
	_, err := service.AddBook(context.Background(), first, uploader)
	require.NoError(t, err)

	second := validAddInput(mediaRepo.addTemp(uploader).ID)
	second.Title = "Another Title"
	second.ISBN = &isbn
	_, err = service.AddBook(context.Background(), second, uploader)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}

func TestAddBook_ValidationFailures(t *testing.T) {
	service, _, mediaRepo := newTestAdminService(t)
	uploader := uuid.New()
	coverID := mediaRepo.addTemp(uploader).ID

	testCases := []struct {
		name   string
		mutate func(input *AddInput)
	}{
		{"missing_title", func(input *AddInput) { input.Title = "" }},
		{"symbols_only_title", func(input *AddInput) { input.Title = "!!! ***" }},
		{"bad_publisher_id", func(input *AddInput) { input.PublisherID = "not-a-uuid" }},
		{"no_categories", func(input *AddInput) { input.CategoryIDs = nil }},
		{"negative_price", func(input *AddInput) { input.BasePrice = -1 }},
		{"negative_quantity", func(input *AddInput) { input.InitialQuantity = -5 }},
		{"missing_cover", func(input *AddInput) { input.CoverMediaID = "" }},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			input := validAddInput(coverID)
			testCase.mutate(&input)

			_, err := service.AddBook(context.Background(), input, uploader)
			require.Error(t, err)
			assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
		})
	}
}

func TestAddBook_UnknownMediaIsNotFound(t *testing.T) {
	service, _, _ := newTestAdminService(t)
	uploader := uuid.New()

	_, err := service.AddBook(context.Background(), validAddInput(uuid.New()), uploader)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

func TestAddBook_ForeignMediaIsForbidden(t *testing.T) {
	service, _, mediaRepo := newTestAdminService(t)
	cover := mediaRepo.addTemp(uuid.New())

	_, err := service.AddBook(context.Background(), validAddInput(cover.ID), uuid.New())
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	assert.Equal(t, media.StatusTemp, cover.Status)
}

func TestAddBook_FailedCreateLeavesMediaUnclaimed(t *testing.T) {
	service, repo, mediaRepo := newTestAdminService(t)
	uploader := uuid.New()
	cover := mediaRepo.addTemp(uploader)

	repo.failCreate = errors.New("connection reset")

	_, err := service.AddBook(context.Background(), validAddInput(cover.ID), uploader)
	require.Error(t, err)

	assert.Equal(t, media.StatusTemp, cover.Status)
	assert.Nil(t, cover.AttachedToID)
	assert.Empty(t, repo.books)
	assert.Empty(t, repo.stocks)
}

func TestUpdateBook_GallerySwap(t *testing.T) {
	service, _, mediaRepo := newTestAdminService(t)
	uploader := uuid.New()

	cover := mediaRepo.addTemp(uploader)
	g1 := mediaRepo.addTemp(uploader)

	input := validAddInput(cover.ID)
	input.GalleryMediaIDs = []string{g1.ID}
	entry, err := service.AddBook(context.Background(), input, uploader)
	require.NoError(t, err)
	require.Len(t, entry.Images, 2)

	g2 := mediaRepo.addTemp(uploader)
	updated, err := service.UpdateBook(context.Background(), entry.ID, UpdateInput{
		AddGalleryMediaIDs: []string{g2.ID},
		RemoveMediaIDs:     []string{g1.ID},
	}, uploader)
	require.NoError(t, err)

	galleryIDs := make([]string, 0)
	for _, image := range updated.Images {
		if image.Kind == media.KindGallery {
			galleryIDs = append(galleryIDs, image.MediaID)
		}
	}
	assert.Equal(t, []string{g2.ID}, galleryIDs)

	assert.Equal(t, media.StatusTemp, g1.Status)
	assert.Nil(t, g1.AttachedToID)
	assert.Equal(t, media.StatusAttached, g2.Status)
	require.NotNil(t, g2.AttachedToID)
	assert.Equal(t, entry.ID, *g2.AttachedToID)
}

func TestUpdateBook_TitleChangeRecomputesSlug(t *testing.T) {
	service, _, mediaRepo := newTestAdminService(t)
	uploader := uuid.New()

	entry, err := service.AddBook(context.Background(), validAddInput(mediaRepo.addTemp(uploader).ID), uploader)
	require.NoError(t, err)

	newTitle := "Nhà Giả Kim"
	updated, err := service.UpdateBook(context.Background(), entry.ID, UpdateInput{Title: &newTitle}, uploader)
	require.NoError(t, err)
	assert.Equal(t, "nha-gia-kim", updated.Slug)
}

func TestUpdateBook_SlugCollisionOnRename(t *testing.T) {
	service, _, mediaRepo := newTestAdminService(t)
	uploader := uuid.New()

	_, err := service.AddBook(context.Background(), validAddInput(mediaRepo.addTemp(uploader).ID), uploader)
	require.NoError(t, err)

	input := validAddInput(mediaRepo.addTemp(uploader).ID)
	input.Title = "Another Book"
	other, err := service.AddBook(context.Background(), input, uploader)
	require.NoError(t, err)

	takenTitle := "Café Sûnrise"
	_, err = service.UpdateBook(context.Background(), other.ID, UpdateInput{Title: &takenTitle}, uploader)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}

func TestUpdateBook_DeletedBookIsRejected(t *testing.T) {
	service, _, mediaRepo := newTestAdminService(t)
	uploader := uuid.New()

	entry, err := service.AddBook(context.Background(), validAddInput(mediaRepo.addTemp(uploader).ID), uploader)
	require.NoError(t, err)
	require.NoError(t, service.DeleteBook(context.Background(), entry.ID, uploader))

	price := 99000.0
	_, err = service.UpdateBook(context.Background(), entry.ID, UpdateInput{BasePrice: &price}, uploader)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

func TestDeleteBook_FlipsStockAndRejectsSecondDelete(t *testing.T) {
	service, repo, mediaRepo := newTestAdminService(t)
	uploader := uuid.New()

	entry, err := service.AddBook(context.Background(), validAddInput(mediaRepo.addTemp(uploader).ID), uploader)
	require.NoError(t, err)

	require.NoError(t, service.DeleteBook(context.Background(), entry.ID, uploader))

	stock := repo.stocks[entry.ID]
	assert.Equal(t, "inactive", stock.Status)
	assert.Equal(t, 10, stock.Quantity, "quantity must survive the delete")

	err = service.DeleteBook(context.Background(), entry.ID, uploader)
	require.Error(t, err)
	appError := apperr.As(err)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	assert.Equal(t, "book is already deleted", appError.Message)
}

func TestRestoreBook_RoundTrip(t *testing.T) {
	service, repo, mediaRepo := newTestAdminService(t)
	uploader := uuid.New()

	entry, err := service.AddBook(context.Background(), validAddInput(mediaRepo.addTemp(uploader).ID), uploader)
	require.NoError(t, err)
	require.NoError(t, service.DeleteBook(context.Background(), entry.ID, uploader))

	restored, err := service.RestoreBook(context.Background(), entry.ID, uploader)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted())

	stock := repo.stocks[entry.ID]
	assert.Equal(t, "available", stock.Status)
	assert.Equal(t, 10, stock.Quantity, "restore must not replenish quantity")

	// Restoring a live book fails.
	_, err = service.RestoreBook(context.Background(), entry.ID, uploader)
	require.Error(t, err)
	appError := apperr.As(err)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	assert.Equal(t, "book is not deleted", appError.Message)
}

func TestRestoreBook_MissingBookIsNotFound(t *testing.T) {
	service, _, _ := newTestAdminService(t)

	_, err := service.RestoreBook(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}
