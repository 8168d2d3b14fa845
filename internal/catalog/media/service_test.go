// Copyright (c) 2026 Bibliora. All rights reserved.
// Author: ngocanh.tran.books@gmail.com

package media

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngocanhtran/bibliora/internal/platform/apperr"
	"github.com/ngocanhtran/bibliora/internal/platform/objstore"
)

type fakeServiceRepo struct {
	assets     map[string]*Media
	failCreate error
	failDelete map[string]error
}

func newFakeServiceRepo() *fakeServiceRepo {
	return &fakeServiceRepo{
		assets:     map[string]*Media{},
		failDelete: map[string]error{},
	}
}

func (r *fakeServiceRepo) Create(_ context.Context, media *Media) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	clone := *media
	r.assets[media.ID] = &clone
	return nil
}

func (r *fakeServiceRepo) GetByID(_ context.Context, id string) (*Media, error) {
	asset, ok := r.assets[id]
	if !ok {
		return nil, apperr.NotFound("media")
	}
	clone := *asset
	return &clone, nil
}

func (r *fakeServiceRepo) GetByIDs(_ context.Context, ids []string) ([]*Media, error) {
	found := make([]*Media, 0, len(ids))
	for _, id := range ids {
		if asset, ok := r.assets[id]; ok {
			clone := *asset
			found = append(found, &clone)
		}
	}
	return found, nil
}

func (r *fakeServiceRepo) ListByUploader(_ context.Context, uploaderID string, filter Filter, _, _ int) ([]*Media, int, error) {
	matches := []*Media{}
	for _, asset := range r.assets {
		if asset.UploadedBy == nil || *asset.UploadedBy != uploaderID {
			continue
		}
		if filter.Status != "" && asset.Status != filter.Status {
			continue
		}
		clone := *asset
		matches = append(matches, &clone)
	}
	return matches, len(matches), nil
}

func (r *fakeServiceRepo) Delete(_ context.Context, id string) error {
	if err := r.failDelete[id]; err != nil {
		return err
	}
	if _, ok := r.assets[id]; !ok {
		return apperr.NotFound("media")
	}
	delete(r.assets, id)
	return nil
}

func (r *fakeServiceRepo) ListExpiredTemp(_ context.Context, cutoff time.Time, limit int) ([]*Media, error) {
	expired := []*Media{}
	for _, asset := range r.assets {
		if asset.Status == StatusTemp && asset.CreatedAt.Before(cutoff) {
			clone := *asset
			expired = append(expired, &clone)
		}
		if len(expired) == limit {
			break
		}
	}
	return expired, nil
}

type fakeBinaryStore struct {
	uploaded   []string
	destroyed  []string
	failUpload error
}

func (s *fakeBinaryStore) Upload(_ context.Context, params objstore.UploadParams) (objstore.UploadResult, error) {
	if s.failUpload != nil {
		return objstore.UploadResult{}, s.failUpload
	}
	publicID := params.Folder + "/" + params.Filename
	s.uploaded = append(s.uploaded, publicID)
	return objstore.UploadResult{
		URL:      "https://cdn.bibliora.shop/" + publicID,
		PublicID: publicID,
	}, nil
}

func (s *fakeBinaryStore) Destroy(_ context.Context, publicID string) error {
	s.destroyed = append(s.destroyed, publicID)
	return nil
}

func newTestService(repo *fakeServiceRepo, store *fakeBinaryStore) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, store, logger)
}

func uploadInput() RegisterInput {
	return RegisterInput{
		Body:      strings.NewReader("binary-bytes"),
		Filename:  "cover.jpg",
		MimeType:  "image/jpeg",
		SizeBytes: 12,
	}
}

func TestRegister_StoresBinaryAndTempRow(t *testing.T) {
	repo := newFakeServiceRepo()
	store := &fakeBinaryStore{}
	service := newTestService(repo, store)

	asset, err := service.Register(context.Background(), uploadInput(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, StatusTemp, asset.Status)
	assert.Equal(t, TypeImage, asset.Type)
	require.NotNil(t, asset.UploadedBy)
	assert.Equal(t, "user-1", *asset.UploadedBy)
	assert.Contains(t, asset.URL, store.uploaded[0])

	stored, err := repo.GetByID(context.Background(), asset.ID)
	require.NoError(t, err)
	assert.Equal(t, asset.PublicID, stored.PublicID)
}

func TestRegister_RequiresUploader(t *testing.T) {
	service := newTestService(newFakeServiceRepo(), &fakeBinaryStore{})

	_, err := service.Register(context.Background(), uploadInput(), "")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

func TestRegister_RejectsUnknownType(t *testing.T) {
	service := newTestService(newFakeServiceRepo(), &fakeBinaryStore{})

	input := uploadInput()
	input.Type = "archive"

	_, err := service.Register(context.Background(), input, "user-1")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

func TestRegister_DestroysBinaryWhenInsertFails(t *testing.T) {
	repo := newFakeServiceRepo()
	repo.failCreate = errors.New("insert failed")
	store := &fakeBinaryStore{}
	service := newTestService(repo, store)

	_, err := service.Register(context.Background(), uploadInput(), "user-1")
	require.Error(t, err)

	require.Len(t, store.uploaded, 1)
	assert.Equal(t, store.uploaded, store.destroyed)
	assert.Empty(t, repo.assets)
}

func TestRemove_DeletesOwnTempAsset(t *testing.T) {
	repo := newFakeServiceRepo()
	store := &fakeBinaryStore{}
	service := newTestService(repo, store)

	asset := tempImage("m-1", "user-1")
	asset.PublicID = "bibliora/image/m-1"
	repo.assets[asset.ID] = asset

	err := service.Remove(context.Background(), "m-1", "user-1", false)
	require.NoError(t, err)

	assert.Empty(t, repo.assets)
	assert.Equal(t, []string{"bibliora/image/m-1"}, store.destroyed)
}

func TestRemove_RejectsForeignAsset(t *testing.T) {
	repo := newFakeServiceRepo()
	service := newTestService(repo, &fakeBinaryStore{})

	repo.assets["m-1"] = tempImage("m-1", "user-1")

	err := service.Remove(context.Background(), "m-1", "user-2", false)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	assert.Contains(t, repo.assets, "m-1")
}

func TestRemove_ElevatedBypassesOwnership(t *testing.T) {
	repo := newFakeServiceRepo()
	service := newTestService(repo, &fakeBinaryStore{})

	repo.assets["m-1"] = tempImage("m-1", "user-1")

	err := service.Remove(context.Background(), "m-1", "admin-1", true)
	require.NoError(t, err)
	assert.Empty(t, repo.assets)
}

func TestRemove_RefusesAttachedAsset(t *testing.T) {
	repo := newFakeServiceRepo()
	service := newTestService(repo, &fakeBinaryStore{})

	attached := tempImage("m-1", "user-1")
	attached.Status = StatusAttached
	repo.assets["m-1"] = attached

	err := service.Remove(context.Background(), "m-1", "user-1", false)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	assert.Contains(t, repo.assets, "m-1")
}

func TestCleanupExpired_ReclaimsOldTempOnly(t *testing.T) {
	repo := newFakeServiceRepo()
	store := &fakeBinaryStore{}
	service := newTestService(repo, store)

	now := time.Now()

	stale := tempImage("m-old", "user-1")
	stale.PublicID = "bibliora/image/m-old"
	stale.CreatedAt = now.Add(-48 * time.Hour)
	repo.assets[stale.ID] = stale

	fresh := tempImage("m-fresh", "user-1")
	fresh.CreatedAt = now.Add(-1 * time.Hour)
	repo.assets[fresh.ID] = fresh

	attached := tempImage("m-attached", "user-1")
	attached.Status = StatusAttached
	attached.CreatedAt = now.Add(-48 * time.Hour)
	repo.assets[attached.ID] = attached

	removed, err := service.CleanupExpired(context.Background(), now.Add(-24*time.Hour), 100)
	require.NoError(t, err)

	assert.Equal(t, 1, removed)
	assert.NotContains(t, repo.assets, "m-old")
	assert.Contains(t, repo.assets, "m-fresh")
	assert.Contains(t, repo.assets, "m-attached")
	assert.Equal(t, []string{"bibliora/image/m-old"}, store.destroyed)
}

func TestCleanupExpired_SkipsRowsThatFailToDelete(t *testing.T) {
	repo := newFakeServiceRepo()
	store := &fakeBinaryStore{}
	service := newTestService(repo, store)

	now := time.Now()
	for _, id := range []string{"m-a", "m-b"} {
		asset := tempImage(id, "user-1")
		asset.PublicID = "bibliora/image/" + id
		asset.CreatedAt = now.Add(-48 * time.Hour)
		repo.assets[id] = asset
	}
	repo.failDelete["m-a"] = errors.New("row locked")

	removed, err := service.CleanupExpired(context.Background(), now.Add(-24*time.Hour), 100)
	require.NoError(t, err)

	assert.Equal(t, 1, removed)
	assert.Contains(t, repo.assets, "m-a")
	assert.NotContains(t, repo.assets, "m-b")
}
