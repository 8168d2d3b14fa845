// Copyright (c) 2026 Bibliora. All rights reserved.
// Author: ngocanh.tran.books@gmail.com

/*
Package media manages the upload lifecycle of catalog binaries.

Assets arrive through a two-phase protocol: a binary is first registered as
TEMP metadata, then a catalog mutation claims it (TEMP -> ATTACHED) inside
the mutation's own database transaction. Unclaimed TEMP assets are reclaimed
by the [Janitor] after a retention window, so an abandoned upload never
leaks storage permanently.

The pure [BuildPlan] function computes attach/detach work for an entity's
image set without touching the database; callers apply the resulting [Plan]
transactionally.
*/
package media

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/ngocanhtran/bibliora/internal/platform/apperr"
	"github.com/ngocanhtran/bibliora/internal/platform/objstore"
	"github.com/ngocanhtran/bibliora/internal/platform/validate"
	uuid "github.com/ngocanhtran/bibliora/pkg/uuid"
)

// # Media Service

// Service coordinates media metadata with the binary store.
type Service struct {
	repo   Repository
	store  objstore.BinaryStore
	logger *slog.Logger
}

// NewService constructs the media service.
func NewService(repo Repository, store objstore.BinaryStore, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		store:  store,
		logger: logger,
	}
}

// RegisterInput carries an incoming upload.
type RegisterInput struct {
	Body      io.Reader
	Filename  string
	MimeType  string
	SizeBytes int64
	Type      string
}

/*
Register stores an uploaded binary and records it as TEMP metadata.

The binary is written to the [objstore.BinaryStore] first; if the metadata
insert then fails, the stored binary is destroyed best-effort so the two
systems do not drift.

Parameters:
  - context: context.Context
  - input: RegisterInput (payload stream plus content hints)
  - uploaderID: Owning user id, required.

Returns:
  - *Media: The registered TEMP asset with its public URL.
  - error: Validation or storage errors.
*/
func (service *Service) Register(context context.Context, input RegisterInput, uploaderID string) (*Media, error) {
	if input.Type == "" {
		input.Type = TypeImage
	}

	validator := validate.New().
		Required("uploader_id", uploaderID).
		OneOf("type", input.Type, TypeImage, TypeVideo, TypeFile)
	if err := validator.Err(); err != nil {
		return nil, err
	}
	if input.Body == nil {
		return nil, apperr.ValidationError("upload body is missing")
	}

	result, err := service.store.Upload(context, objstore.UploadParams{
		Body:         input.Body,
		Folder:       "bibliora/" + input.Type,
		ResourceType: input.Type,
		Filename:     input.Filename,
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	media := &Media{
		ID:           uuid.New(),
		URL:          result.URL,
		PublicID:     result.PublicID,
		Type:         input.Type,
		Status:       StatusTemp,
		UploadedBy:   &uploaderID,
		OriginalName: input.Filename,
		MimeType:     input.MimeType,
		SizeBytes:    input.SizeBytes,
	}

	if err := service.repo.Create(context, media); err != nil {
		if destroyErr := service.store.Destroy(context, result.PublicID); destroyErr != nil {
			service.logger.Warn("failed to destroy orphaned binary",
				slog.String("public_id", result.PublicID),
				slog.String("error", destroyErr.Error()))
		}
		return nil, err
	}

	return media, nil
}

// ListMine returns the caller's media, newest first.
func (service *Service) ListMine(context context.Context, uploaderID string, filter Filter, limit, offset int) ([]*Media, int, error) {
	if filter.Status != "" && filter.Status != StatusTemp && filter.Status != StatusAttached {
		return nil, 0, apperr.ValidationError("invalid status filter")
	}

	return service.repo.ListByUploader(context, uploaderID, filter, limit, offset)
}

/*
Remove deletes an unattached media asset.

Only the uploader (or an operator acting without an ownership scope) may
remove an asset, and only while it is TEMP: an ATTACHED asset is released by
updating its owning entity, never by direct deletion.

The metadata row is removed first; the remote destroy is best-effort and a
failure is only logged, since the janitor path cannot see the asset anymore
and the row is the source of truth.
*/
func (service *Service) Remove(context context.Context, id, requesterID string, elevated bool) error {
	media, err := service.repo.GetByID(context, id)
	if err != nil {
		return err
	}

	if !elevated && !media.OwnedBy(requesterID) {
		return apperr.Forbidden("media belongs to another user")
	}
	if !media.IsTemp() {
		return apperr.Conflict("media is attached and cannot be removed directly")
	}

	if err := service.repo.Delete(context, id); err != nil {
		return err
	}

	if err := service.store.Destroy(context, media.PublicID); err != nil {
		service.logger.Warn("failed to destroy removed binary",
			slog.String("media_id", id),
			slog.String("public_id", media.PublicID),
			slog.String("error", err.Error()))
	}

	return nil
}

// CleanupExpired reclaims TEMP media created before the cutoff. It returns
// the number of assets removed. Individual failures are logged and skipped
// so one bad row cannot stall the sweep.
func (service *Service) CleanupExpired(context context.Context, cutoff time.Time, batchSize int) (int, error) {
	expired, err := service.repo.ListExpiredTemp(context, cutoff, batchSize)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, media := range expired {
		if err := service.repo.Delete(context, media.ID); err != nil {
			service.logger.Warn("failed to delete expired media row",
				slog.String("media_id", media.ID),
				slog.String("error", err.Error()))
			continue
		}

		if err := service.store.Destroy(context, media.PublicID); err != nil {
			service.logger.Warn("failed to destroy expired binary",
				slog.String("media_id", media.ID),
				slog.String("public_id", media.PublicID),
				slog.String("error", err.Error()))
		}

		removed++
	}

	return removed, nil
}
