// Copyright (c) 2026 Bibliora. All rights reserved.
// Author: ngocanh.tran.books@gmail.com

package book

import (
	"context"
	"log/slog"

	"github.com/ngocanhtran/bibliora/internal/platform/apperr"
	"github.com/ngocanhtran/bibliora/internal/platform/validate"
)

// # Public Read Service

// Service serves the storefront read paths.
type Service struct {
	repo   Repository
	cache  *SlugCache
	logger *slog.Logger
}

// NewService constructs the public book service.
func NewService(repo Repository, cache *SlugCache, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// List returns a filtered page of live books. Deleted-row scoping is forced
// off here regardless of what the filter says; only the admin surface may
// see the recycle bin.
func (service *Service) List(context context.Context, filter Filter, limit, offset int) ([]*Book, int, error) {
	filter.IncludeDeleted = false
	filter.OnlyDeleted = false

	return service.repo.List(context, filter, limit, offset)
}

// Get returns one live book by id. A soft-deleted book is reported as
// missing to public callers.
func (service *Service) Get(context context.Context, id string) (*Book, error) {
	validator := validate.New().UUID("id", id)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	entry, err := service.repo.GetByID(context, id)
	if err != nil {
		return nil, err
	}
	if entry.IsDeleted() {
		return nil, apperr.NotFound("book")
	}

	return entry, nil
}

// GetBySlug returns one live book by slug, read through the cache.
func (service *Service) GetBySlug(context context.Context, slug string) (*Book, error) {
	if entry := service.cache.Get(context, slug); entry != nil {
		return entry, nil
	}

	entry, err := service.repo.GetLiveBySlug(context, slug)
	if err != nil {
		return nil, err
	}

	service.cache.Set(context, entry)
	return entry, nil
}
