// Copyright (c) 2026 Bibliora. All rights reserved.
// Author: ngocanh.tran.books@gmail.com

package book

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/ngocanhtran/bibliora/internal/platform/constants"
	"github.com/redis/go-redis/v9"
)

// # Slug Cache

// SlugCache is a read-through Redis cache for slug lookups, the hottest
// public read path. Mutations invalidate after commit, so a stale entry
// lives at most one TTL.
//
// Cache failures are soft: a broken Redis degrades to database reads and
// is only logged.
type SlugCache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewSlugCache constructs the cache. A nil client disables caching.
func NewSlugCache(client *redis.Client, logger *slog.Logger) *SlugCache {
	return &SlugCache{
		client: client,
		logger: logger,
	}
}

// Get returns the cached book for a slug, or nil on miss.
func (cache *SlugCache) Get(context context.Context, slug string) *Book {
	if cache.client == nil {
		return nil
	}

	payload, err := cache.client.Get(context, constants.RedisPrefixBookSlug+slug).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			cache.logger.Warn("slug cache read failed",
				slog.String("slug", slug), slog.String("error", err.Error()))
		}
		return nil
	}

	entry := &Book{}
	if err := json.Unmarshal(payload, entry); err != nil {
		// Poison entry: drop it and fall through to the database.
		cache.Invalidate(context, slug)
		return nil
	}

	return entry
}

// Set stores a book under its slug with the configured TTL.
func (cache *SlugCache) Set(context context.Context, entry *Book) {
	if cache.client == nil || entry == nil {
		return
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return
	}

	err = cache.client.Set(context, constants.RedisPrefixBookSlug+entry.Slug, payload, constants.BookSlugCacheTTL).Err()
	if err != nil {
		cache.logger.Warn("slug cache write failed",
			slog.String("slug", entry.Slug), slog.String("error", err.Error()))
	}
}

// Invalidate drops the cached entry for a slug.
func (cache *SlugCache) Invalidate(context context.Context, slug string) {
	if cache.client == nil || slug == "" {
		return
	}

	if err := cache.client.Del(context, constants.RedisPrefixBookSlug+slug).Err(); err != nil {
		cache.logger.Warn("slug cache invalidation failed",
			slog.String("slug", slug), slog.String("error", err.Error()))
	}
}
