// Copyright (c) 2026 Bibliora. All rights reserved.
// Author: ngocanh.tran.books@gmail.com

package media

import (
	"context"
	"time"
)

// Repository is the persistence contract for media metadata.
type Repository interface {
	Create(context context.Context, media *Media) error
	GetByID(context context.Context, id string) (*Media, error)
	GetByIDs(context context.Context, ids []string) ([]*Media, error)
	ListByUploader(context context.Context, uploaderID string, filter Filter, limit, offset int) ([]*Media, int, error)
	Delete(context context.Context, id string) error

	// ListExpiredTemp returns TEMP media created before the cutoff,
	// oldest first, capped at limit.
	ListExpiredTemp(context context.Context, cutoff time.Time, limit int) ([]*Media, error)
}
