// Copyright (c) 2026 Bibliora. All rights reserved.
// Author: ngocanh.tran.books@gmail.com

package media

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ngocanhtran/bibliora/internal/platform/apperr"
	"github.com/ngocanhtran/bibliora/internal/platform/database/schema"
	"github.com/ngocanhtran/bibliora/internal/platform/dberr"
)

// # PostgreSQL Repository

// postgresRepository implements the [Repository] interface using pgx.
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed media store.
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (repository *postgresRepository) Create(context context.Context, media *Media) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s, %s
	`,
		schema.CatalogMedia.Table,
		schema.CatalogMedia.ID, schema.CatalogMedia.URL, schema.CatalogMedia.PublicID,
		schema.CatalogMedia.Type, schema.CatalogMedia.Status, schema.CatalogMedia.UploadedBy,
		schema.CatalogMedia.OriginalName, schema.CatalogMedia.MimeType, schema.CatalogMedia.SizeBytes,
		schema.CatalogMedia.CreatedAt, schema.CatalogMedia.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		media.ID, media.URL, media.PublicID,
		media.Type, media.Status, media.UploadedBy,
		media.OriginalName, media.MimeType, media.SizeBytes,
	).Scan(&media.CreatedAt, &media.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "create_media")
	}

	return nil
}

func (repository *postgresRepository) GetByID(context context.Context, id string) (*Media, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(schema.CatalogMedia.Columns(), ", "),
		schema.CatalogMedia.Table, schema.CatalogMedia.ID,
	)

	media := &Media{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&media.ID, &media.URL, &media.PublicID, &media.Type, &media.Status,
		&media.UploadedBy, &media.AttachedToKind, &media.AttachedToID,
		&media.OriginalName, &media.MimeType, &media.SizeBytes,
		&media.CreatedAt, &media.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_media_by_id")
	}

	return media, nil
}

func (repository *postgresRepository) GetByIDs(context context.Context, ids []string) ([]*Media, error) {
	if len(ids) == 0 {
		return []*Media{}, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ANY($1)`,
		strings.Join(schema.CatalogMedia.Columns(), ", "),
		schema.CatalogMedia.Table, schema.CatalogMedia.ID,
	)

	rows, err := repository.pool.Query(context, query, ids)
	if err != nil {
		return nil, dberr.Wrap(err, "get_media_by_ids")
	}
	defer rows.Close()

	items := make([]*Media, 0, len(ids))
	for rows.Next() {
		media := &Media{}
		if err := rows.Scan(
			&media.ID, &media.URL, &media.PublicID, &media.Type, &media.Status,
			&media.UploadedBy, &media.AttachedToKind, &media.AttachedToID,
			&media.OriginalName, &media.MimeType, &media.SizeBytes,
			&media.CreatedAt, &media.UpdatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "scan_media")
		}
		items = append(items, media)
	}

	return items, rows.Err()
}

func (repository *postgresRepository) ListByUploader(context context.Context, uploaderID string, filter Filter, limit, offset int) ([]*Media, int, error) {
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`SELECT %s, COUNT(*) OVER() AS total FROM %s WHERE %s = $%d`,
		strings.Join(schema.CatalogMedia.Columns(), ", "),
		schema.CatalogMedia.Table, schema.CatalogMedia.UploadedBy, argID,
	))
	args = append(args, uploaderID)
	argID++

	if filter.Status != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = $%d", schema.CatalogMedia.Status, argID))
		args = append(args, filter.Status)
		argID++
	}
	if filter.Type != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = $%d", schema.CatalogMedia.Type, argID))
		args = append(args, filter.Type)
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s DESC LIMIT $%d OFFSET $%d",
		schema.CatalogMedia.CreatedAt, argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_media")
	}
	defer rows.Close()

	items := make([]*Media, 0, limit)
	total := 0

	for rows.Next() {
		media := &Media{}
		if err := rows.Scan(
			&media.ID, &media.URL, &media.PublicID, &media.Type, &media.Status,
			&media.UploadedBy, &media.AttachedToKind, &media.AttachedToID,
			&media.OriginalName, &media.MimeType, &media.SizeBytes,
			&media.CreatedAt, &media.UpdatedAt, &total,
		); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_media")
		}
		items = append(items, media)
	}

	return items, total, rows.Err()
}

func (repository *postgresRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.CatalogMedia.Table, schema.CatalogMedia.ID)

	response, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_media")
	}
	if response.RowsAffected() == 0 {
		return apperr.NotFound("media")
	}

	return nil
}

func (repository *postgresRepository) ListExpiredTemp(context context.Context, cutoff time.Time, limit int) ([]*Media, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1 AND %s < $2
		ORDER BY %s ASC
		LIMIT $3
	`,
		strings.Join(schema.CatalogMedia.Columns(), ", "),
		schema.CatalogMedia.Table,
		schema.CatalogMedia.Status, schema.CatalogMedia.CreatedAt,
		schema.CatalogMedia.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, StatusTemp, cutoff, limit)
	if err != nil {
		return nil, dberr.Wrap(err, "list_expired_media")
	}
	defer rows.Close()

	items := make([]*Media, 0, limit)
	for rows.Next() {
		media := &Media{}
		if err := rows.Scan(
			&media.ID, &media.URL, &media.PublicID, &media.Type, &media.Status,
			&media.UploadedBy, &media.AttachedToKind, &media.AttachedToID,
			&media.OriginalName, &media.MimeType, &media.SizeBytes,
			&media.CreatedAt, &media.UpdatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "scan_media")
		}
		items = append(items, media)
	}

	return items, rows.Err()
}
