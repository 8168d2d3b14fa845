// Copyright (c) 2026 Bibliora. All rights reserved.
// Author: ngocanh.tran.books@gmail.com

/*
Package book implements the catalog entry core: creation, scalar updates,
media attachment and the soft-delete/restore lifecycle.

Every mutation runs inside a single PostgreSQL transaction covering the
entry row, its image rows, the inventory row and the media status flips, so
readers never observe a half-applied state. Media claims are status-guarded
("set ATTACHED only where currently TEMP") which makes concurrent claims of
the same asset lose cleanly with zero rows affected instead of corrupting
another entry's attachment.
*/
package book

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ngocanhtran/bibliora/internal/catalog/media"
	"github.com/ngocanhtran/bibliora/internal/platform/apperr"
	"github.com/ngocanhtran/bibliora/internal/platform/database/schema"
	"github.com/ngocanhtran/bibliora/internal/platform/dberr"
	uuid "github.com/ngocanhtran/bibliora/pkg/uuid"
)

// # PostgreSQL Repository

// postgresRepository implements the [Repository] interface using pgx.
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed book store.
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

// bookSelectColumns is the scalar column list shared by every read, aliased
// to the entry table as "b".
const bookSelectColumns = `
	b.id, b.title, b.subtitle, b.slug, b.description, b.authors, b.language,
	b.format, b.publishdate, b.pagecount, b.isbn, b.publisherid, b.categoryids,
	b.baseprice, b.originalprice, b.currency, b.thumbnailurl, b.status, b.tags,
	b.soldcount, b.stockonhand, b.stockreserved, b.createdat, b.updatedat,
	b.deletedat, b.deletedby, b.restoredat, b.restoredby`

// bookImagesSubquery aggregates the ordered image rows into a JSON array so
// hydrating a page of books stays a single round-trip.
const bookImagesSubquery = `
	COALESCE((
		SELECT json_agg(json_build_object(
			'media_id', i.mediaid, 'url', i.url, 'kind', i.kind, 'position', i.position
		) ORDER BY i.position)
		FROM catalog.bookimage i
		WHERE i.bookid = b.id
	), '[]') AS images`

// bookInsertQuery writes the 19 caller-supplied scalar columns of a new
// entry; createdat/updatedat come back from their column defaults.
var bookInsertQuery = fmt.Sprintf(`
	INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	RETURNING %s, %s
`,
	schema.CatalogBook.Table,
	schema.CatalogBook.ID, schema.CatalogBook.Title, schema.CatalogBook.Subtitle,
	schema.CatalogBook.Slug, schema.CatalogBook.Description, schema.CatalogBook.Authors,
	schema.CatalogBook.Language, schema.CatalogBook.Format, schema.CatalogBook.PublishDate,
	schema.CatalogBook.PageCount, schema.CatalogBook.ISBN, schema.CatalogBook.PublisherID,
	schema.CatalogBook.CategoryIDs, schema.CatalogBook.BasePrice, schema.CatalogBook.OriginalPrice,
	schema.CatalogBook.Currency, schema.CatalogBook.ThumbnailURL, schema.CatalogBook.Status,
	schema.CatalogBook.Tags,
	schema.CatalogBook.CreatedAt, schema.CatalogBook.UpdatedAt,
)

// bookUpdateQuery rewrites the 18 mutable scalar columns ($2-$19) of a live
// entry; $1 is the entry id and updatedat is stamped by the database.
var bookUpdateQuery = fmt.Sprintf(`
	UPDATE %s SET
		%s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8,
		%s = $9, %s = $10, %s = $11, %s = $12, %s = $13, %s = $14,
		%s = $15, %s = $16, %s = $17, %s = $18, %s = $19, %s = NOW()
	WHERE %s = $1 AND %s IS NULL
`,
	schema.CatalogBook.Table,
	schema.CatalogBook.Title, schema.CatalogBook.Subtitle, schema.CatalogBook.Slug,
	schema.CatalogBook.Description, schema.CatalogBook.Authors, schema.CatalogBook.Language,
	schema.CatalogBook.Format, schema.CatalogBook.PublishDate, schema.CatalogBook.PageCount,
	schema.CatalogBook.ISBN, schema.CatalogBook.PublisherID, schema.CatalogBook.CategoryIDs,
	schema.CatalogBook.BasePrice, schema.CatalogBook.OriginalPrice, schema.CatalogBook.Currency,
	schema.CatalogBook.ThumbnailURL, schema.CatalogBook.Status, schema.CatalogBook.Tags,
	schema.CatalogBook.UpdatedAt,
	schema.CatalogBook.ID, schema.CatalogBook.DeletedAt,
)

// scanBook reads one row produced with [bookSelectColumns] + images, plus
// any extra scan targets appended by the caller (e.g. a window count).
func scanBook(row pgx.Row, extra ...any) (*Book, error) {
	entry := &Book{}
	var imagesJSON []byte

	targets := []any{
		&entry.ID, &entry.Title, &entry.Subtitle, &entry.Slug, &entry.Description,
		&entry.Authors, &entry.Language, &entry.Format, &entry.PublishDate,
		&entry.PageCount, &entry.ISBN, &entry.PublisherID, &entry.CategoryIDs,
		&entry.BasePrice, &entry.OriginalPrice, &entry.Currency, &entry.ThumbnailURL,
		&entry.Status, &entry.Tags, &entry.SoldCount, &entry.StockOnHand,
		&entry.StockReserved, &entry.CreatedAt, &entry.UpdatedAt,
		&entry.DeletedAt, &entry.DeletedBy, &entry.RestoredAt, &entry.RestoredBy,
		&imagesJSON,
	}
	targets = append(targets, extra...)

	if err := row.Scan(targets...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(imagesJSON, &entry.Images); err != nil {
		return nil, fmt.Errorf("postgres: failed to decode book images: %w", err)
	}

	return entry, nil
}

// # Reads

func (repository *postgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Book, int, error) {

	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(`SELECT` + bookSelectColumns + `,
	COUNT(*) OVER() AS total,` + bookImagesSubquery + `
	FROM catalog.book b
	WHERE 1=1`)

	// Lifecycle scoping: public listings see live rows only.
	switch {
	case filter.OnlyDeleted:
		queryBuilder.WriteString(" AND b.deletedat IS NOT NULL")
	case !filter.IncludeDeleted:
		queryBuilder.WriteString(" AND b.deletedat IS NULL")
	}

	if filter.Search != "" {
		queryBuilder.WriteString(fmt.Sprintf(
			" AND (b.title ILIKE '%%' || $%d || '%%' OR EXISTS (SELECT 1 FROM unnest(b.authors) a WHERE a ILIKE '%%' || $%d || '%%'))",
			argID, argID))
		args = append(args, filter.Search)
		argID++
	}

	if filter.CategoryID != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND $%d = ANY(b.categoryids)", argID))
		args = append(args, filter.CategoryID)
		argID++
	}

	if filter.PublisherID != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND b.publisherid = $%d", argID))
		args = append(args, filter.PublisherID)
		argID++
	}

	if len(filter.Status) > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" AND b.status = ANY($%d)", argID))
		args = append(args, filter.Status)
		argID++
	}

	sort := "b.createdat DESC"
	switch filter.Sort {
	case "oldest":
		sort = "b.createdat ASC"
	case "price_asc":
		sort = "b.baseprice ASC"
	case "price_desc":
		sort = "b.baseprice DESC"
	case "bestselling":
		sort = "b.soldcount DESC"
	}
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s, b.id DESC", sort))

	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_books")
	}
	defer rows.Close()

	books := make([]*Book, 0, limit)
	total := 0

	for rows.Next() {
		entry, err := scanBook(rows, &total)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_book")
		}
		books = append(books, entry)
	}

	return books, total, rows.Err()
}

func (repository *postgresRepository) GetByID(context context.Context, id string) (*Book, error) {
	query := `SELECT` + bookSelectColumns + `,` + bookImagesSubquery + `
	FROM catalog.book b WHERE b.id = $1`

	entry, err := scanBook(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_book_by_id")
	}

	return entry, nil
}

func (repository *postgresRepository) GetLiveBySlug(context context.Context, slug string) (*Book, error) {
	query := `SELECT` + bookSelectColumns + `,` + bookImagesSubquery + `
	FROM catalog.book b WHERE b.slug = $1 AND b.deletedat IS NULL`

	entry, err := scanBook(repository.pool.QueryRow(context, query, slug))
	if err != nil {
		return nil, dberr.Wrap(err, "get_book_by_slug")
	}

	return entry, nil
}

// # Uniqueness Checks

func (repository *postgresRepository) SlugExists(context context.Context, slug, excludeID string) (bool, error) {
	return repository.liveFieldExists(context, schema.CatalogBook.Slug, slug, excludeID, "check_slug")
}

func (repository *postgresRepository) ISBNExists(context context.Context, isbn, excludeID string) (bool, error) {
	return repository.liveFieldExists(context, schema.CatalogBook.ISBN, isbn, excludeID, "check_isbn")
}

// liveFieldExists reports whether a live (non-deleted) row other than
// excludeID carries the given value in the named column.
func (repository *postgresRepository) liveFieldExists(context context.Context, column, value, excludeID, action string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s IS NULL`,
		schema.CatalogBook.Table, column, schema.CatalogBook.DeletedAt)
	args := []any{value}

	if excludeID != "" {
		query += fmt.Sprintf(" AND %s <> $2", schema.CatalogBook.ID)
		args = append(args, excludeID)
	}
	query += ")"

	var exists bool
	if err := repository.pool.QueryRow(context, query, args...).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, action)
	}

	return exists, nil
}

// # Mutations

/*
Create inserts a catalog entry with its images, inventory seed and media
claims in one transaction.

Description: The insert order is entry, image rows, stock row, media claims.
A unique violation on the partial slug/ISBN indexes rolls everything back
and surfaces as the same CONFLICT the fast-path check produces, so racing
creates lose cleanly. The media claim is status-guarded: fewer matched rows
than requested means another transaction claimed an asset first, and the
whole create aborts with CONFLICT.
*/
func (repository *postgresRepository) Create(context context.Context, book *Book, stock InitialStock, attachIDs []string) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin create transaction: %w", err)
	}

	// Rollback is a no-op after a successful commit.
	defer transaction.Rollback(context)

	err = transaction.QueryRow(context, bookInsertQuery,
		book.ID, book.Title, book.Subtitle, book.Slug, book.Description, book.Authors,
		book.Language, book.Format, book.PublishDate, book.PageCount, book.ISBN,
		book.PublisherID, book.CategoryIDs, book.BasePrice, book.OriginalPrice,
		book.Currency, book.ThumbnailURL, book.Status, book.Tags,
	).Scan(&book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "create_book")
	}

	if err := repository.insertImages(context, transaction, book.ID, book.Images); err != nil {
		return err
	}

	stockQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		schema.CatalogStock.Table,
		schema.CatalogStock.ID, schema.CatalogStock.BookID, schema.CatalogStock.Quantity,
		schema.CatalogStock.Location, schema.CatalogStock.ImportPrice, schema.CatalogStock.Status,
	)

	_, err = transaction.Exec(context, stockQuery,
		uuid.New(), book.ID, stock.Quantity, stock.Location, stock.ImportPrice, "available")
	if err != nil {
		return dberr.Wrap(err, "create_stock")
	}

	if err := repository.attachMedia(context, transaction, book.ID, attachIDs); err != nil {
		return err
	}

	if err := transaction.Commit(context); err != nil {
		return dberr.Wrap(err, "commit_create_book")
	}

	return nil
}

/*
Update saves the entry's scalars and applies a media plan atomically.

Description: The image rows are wiped and re-inserted from plan.Images (the
junction sync pattern), then plan.AttachIDs are claimed with the status
guard and plan.DetachIDs released. The release predicate is scoped to this
entry id, so a detach of an asset that has since been reassigned to another
entry matches zero rows and is a silent no-op rather than a theft.
*/
func (repository *postgresRepository) Update(context context.Context, book *Book, plan media.Plan) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin update transaction: %w", err)
	}
	defer transaction.Rollback(context)

	response, err := transaction.Exec(context, bookUpdateQuery,
		book.ID, book.Title, book.Subtitle, book.Slug, book.Description, book.Authors,
		book.Language, book.Format, book.PublishDate, book.PageCount, book.ISBN,
		book.PublisherID, book.CategoryIDs, book.BasePrice, book.OriginalPrice,
		book.Currency, book.ThumbnailURL, book.Status, book.Tags,
	)
	if err != nil {
		return dberr.Wrap(err, "update_book")
	}
	if response.RowsAffected() == 0 {
		return apperr.NotFound("book")
	}

	wipeQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.CatalogBookImage.Table, schema.CatalogBookImage.BookID)
	if _, err := transaction.Exec(context, wipeQuery, book.ID); err != nil {
		return dberr.Wrap(err, "wipe_book_images")
	}

	if err := repository.insertImages(context, transaction, book.ID, plan.Images); err != nil {
		return err
	}

	if err := repository.attachMedia(context, transaction, book.ID, plan.AttachIDs); err != nil {
		return err
	}

	if err := repository.detachMedia(context, transaction, book.ID, plan.DetachIDs); err != nil {
		return err
	}

	if err := transaction.Commit(context); err != nil {
		return dberr.Wrap(err, "commit_update_book")
	}

	return nil
}

/*
SoftDelete marks an entry deleted and deactivates its stock rows.

Description: The entry row is locked first so the lifecycle check and the
transition commit as one unit. A second delete is rejected rather than
absorbed — the strict policy keeps audit fields (deletedby, deletedat)
truthful about who performed the one real transition.
*/
func (repository *postgresRepository) SoftDelete(context context.Context, id, staffID string) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin delete transaction: %w", err)
	}
	defer transaction.Rollback(context)

	deletedAt, err := repository.lockLifecycle(context, transaction, id)
	if err != nil {
		return err
	}
	if deletedAt != nil {
		return apperr.ValidationError("book is already deleted")
	}

	deleteQuery := fmt.Sprintf(`
		UPDATE %s SET %s = NOW(), %s = $2, %s = NOW() WHERE %s = $1
	`,
		schema.CatalogBook.Table,
		schema.CatalogBook.DeletedAt, schema.CatalogBook.DeletedBy, schema.CatalogBook.UpdatedAt,
		schema.CatalogBook.ID,
	)
	if _, err := transaction.Exec(context, deleteQuery, id, nullableID(staffID)); err != nil {
		return dberr.Wrap(err, "soft_delete_book")
	}

	// Quantity stays as-is: only the sellable flag flips.
	if err := repository.setStockStatus(context, transaction, id, "inactive"); err != nil {
		return err
	}

	if err := transaction.Commit(context); err != nil {
		return dberr.Wrap(err, "commit_delete_book")
	}

	return nil
}

// Restore reverses a soft delete. Stock rows return to available with
// whatever quantity they held; replenishment is a manual follow-up.
func (repository *postgresRepository) Restore(context context.Context, id, staffID string) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin restore transaction: %w", err)
	}
	defer transaction.Rollback(context)

	deletedAt, err := repository.lockLifecycle(context, transaction, id)
	if err != nil {
		return err
	}
	if deletedAt == nil {
		return apperr.ValidationError("book is not deleted")
	}

	restoreQuery := fmt.Sprintf(`
		UPDATE %s SET %s = NULL, %s = NULL, %s = NOW(), %s = $2, %s = NOW() WHERE %s = $1
	`,
		schema.CatalogBook.Table,
		schema.CatalogBook.DeletedAt, schema.CatalogBook.DeletedBy,
		schema.CatalogBook.RestoredAt, schema.CatalogBook.RestoredBy, schema.CatalogBook.UpdatedAt,
		schema.CatalogBook.ID,
	)
	if _, err := transaction.Exec(context, restoreQuery, id, nullableID(staffID)); err != nil {
		return dberr.Wrap(err, "restore_book")
	}

	if err := repository.setStockStatus(context, transaction, id, "available"); err != nil {
		return err
	}

	if err := transaction.Commit(context); err != nil {
		return dberr.Wrap(err, "commit_restore_book")
	}

	return nil
}

// # Transaction Helpers

// lockLifecycle row-locks an entry and returns its deletedat marker.
func (repository *postgresRepository) lockLifecycle(context context.Context, transaction pgx.Tx, id string) (*time.Time, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 FOR UPDATE`,
		schema.CatalogBook.DeletedAt, schema.CatalogBook.Table, schema.CatalogBook.ID)

	var deletedAt *time.Time
	if err := transaction.QueryRow(context, query, id).Scan(&deletedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("book")
		}
		return nil, dberr.Wrap(err, "lock_book")
	}

	return deletedAt, nil
}

// insertImages batch-inserts the ordered image rows for an entry.
func (repository *postgresRepository) insertImages(context context.Context, transaction pgx.Tx, bookID string, images []media.Image) error {
	if len(images) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5)`,
		schema.CatalogBookImage.Table,
		schema.CatalogBookImage.BookID, schema.CatalogBookImage.MediaID,
		schema.CatalogBookImage.Kind, schema.CatalogBookImage.URL, schema.CatalogBookImage.Position,
	)

	batch := &pgx.Batch{}
	for _, image := range images {
		batch.Queue(query, bookID, image.MediaID, string(image.Kind), image.URL, image.Position)
	}

	results := transaction.SendBatch(context, batch)
	defer results.Close()

	for range images {
		if _, err := results.Exec(); err != nil {
			return dberr.Wrap(err, "insert_book_image")
		}
	}

	return results.Close()
}

// attachMedia claims media assets for the entry. The WHERE clause only
// matches TEMP rows; a shortfall means a concurrent claim won and the
// caller's transaction must abort.
func (repository *postgresRepository) attachMedia(context context.Context, transaction pgx.Tx, bookID string, mediaIDs []string) error {
	if len(mediaIDs) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE %s SET %s = $1, %s = 'book', %s = $2, %s = NOW()
		WHERE %s = ANY($3) AND %s = $4
	`,
		schema.CatalogMedia.Table,
		schema.CatalogMedia.Status, schema.CatalogMedia.AttachedToKind,
		schema.CatalogMedia.AttachedToID, schema.CatalogMedia.UpdatedAt,
		schema.CatalogMedia.ID, schema.CatalogMedia.Status,
	)

	response, err := transaction.Exec(context, query, media.StatusAttached, bookID, mediaIDs, media.StatusTemp)
	if err != nil {
		return dberr.Wrap(err, "attach_media")
	}
	if response.RowsAffected() != int64(len(mediaIDs)) {
		return apperr.Conflict("media is no longer available for attachment")
	}

	return nil
}

// detachMedia releases assets back to TEMP, scoped to this entry so a
// stale id cannot strip media from another entry.
func (repository *postgresRepository) detachMedia(context context.Context, transaction pgx.Tx, bookID string, mediaIDs []string) error {
	if len(mediaIDs) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE %s SET %s = $1, %s = NULL, %s = NULL, %s = NOW()
		WHERE %s = ANY($2) AND %s = 'book' AND %s = $3
	`,
		schema.CatalogMedia.Table,
		schema.CatalogMedia.Status, schema.CatalogMedia.AttachedToKind,
		schema.CatalogMedia.AttachedToID, schema.CatalogMedia.UpdatedAt,
		schema.CatalogMedia.ID, schema.CatalogMedia.AttachedToKind, schema.CatalogMedia.AttachedToID,
	)

	if _, err := transaction.Exec(context, query, media.StatusTemp, mediaIDs, bookID); err != nil {
		return dberr.Wrap(err, "detach_media")
	}

	return nil
}

// setStockStatus flips every stock row of a book to the given status.
func (repository *postgresRepository) setStockStatus(context context.Context, transaction pgx.Tx, bookID, status string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		schema.CatalogStock.Table,
		schema.CatalogStock.Status, schema.CatalogStock.LastUpdated, schema.CatalogStock.BookID,
	)

	if _, err := transaction.Exec(context, query, bookID, status); err != nil {
		return dberr.Wrap(err, "set_stock_status")
	}

	return nil
}

// nullableID maps an empty id string to SQL NULL for uuid columns.
func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}
