// Copyright (c) 2026 Bibliora. All rights reserved.
// Author: ngocanh.tran.books@gmail.com

package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
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

// NewPostgresRepository constructs a PostgreSQL backed stock store.
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (repository *postgresRepository) ListByBook(context context.Context, bookID string) ([]*Stock, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s ASC`,
		strings.Join(schema.CatalogStock.Columns(), ", "),
		schema.CatalogStock.Table, schema.CatalogStock.BookID, schema.CatalogStock.Location,
	)

	rows, err := repository.pool.Query(context, query, bookID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_stock")
	}
	defer rows.Close()

	items := make([]*Stock, 0, 1)
	for rows.Next() {
		stock := &Stock{}
		if err := rows.Scan(
			&stock.ID, &stock.BookID, &stock.Quantity, &stock.Location,
			&stock.ImportPrice, &stock.Status, &stock.LastUpdated,
		); err != nil {
			return nil, dberr.Wrap(err, "scan_stock")
		}
		items = append(items, stock)
	}

	return items, rows.Err()
}

/*
Adjust applies a signed quantity delta atomically.

Description: The guard lives in the UPDATE's WHERE clause, so two concurrent
decrements can never take the quantity negative: the second statement simply
matches no row and is reported as a conflict.
*/
func (repository *postgresRepository) Adjust(context context.Context, bookID, location string, delta int) (*Stock, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = %s + $3, %s = NOW()
		WHERE %s = $1 AND %s = $2 AND %s + $3 >= 0
		RETURNING %s
	`,
		schema.CatalogStock.Table,
		schema.CatalogStock.Quantity, schema.CatalogStock.Quantity, schema.CatalogStock.LastUpdated,
		schema.CatalogStock.BookID, schema.CatalogStock.Location, schema.CatalogStock.Quantity,
		strings.Join(schema.CatalogStock.Columns(), ", "),
	)

	stock := &Stock{}
	err := repository.pool.QueryRow(context, query, bookID, location, delta).Scan(
		&stock.ID, &stock.BookID, &stock.Quantity, &stock.Location,
		&stock.ImportPrice, &stock.Status, &stock.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.classifyAdjustMiss(context, bookID, location)
		}
		return nil, dberr.Wrap(err, "adjust_stock")
	}

	return stock, nil
}

// classifyAdjustMiss distinguishes a missing row from an insufficient
// quantity after a guarded UPDATE matched nothing.
func (repository *postgresRepository) classifyAdjustMiss(context context.Context, bookID, location string) error {
	query := fmt.Sprintf(`SELECT 1 FROM %s WHERE %s = $1 AND %s = $2`,
		schema.CatalogStock.Table, schema.CatalogStock.BookID, schema.CatalogStock.Location)

	var one int
	err := repository.pool.QueryRow(context, query, bookID, location).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("stock")
	}
	if err != nil {
		return dberr.Wrap(err, "adjust_stock")
	}

	return apperr.Conflict("insufficient stock quantity")
}

func (repository *postgresRepository) SetImportPrice(context context.Context, bookID, location string, price float64) (*Stock, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $3, %s = NOW()
		WHERE %s = $1 AND %s = $2
		RETURNING %s
	`,
		schema.CatalogStock.Table,
		schema.CatalogStock.ImportPrice, schema.CatalogStock.LastUpdated,
		schema.CatalogStock.BookID, schema.CatalogStock.Location,
		strings.Join(schema.CatalogStock.Columns(), ", "),
	)

	stock := &Stock{}
	err := repository.pool.QueryRow(context, query, bookID, location, price).Scan(
		&stock.ID, &stock.BookID, &stock.Quantity, &stock.Location,
		&stock.ImportPrice, &stock.Status, &stock.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("stock")
		}
		return nil, dberr.Wrap(err, "set_import_price")
	}

	return stock, nil
}
