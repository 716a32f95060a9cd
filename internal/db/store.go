//-------------------------------------------------------------------------
//
// pgEdge POS Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-posload/internal/logging"
	"github.com/pgEdge/pgedge-posload/internal/model"
	"github.com/pgEdge/pgedge-posload/internal/pipeline"
)

// DefaultSchema is the destination schema shipped with the tool. It drops
// and recreates every destination table.
//
//go:embed schema.sql
var DefaultSchema string

var (
	categorySalesColumns = []string{"category", "period_start", "period_end", "revenue"}
	salesSummaryColumns  = []string{"sales_type", "label", "period_start", "period_end", "amount"}
	detailItemColumns    = []string{
		"transaction_id", "item_name", "category", "sale_date", "sale_time",
		"gross_sales", "discounts", "refunds", "modifiers_applied", "channel",
		"card_brand", "employee", "customer_id", "customer_name",
	}
	customerColumns = []string{"customer_id", "customer_name"}
)

// Store writes cleaned datasets to PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a store on an open pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Load resets the schema and writes every table in one transaction. On any
// error the transaction is rolled back and the destination is unchanged.
func (s *Store) Load(ctx context.Context, schemaSQL string, ds *model.Dataset, metadata map[string]string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// No-op once committed.
	defer func() { _ = tx.Rollback(ctx) }()

	if err := WriteDataset(ctx, tx, schemaSQL, ds); err != nil {
		return err
	}
	if err := SaveMetadata(ctx, tx, metadata); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit load: %w", err)
	}
	return nil
}

// WriteDataset executes the schema then copies each table, in order:
// category sales, sales summary, detail items, customers.
func WriteDataset(ctx context.Context, tx pgx.Tx, schemaSQL string, ds *model.Dataset) error {
	start := time.Now()
	if _, err := tx.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", pgError(err))
	}
	logging.Debug().Dur("duration", time.Since(start)).Msg("Schema reset")

	if err := copyTable(ctx, tx, pipeline.TableCategorySales, categorySalesColumns,
		categorySalesRows(ds.CategorySales)); err != nil {
		return err
	}
	if err := copyTable(ctx, tx, pipeline.TableSalesSummary, salesSummaryColumns,
		salesSummaryRows(ds.SalesSummary)); err != nil {
		return err
	}
	if err := copyTable(ctx, tx, pipeline.TableDetailItems, detailItemColumns,
		detailItemRows(ds.DetailItems)); err != nil {
		return err
	}
	return ReplaceCustomers(ctx, tx, ds.Customers)
}

// ReplaceCustomers empties the customer table and fills it again.
func ReplaceCustomers(ctx context.Context, tx pgx.Tx, customers []model.Customer) error {
	if _, err := tx.Exec(ctx, "DELETE FROM customers"); err != nil {
		return fmt.Errorf("failed to clear customers: %w", pgError(err))
	}
	rows := make([][]any, len(customers))
	for i, c := range customers {
		rows[i] = []any{c.ID, c.Name}
	}
	return copyTable(ctx, tx, pipeline.TableCustomers, customerColumns, rows)
}

func copyTable(ctx context.Context, tx pgx.Tx, table string, columns []string, rows [][]any) error {
	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to copy into %s: %w", table, pgError(err))
	}
	logging.Debug().
		Str("table", table).
		Int64("rows", n).
		Msg("Copied rows")
	return nil
}

// pgError adds the server's detail to an error when there is one.
func pgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("%w (%s, %s)", err, pgErr.Detail, pgErr.SQLState())
	}
	return err
}

func categorySalesRows(in []model.CategorySale) [][]any {
	rows := make([][]any, len(in))
	for i, r := range in {
		rows[i] = []any{
			r.Category, date(r.Period.Start), date(r.Period.End), numeric(r.Revenue),
		}
	}
	return rows
}

func salesSummaryRows(in []model.SalesSummaryEntry) [][]any {
	rows := make([][]any, len(in))
	for i, r := range in {
		rows[i] = []any{
			string(r.SalesType), r.Label, date(r.Period.Start), date(r.Period.End), numeric(r.Amount),
		}
	}
	return rows
}

func detailItemRows(in []model.DetailItem) [][]any {
	rows := make([][]any, len(in))
	for i, r := range in {
		rows[i] = []any{
			text(r.TransactionID), r.ItemName, r.Category, date(r.Date), timeOfDay(r.Time),
			numeric(r.GrossSales), optionalNumeric(r.Discounts), optionalNumeric(r.Refunds),
			text(r.ModifiersApplied), text(r.Channel), text(r.CardBrand), text(r.Employee),
			text(r.CustomerID), text(r.CustomerName),
		}
	}
	return rows
}

func numeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

func optionalNumeric(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return numeric(*d)
}

func date(t time.Time) pgtype.Date {
	return pgtype.Date{Time: t, Valid: true}
}

func timeOfDay(d time.Duration) pgtype.Time {
	return pgtype.Time{Microseconds: d.Microseconds(), Valid: true}
}

// text maps empty optional strings to NULL.
func text(s string) any {
	if s == "" {
		return nil
	}
	return s
}
