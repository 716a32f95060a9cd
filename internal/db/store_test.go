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
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-posload/internal/model"
)

func TestNumeric(t *testing.T) {
	n := numeric(decimal.RequireFromString("1234.56"))
	if !n.Valid || n.Exp != -2 || n.Int.Int64() != 123456 {
		t.Errorf("Expected 123456e-2, got %se%d", n.Int, n.Exp)
	}

	f, err := n.Float64Value()
	if err != nil {
		t.Fatal(err)
	}
	if f.Float64 != 1234.56 {
		t.Errorf("Expected 1234.56, got %v", f.Float64)
	}
}

func TestDetailItemRows(t *testing.T) {
	discount := decimal.RequireFromString("0.50")
	rows := detailItemRows([]model.DetailItem{{
		TransactionID: "T1",
		ItemName:      "Latte",
		Category:      "Espresso",
		Date:          time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		Time:          8*time.Hour + 15*time.Minute,
		GrossSales:    decimal.RequireFromString("5.50"),
		Discounts:     &discount,
		CustomerID:    "C1",
		CustomerName:  "Jane",
	}})

	if len(rows) != 1 || len(rows[0]) != len(detailItemColumns) {
		t.Fatalf("Expected one row of %d values, got %v", len(detailItemColumns), rows)
	}
	row := rows[0]

	if row[0] != "T1" || row[1] != "Latte" || row[2] != "Espresso" {
		t.Errorf("Unexpected leading values: %v", row[:3])
	}
	tod, ok := row[4].(pgtype.Time)
	if !ok || tod.Microseconds != (8*time.Hour+15*time.Minute).Microseconds() {
		t.Errorf("Unexpected time value: %#v", row[4])
	}
	if _, ok := row[6].(pgtype.Numeric); !ok {
		t.Errorf("Expected numeric discounts, got %#v", row[6])
	}
	if row[7] != nil {
		t.Errorf("Expected NULL refunds, got %#v", row[7])
	}
	if row[8] != nil || row[9] != nil {
		t.Errorf("Expected empty optional text to be NULL, got %#v %#v", row[8], row[9])
	}
	if row[12] != "C1" || row[13] != "Jane" {
		t.Errorf("Unexpected customer values: %v", row[12:])
	}
}

func TestSalesSummaryRows(t *testing.T) {
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := salesSummaryRows([]model.SalesSummaryEntry{{
		SalesType: model.SalesTypeRefund,
		Label:     "Refunds",
		Period:    model.Period{Start: day, End: day},
		Amount:    decimal.RequireFromString("5"),
	}})
	if rows[0][0] != "Refund" || rows[0][1] != "Refunds" {
		t.Errorf("Unexpected row: %v", rows[0])
	}
	if d, ok := rows[0][2].(pgtype.Date); !ok || !d.Time.Equal(day) {
		t.Errorf("Unexpected period start: %#v", rows[0][2])
	}
}

func TestDefaultSchema(t *testing.T) {
	for _, table := range []string{"category_sales", "sales_summary", "detail_items", "customers"} {
		if !strings.Contains(DefaultSchema, "DROP TABLE IF EXISTS "+table) {
			t.Errorf("Expected schema to drop %s", table)
		}
		if !strings.Contains(DefaultSchema, "CREATE TABLE "+table) {
			t.Errorf("Expected schema to create %s", table)
		}
	}
	if strings.Contains(DefaultSchema, metadataTable) {
		t.Error("Expected metadata table to stay out of the destructive schema")
	}
}
