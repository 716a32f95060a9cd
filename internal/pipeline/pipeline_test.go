//-------------------------------------------------------------------------
//
// pgEdge POS Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package pipeline

import (
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-posload/internal/model"
	"github.com/pgEdge/pgedge-posload/internal/source"
	"github.com/pgEdge/pgedge-posload/internal/validate"
)

func parse(t *testing.T, name, csv string) *source.Table {
	t.Helper()
	tbl, err := source.Parse(name, []byte(csv))
	if err != nil {
		t.Fatalf("Failed to parse %s: %v", name, err)
	}
	return tbl
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

const categoryCSV = `Category,01/01/2025-01/07/2025,01/08/2025-01/14/2025,Notes
Iced Coffee,"$1,200.00",$980.50,seasonal
Cinnamoney,$10.00,-$2.00,
pastries,,N/A,
`

func TestCategorySales(t *testing.T) {
	rows, rep, err := CategorySales(parse(t, "category.csv", categoryCSV), 10)
	if err != nil {
		t.Fatalf("CategorySales failed: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d: %+v", len(rows), rows)
	}
	if rows[0].Category != "Coffee" || !rows[0].Revenue.Equal(dec("1200")) {
		t.Errorf("Unexpected first row: %+v", rows[0])
	}
	if rows[2].Category != "Specialty Espresso" || !rows[2].Revenue.Equal(dec("10")) {
		t.Errorf("Unexpected third row: %+v", rows[2])
	}

	if rep.Candidates != 6 || rep.Loaded != 3 {
		t.Errorf("Expected 6 candidates and 3 loaded, got %d and %d", rep.Candidates, rep.Loaded)
	}
	if rep.Tally.Count(validate.GateNegative) != 1 {
		t.Errorf("Expected 1 negative rejection, got %d", rep.Tally.Count(validate.GateNegative))
	}
	if rep.Tally.Count(validate.GateMissing) != 1 || rep.Tally.Count(validate.GateInvalid) != 1 {
		t.Errorf("Unexpected gate counts: %v", rep.Tally.Counts())
	}
	if len(rep.SkippedColumns) != 1 || rep.SkippedColumns[0] != "Notes" {
		t.Errorf("Expected Notes skipped, got %v", rep.SkippedColumns)
	}
	for _, r := range rows {
		if r.Revenue.IsNegative() {
			t.Errorf("Negative revenue loaded: %+v", r)
		}
		if r.Period.End.Before(r.Period.Start) {
			t.Errorf("Reversed period loaded: %+v", r)
		}
	}
}

func TestCategorySalesMissingIdentity(t *testing.T) {
	_, _, err := CategorySales(parse(t, "category.csv", "Name,01/01/2025\nx,1\n"), 10)
	var mce *validate.MissingColumnsError
	if !errors.As(err, &mce) {
		t.Errorf("Expected *MissingColumnsError, got %v", err)
	}
}

const summaryCSV = `Sales,01/01/2025-01/07/2025
Gross Sales,"$5,000.00"
Refunds,-$5.00
Discounts/Comps,($12.50)
Net Sales,-$5.00
Gift Card Tip,$3.00
Total,"$9,999.00"
Card,$1.00
,$4.00
Sales Tax,
`

func TestSalesSummary(t *testing.T) {
	rows, rep, err := SalesSummary(parse(t, "summary.csv", summaryCSV), 10)
	if err != nil {
		t.Fatalf("SalesSummary failed: %v", err)
	}

	want := []struct {
		typ    model.SalesType
		label  string
		amount string
	}{
		{model.SalesTypeSale, "Gross Sales", "5000"},
		{model.SalesTypeRefund, "Refunds", "5"},
		{model.SalesTypeDiscount, "Discounts/Comps", "12.5"},
		{model.SalesTypeSale, "Net Sales", "-5"},
		{model.SalesTypeTip, "Gift Card Tip", "3"},
	}
	if len(rows) != len(want) {
		t.Fatalf("Expected %d rows, got %d: %+v", len(want), len(rows), rows)
	}
	for i, w := range want {
		if rows[i].SalesType != w.typ || rows[i].Label != w.label || !rows[i].Amount.Equal(dec(w.amount)) {
			t.Errorf("Row %d: expected %s/%s/%s, got %+v", i, w.typ, w.label, w.amount, rows[i])
		}
	}

	// Total, Card and the blank label are stoplisted; Sales Tax has no amount.
	if rep.Tally.Count(validate.GateStoplist) != 3 {
		t.Errorf("Expected 3 stoplisted rows, got %d", rep.Tally.Count(validate.GateStoplist))
	}
	if rep.Tally.Count(validate.GateMissing) != 1 {
		t.Errorf("Expected 1 missing amount, got %d", rep.Tally.Count(validate.GateMissing))
	}
}

func TestSalesSummarySignNormalization(t *testing.T) {
	rows, _, err := SalesSummary(parse(t, "summary.csv",
		"Sales,01/01/2025-01/07/2025\nRefunds,-5.00\nGross Sales,-5.00\n"), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if !rows[0].Amount.Equal(dec("5.00")) {
		t.Errorf("Expected refund stored as 5.00, got %s", rows[0].Amount)
	}
	if !rows[1].Amount.Equal(dec("-5.00")) {
		t.Errorf("Expected sale stored as -5.00, got %s", rows[1].Amount)
	}
}

const detailCSV = `Item,Category,Date,Time,Gross Sales,Discounts,Refunds,Modifiers-Applied,Channel,Card Brand,Transaction ID,Employee,Customer ID,Customer Name
Latte,Espresso Basics,01/02/2025,8:15 AM,$5.50,$0.50,,Oat Milk,Counter,Visa,T1,Sam,C1,Jane
Cold Brew,Cold Brew,01/02/2025,08:20:00,$4.00,,,,,Cash,T2,Sam,C1,Jane
Muffin,,01/02/2025,08:21,-$3.00,,,,,,T3,Sam,C2,Bo
Scone,Pastries,,08:22,$3.00,,,,,,T4,Sam,C2,Bo
Tea,,01/03/2025,later,$2.00,,,,,,T5,Ana,,
,Misc,01/03/2025,09:00,$1.00,,,,,,T6,Ana,,
Cookie,Bakery,2025-01-03,09:05,$2.25,bogus,-$1.00,,,,T7,Ana,C3,","
Bagel,Bakery,2025-01-03,09:06,$2.25,bogus,,,,,T8,Ana,C3,","
`

func TestDetailItems(t *testing.T) {
	rows, rep, err := DetailItems(parse(t, "items.csv", detailCSV), 10)
	if err != nil {
		t.Fatalf("DetailItems failed: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d: %+v", len(rows), rows)
	}

	latte := rows[0]
	if latte.ItemName != "Latte" || latte.Category != "Espresso" || latte.Channel != "Counter" ||
		latte.ModifiersApplied != "Oat Milk" || latte.CardBrand != "Visa" || latte.TransactionID != "T1" {
		t.Errorf("Unexpected latte row: %+v", latte)
	}
	if latte.Discounts == nil || !latte.Discounts.Equal(dec("0.50")) {
		t.Errorf("Expected discounts 0.50, got %v", latte.Discounts)
	}
	if latte.Refunds != nil {
		t.Errorf("Expected nil refunds, got %v", latte.Refunds)
	}

	if rows[1].Category != "Coffee" {
		t.Errorf("Expected Cold Brew mapped to Coffee, got %s", rows[1].Category)
	}
	bagel := rows[2]
	if bagel.ItemName != "Bagel" || bagel.Discounts != nil {
		t.Errorf("Expected Bagel with unparseable discount kept as NULL, got %+v", bagel)
	}

	for _, r := range rows {
		if r.GrossSales.IsNegative() {
			t.Errorf("Negative gross sales loaded: %+v", r)
		}
	}

	// Muffin and Cookie negative, Scone no date, Tea bad time, blank item.
	if rep.Tally.Count(validate.GateNegative) != 2 {
		t.Errorf("Expected 2 negative rejections, got %d", rep.Tally.Count(validate.GateNegative))
	}
	if rep.Tally.Count(validate.GateMissing) != 2 {
		t.Errorf("Expected 2 missing rejections, got %d", rep.Tally.Count(validate.GateMissing))
	}
	if rep.Tally.Count(validate.GateInvalid) != 1 {
		t.Errorf("Expected 1 invalid rejection, got %d", rep.Tally.Count(validate.GateInvalid))
	}
	if rep.Candidates != 8 || rep.Loaded != 3 {
		t.Errorf("Expected 8 candidates and 3 loaded, got %d and %d", rep.Candidates, rep.Loaded)
	}
}

func TestDetailItemsAmountBounds(t *testing.T) {
	csv := "item,date,time,gross_sales,discounts\n" +
		"Huge,01/02/2025,08:00,\"$12,345,678,901.00\",\n" +
		"Odd,01/02/2025,08:01,1.005,\n" +
		"Signed,01/02/2025,08:02,(-5.00),\n" +
		"BigDiscount,01/02/2025,08:03,$1.00,\"$99,999,999,999\"\n"
	rows, rep, err := DetailItems(parse(t, "items.csv", csv), 10)
	if err != nil {
		t.Fatal(err)
	}

	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d: %+v", len(rows), rows)
	}
	if rows[0].ItemName != "Odd" || !rows[0].GrossSales.Equal(dec("1.01")) {
		t.Errorf("Expected Odd rounded to 1.01, got %+v", rows[0])
	}
	if rep.Tally.Count(validate.GateOutOfRange) != 2 {
		t.Errorf("Expected 2 out of range rejections, got %d", rep.Tally.Count(validate.GateOutOfRange))
	}
	if rep.Tally.Count(validate.GateInvalid) != 1 {
		t.Errorf("Expected 1 invalid rejection, got %d", rep.Tally.Count(validate.GateInvalid))
	}
	if rep.Loaded != 1 || rep.Tally.Dropped() != 3 {
		t.Errorf("Expected 1 loaded and 3 dropped, got %d and %d", rep.Loaded, rep.Tally.Dropped())
	}
}

func TestWidePipelinesAmountBounds(t *testing.T) {
	cats, crep, err := CategorySales(parse(t, "category.csv",
		"Category,01/01/2025-01/07/2025\nIced Coffee,\"$12,345,678,901.00\"\nPastries,$9.999\n"), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 1 || !cats[0].Revenue.Equal(dec("10")) {
		t.Errorf("Expected one row rounded to 10, got %+v", cats)
	}
	if crep.Tally.Count(validate.GateOutOfRange) != 1 {
		t.Errorf("Expected 1 out of range category rejection, got %d", crep.Tally.Count(validate.GateOutOfRange))
	}

	sums, srep, err := SalesSummary(parse(t, "summary.csv",
		"Sales,01/01/2025-01/07/2025\nRefunds,\"-$10,000,000,000.00\"\nGross Sales,$5.00\n"), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 1 || sums[0].Label != "Gross Sales" {
		t.Errorf("Expected only Gross Sales kept, got %+v", sums)
	}
	if srep.Tally.Count(validate.GateOutOfRange) != 1 {
		t.Errorf("Expected 1 out of range summary rejection, got %d", srep.Tally.Count(validate.GateOutOfRange))
	}
}

func TestDetailItemsUncategorizedWithoutColumn(t *testing.T) {
	rows, _, err := DetailItems(parse(t, "items.csv",
		"item,date,time,gross_sales\nLatte,01/02/2025,08:00,4.00\n"), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Category != "Uncategorized" {
		t.Errorf("Expected one Uncategorized row, got %+v", rows)
	}
}

func TestDetailItemsMissingColumns(t *testing.T) {
	_, _, err := DetailItems(parse(t, "items.csv", "Item,Date,Gross Sales\nLatte,01/02/2025,1\n"), 0)
	var mce *validate.MissingColumnsError
	if !errors.As(err, &mce) {
		t.Fatalf("Expected *MissingColumnsError, got %v", err)
	}
	if len(mce.Columns) != 1 || mce.Columns[0] != "time" {
		t.Errorf("Expected [time] missing, got %v", mce.Columns)
	}
}

func TestCustomers(t *testing.T) {
	items, _, err := DetailItems(parse(t, "items.csv", detailCSV), 10)
	if err != nil {
		t.Fatal(err)
	}
	customers, rep := Customers(items, 10)
	if len(customers) != 1 || customers[0] != (model.Customer{ID: "C1", Name: "Jane"}) {
		t.Errorf("Expected [{C1 Jane}], got %v", customers)
	}
	if rep.Tally.Count(validate.GatePlaceholder) != 1 {
		t.Errorf("Expected 1 placeholder rejection, got %d", rep.Tally.Count(validate.GatePlaceholder))
	}
}

func TestPipelinesAreDeterministic(t *testing.T) {
	run := func() ([]model.CategorySale, []model.SalesSummaryEntry, []model.DetailItem) {
		c, _, err := CategorySales(parse(t, "category.csv", categoryCSV), 5)
		if err != nil {
			t.Fatal(err)
		}
		s, _, err := SalesSummary(parse(t, "summary.csv", summaryCSV), 5)
		if err != nil {
			t.Fatal(err)
		}
		d, _, err := DetailItems(parse(t, "items.csv", detailCSV), 5)
		if err != nil {
			t.Fatal(err)
		}
		return c, s, d
	}

	c1, s1, d1 := run()
	c2, s2, d2 := run()
	if !reflect.DeepEqual(c1, c2) || !reflect.DeepEqual(s1, s2) || !reflect.DeepEqual(d1, d2) {
		t.Error("Expected identical output for identical input")
	}
}
