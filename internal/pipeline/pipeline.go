//-------------------------------------------------------------------------
//
// pgEdge POS Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package pipeline turns parsed export tables into cleaned destination
// rows. Each pipeline is pure: it reads a source.Table and returns records
// plus a Report of what was dropped. Only missing required columns are
// fatal; bad rows are counted and skipped.
package pipeline

import (
	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-posload/internal/coerce"
	"github.com/pgEdge/pgedge-posload/internal/model"
	"github.com/pgEdge/pgedge-posload/internal/reshape"
	"github.com/pgEdge/pgedge-posload/internal/source"
	"github.com/pgEdge/pgedge-posload/internal/validate"
	"github.com/pgEdge/pgedge-posload/internal/vocab"
)

// Destination table names.
const (
	TableCategorySales = "category_sales"
	TableSalesSummary  = "sales_summary"
	TableDetailItems   = "detail_items"
	TableCustomers     = "customers"
)

// Identity columns of the wide exports.
const (
	CategoryColumn = "Category"
	SalesColumn    = "Sales"
)

// Detail item columns, after header normalization.
const (
	colItem             = "item"
	colCategory         = "category"
	colDate             = "date"
	colTime             = "time"
	colGrossSales       = "gross_sales"
	colDiscounts        = "discounts"
	colRefunds          = "refunds"
	colModifiersApplied = "modifiers_applied"
	colChannel          = "channel"
	colCardBrand        = "card_brand"
	colTransactionID    = "transaction_id"
	colEmployee         = "employee"
	colCustomerID       = "customer_id"
	colCustomerName     = "customer_name"
)

// DetailRequiredColumns must be present in the detail items export.
var DetailRequiredColumns = []string{colItem, colDate, colTime, colGrossSales}

// Report describes one table's pipeline run.
type Report struct {
	Table string
	// Candidates is the number of records considered, after any pivot.
	Candidates int
	Loaded     int
	// SkippedColumns lists wide-export headers that were not periods.
	SkippedColumns []string
	Tally          *validate.Tally
}

func newReport(table string, sampleLimit int) *Report {
	return &Report{Table: table, Tally: validate.NewTally(sampleLimit)}
}

func reject(r *Report, line int, gate, column, value string) {
	r.Tally.Reject(validate.Rejection{Line: line, Gate: gate, Column: column, Value: value})
}

// gateFor maps a failed coercion onto the gate that drops it.
func gateFor(s coerce.State) string {
	if s == coerce.Missing {
		return validate.GateMissing
	}
	return validate.GateInvalid
}

// CategorySales cleans the wide category sales export.
func CategorySales(t *source.Table, sampleLimit int) ([]model.CategorySale, *Report, error) {
	rep := newReport(TableCategorySales, sampleLimit)
	m, err := reshape.Melt(t, CategoryColumn)
	if err != nil {
		return nil, nil, err
	}
	rep.SkippedColumns = m.Skipped
	rep.Candidates = len(m.Rows)

	out := make([]model.CategorySale, 0, len(m.Rows))
	for _, lr := range m.Rows {
		revenue := coerce.Money(lr.Value)
		if !revenue.OK() {
			reject(rep, lr.Line, gateFor(revenue.State), lr.Header, lr.Value)
			continue
		}
		if !validate.NonNegative(revenue.Value) {
			reject(rep, lr.Line, validate.GateNegative, lr.Header, lr.Value)
			continue
		}
		if !validate.InRange(revenue.Value) {
			reject(rep, lr.Line, validate.GateOutOfRange, lr.Header, lr.Value)
			continue
		}
		out = append(out, model.CategorySale{
			Category: vocab.Category(lr.ID),
			Period:   lr.Period,
			Revenue:  revenue.Value,
		})
	}
	rep.Loaded = len(out)
	return out, rep, nil
}

// SalesSummary cleans the wide sales summary export. Stoplisted labels are
// removed before the pivot, and Refund and Discount amounts are stored as
// absolute values.
func SalesSummary(t *source.Table, sampleLimit int) ([]model.SalesSummaryEntry, *Report, error) {
	rep := newReport(TableSalesSummary, sampleLimit)
	if err := validate.RequireColumns(t, SalesColumn); err != nil {
		return nil, nil, err
	}
	idIdx := t.Index(SalesColumn)

	kept := &source.Table{Name: t.Name, Headers: t.Headers, Fingerprint: t.Fingerprint}
	for _, row := range t.Rows {
		if vocab.Excluded(row.Cells[idIdx]) {
			reject(rep, row.Line, validate.GateStoplist, SalesColumn, row.Cells[idIdx])
			continue
		}
		kept.Rows = append(kept.Rows, row)
	}

	m, err := reshape.Melt(kept, SalesColumn)
	if err != nil {
		return nil, nil, err
	}
	rep.SkippedColumns = m.Skipped
	rep.Candidates = len(m.Rows) + rep.Tally.Count(validate.GateStoplist)

	out := make([]model.SalesSummaryEntry, 0, len(m.Rows))
	for _, lr := range m.Rows {
		amount := coerce.Money(lr.Value)
		if !amount.OK() {
			reject(rep, lr.Line, gateFor(amount.State), lr.Header, lr.Value)
			continue
		}
		if !validate.InRange(amount.Value) {
			reject(rep, lr.Line, validate.GateOutOfRange, lr.Header, lr.Value)
			continue
		}
		typ := vocab.SalesType(lr.ID)
		value := amount.Value
		if typ.SignNormalized() {
			value = value.Abs()
		}
		out = append(out, model.SalesSummaryEntry{
			SalesType: typ,
			Label:     lr.ID,
			Period:    lr.Period,
			Amount:    value,
		})
	}
	rep.Loaded = len(out)
	return out, rep, nil
}

// detailColumns resolves column positions once per table; optional columns
// that are absent resolve to -1.
type detailColumns map[string]int

func (c detailColumns) cell(row source.Row, name string) string {
	i, ok := c[name]
	if !ok || i < 0 {
		return ""
	}
	return row.Cells[i]
}

// DetailItems cleans the long detail items export. Headers are normalized
// in place before lookup.
func DetailItems(t *source.Table, sampleLimit int) ([]model.DetailItem, *Report, error) {
	rep := newReport(TableDetailItems, sampleLimit)
	t.NormalizeHeaders(source.NormalizeHeader)
	if err := validate.RequireColumns(t, DetailRequiredColumns...); err != nil {
		return nil, nil, err
	}

	cols := detailColumns{}
	for _, name := range []string{
		colItem, colCategory, colDate, colTime, colGrossSales, colDiscounts,
		colRefunds, colModifiersApplied, colChannel, colCardBrand,
		colTransactionID, colEmployee, colCustomerID, colCustomerName,
	} {
		cols[name] = t.Index(name)
	}

	rep.Candidates = len(t.Rows)
	out := make([]model.DetailItem, 0, len(t.Rows))
	for _, row := range t.Rows {
		item, ok := detailItem(row, cols, rep)
		if ok {
			out = append(out, item)
		}
	}
	rep.Loaded = len(out)
	return out, rep, nil
}

func detailItem(row source.Row, cols detailColumns, rep *Report) (model.DetailItem, bool) {
	name := cols.cell(row, colItem)
	if name == "" {
		reject(rep, row.Line, validate.GateMissing, colItem, name)
		return model.DetailItem{}, false
	}

	date := coerce.Date(cols.cell(row, colDate))
	if !date.OK() {
		reject(rep, row.Line, gateFor(date.State), colDate, date.Raw)
		return model.DetailItem{}, false
	}

	tod := coerce.TimeOfDay(cols.cell(row, colTime))
	if !tod.OK() {
		reject(rep, row.Line, gateFor(tod.State), colTime, tod.Raw)
		return model.DetailItem{}, false
	}

	gross := coerce.Money(cols.cell(row, colGrossSales))
	if !gross.OK() {
		reject(rep, row.Line, gateFor(gross.State), colGrossSales, gross.Raw)
		return model.DetailItem{}, false
	}
	if !validate.NonNegative(gross.Value) {
		reject(rep, row.Line, validate.GateNegative, colGrossSales, gross.Raw)
		return model.DetailItem{}, false
	}
	if !validate.InRange(gross.Value) {
		reject(rep, row.Line, validate.GateOutOfRange, colGrossSales, gross.Raw)
		return model.DetailItem{}, false
	}

	discounts, ok := optionalAmount(row, cols, colDiscounts, rep)
	if !ok {
		return model.DetailItem{}, false
	}
	refunds, ok := optionalAmount(row, cols, colRefunds, rep)
	if !ok {
		return model.DetailItem{}, false
	}

	return model.DetailItem{
		TransactionID:    cols.cell(row, colTransactionID),
		ItemName:         name,
		Category:         vocab.Category(cols.cell(row, colCategory)),
		Date:             date.Value,
		Time:             tod.Value,
		GrossSales:       gross.Value,
		Discounts:        discounts,
		Refunds:          refunds,
		ModifiersApplied: cols.cell(row, colModifiersApplied),
		Channel:          cols.cell(row, colChannel),
		CardBrand:        cols.cell(row, colCardBrand),
		Employee:         cols.cell(row, colEmployee),
		CustomerID:       cols.cell(row, colCustomerID),
		CustomerName:     cols.cell(row, colCustomerName),
	}, true
}

// optionalAmount coerces an optional money column. Unparseable values are
// kept as NULL; negative or oversized values drop the row.
func optionalAmount(row source.Row, cols detailColumns, column string, rep *Report) (*decimal.Decimal, bool) {
	r := coerce.Money(cols.cell(row, column))
	if !r.OK() {
		return nil, true
	}
	if !validate.NonNegative(r.Value) {
		reject(rep, row.Line, validate.GateNegative, column, r.Raw)
		return nil, false
	}
	if !validate.InRange(r.Value) {
		reject(rep, row.Line, validate.GateOutOfRange, column, r.Raw)
		return nil, false
	}
	v := r.Value
	return &v, true
}

// Customers derives the customer dimension from cleaned detail items.
func Customers(items []model.DetailItem, sampleLimit int) ([]model.Customer, *Report) {
	rep := newReport(TableCustomers, sampleLimit)
	rep.Candidates = len(items)
	out := validate.Customers(items, rep.Tally)
	rep.Loaded = len(out)
	return out, rep
}
