//-------------------------------------------------------------------------
//
// pgEdge POS Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package model defines the cleaned records that land in the destination
// tables.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesType is the controlled vocabulary for sales summary rows.
type SalesType string

// Sales type constants.
const (
	SalesTypeSale     SalesType = "Sale"
	SalesTypeTip      SalesType = "Tip"
	SalesTypeDiscount SalesType = "Discount"
	SalesTypeTax      SalesType = "Tax"
	SalesTypeRefund   SalesType = "Refund"
	SalesTypeOther    SalesType = "Other"
)

// SignNormalized reports whether amounts of this type are stored as
// absolute values.
func (t SalesType) SignNormalized() bool {
	return t == SalesTypeRefund || t == SalesTypeDiscount
}

// Period is an inclusive date range taken from an export column header.
type Period struct {
	Start time.Time
	End   time.Time
}

// CategorySale is one category's revenue over one period.
type CategorySale struct {
	Category string
	Period   Period
	Revenue  decimal.Decimal
}

// SalesSummaryEntry is one sales summary line over one period.
type SalesSummaryEntry struct {
	SalesType SalesType
	// Label is the verbose export label the entry was classified from.
	Label  string
	Period Period
	Amount decimal.Decimal
}

// DetailItem is one transaction line from the item details export.
// Optional monetary fields are nil when the export had no value.
type DetailItem struct {
	TransactionID    string
	ItemName         string
	Category         string
	Date             time.Time
	Time             time.Duration // offset from midnight
	GrossSales       decimal.Decimal
	Discounts        *decimal.Decimal
	Refunds          *decimal.Decimal
	ModifiersApplied string
	Channel          string
	CardBrand        string
	Employee         string
	CustomerID       string
	CustomerName     string
}

// Customer is a row of the derived customer dimension.
type Customer struct {
	ID   string
	Name string
}

// Dataset is everything a single load writes.
type Dataset struct {
	CategorySales []CategorySale
	SalesSummary  []SalesSummaryEntry
	DetailItems   []DetailItem
	Customers     []Customer
}
