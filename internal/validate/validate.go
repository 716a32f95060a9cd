//-------------------------------------------------------------------------
//
// pgEdge POS Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package validate holds the table-level and row-level checks applied to
// export data before it is loaded.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-posload/internal/model"
	"github.com/pgEdge/pgedge-posload/internal/source"
)

// MissingColumnsError is returned when a source table lacks columns the
// pipeline cannot work without. It aborts the load.
type MissingColumnsError struct {
	Table   string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s",
		e.Table, strings.Join(e.Columns, ", "))
}

// RequireColumns checks that every named column is present in the table.
func RequireColumns(t *source.Table, columns ...string) error {
	var missing []string
	for _, c := range columns {
		if t.Index(c) < 0 {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Table: t.Name, Columns: missing}
	}
	return nil
}

// Gate names used when rows are rejected.
const (
	GateMissing     = "missing_value"
	GateInvalid     = "invalid_value"
	GateNegative    = "negative_amount"
	GateStoplist    = "stoplist"
	GatePlaceholder = "placeholder_customer"
	GateOutOfRange  = "out_of_range"
)

// Rejection describes one dropped row.
type Rejection struct {
	Line   int
	Gate   string
	Column string
	Value  string
}

func (r Rejection) String() string {
	msg := r.Gate
	if r.Column != "" {
		msg = fmt.Sprintf("%s in %s (%q)", r.Gate, r.Column, r.Value)
	}
	if r.Line > 0 {
		return fmt.Sprintf("line %d: %s", r.Line, msg)
	}
	return msg
}

// GateCount is the number of rows a gate dropped.
type GateCount struct {
	Gate  string
	Count int
}

// Tally counts rejected rows per gate and keeps the first few as samples.
// A Tally belongs to a single pipeline and is not safe for concurrent use.
type Tally struct {
	sampleLimit int
	counts      map[string]int
	samples     []Rejection
}

// NewTally creates a tally that keeps at most sampleLimit sample rows.
func NewTally(sampleLimit int) *Tally {
	if sampleLimit < 0 {
		sampleLimit = 0
	}
	return &Tally{
		sampleLimit: sampleLimit,
		counts:      make(map[string]int),
	}
}

// Reject records a dropped row.
func (t *Tally) Reject(r Rejection) {
	t.counts[r.Gate]++
	if len(t.samples) < t.sampleLimit {
		t.samples = append(t.samples, r)
	}
}

// Dropped returns the total number of rejected rows.
func (t *Tally) Dropped() int {
	n := 0
	for _, c := range t.counts {
		n += c
	}
	return n
}

// Count returns the number of rows dropped by one gate.
func (t *Tally) Count(gate string) int {
	return t.counts[gate]
}

// Counts returns per-gate counts sorted by gate name.
func (t *Tally) Counts() []GateCount {
	out := make([]GateCount, 0, len(t.counts))
	for g, c := range t.counts {
		out = append(out, GateCount{Gate: g, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Gate < out[j].Gate })
	return out
}

// Samples returns the retained sample rejections in the order seen.
func (t *Tally) Samples() []Rejection {
	return t.samples
}

// NonNegative reports whether an amount may be stored in a column that
// forbids negative values.
func NonNegative(d decimal.Decimal) bool {
	return !d.IsNegative()
}

// MaxAmount is the largest magnitude a NUMERIC(12,2) column holds.
var MaxAmount = decimal.RequireFromString("9999999999.99")

// InRange reports whether an amount fits the NUMERIC(12,2) money columns.
// Anything larger would abort the COPY and roll back the whole load.
func InRange(d decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(MaxAmount)
}

// placeholderNames are customer names that mean "no customer".
var placeholderNames = map[string]struct{}{
	"":  {},
	",": {},
}

// CleanCustomer reports whether an id/name pair identifies a real customer.
func CleanCustomer(id, name string) bool {
	if strings.TrimSpace(id) == "" {
		return false
	}
	_, placeholder := placeholderNames[strings.TrimSpace(name)]
	return !placeholder
}

// Customers projects the customer dimension out of cleaned detail items:
// placeholder pairs are dropped, exact duplicates collapse onto their first
// occurrence, and first-seen order is kept.
func Customers(items []model.DetailItem, tally *Tally) []model.Customer {
	seen := make(map[model.Customer]struct{})
	var out []model.Customer
	for _, it := range items {
		c := model.Customer{ID: it.CustomerID, Name: it.CustomerName}
		if !CleanCustomer(c.ID, c.Name) {
			if tally != nil && (c.ID != "" || c.Name != "") {
				r := Rejection{Gate: GatePlaceholder, Column: "customer_name", Value: c.Name}
				if strings.TrimSpace(c.ID) == "" {
					r.Column, r.Value = "customer_id", c.ID
				}
				tally.Reject(r)
			}
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
