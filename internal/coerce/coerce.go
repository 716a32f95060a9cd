//-------------------------------------------------------------------------
//
// pgEdge POS Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package coerce converts loosely formatted export cells into typed values.
// Coercion never fails with an error: every function returns a Result whose
// State tells the caller whether the cell was usable, empty or garbage, and
// the caller decides whether that drops the row.
package coerce

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-posload/internal/model"
)

// State describes the outcome of a coercion.
type State int

const (
	// Valid means Value holds the parsed cell.
	Valid State = iota
	// Missing means the cell was empty.
	Missing
	// Invalid means the cell had content that could not be parsed.
	Invalid
)

// String returns the state name used in rejection reports.
func (s State) String() string {
	switch s {
	case Valid:
		return "valid"
	case Missing:
		return "missing"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Result is a coerced value together with how it was obtained.
type Result[T any] struct {
	Value T
	State State
	Raw   string
}

// OK reports whether the result holds a parsed value.
func (r Result[T]) OK() bool {
	return r.State == Valid
}

func valid[T any](v T, raw string) Result[T] {
	return Result[T]{Value: v, State: Valid, Raw: raw}
}

func missing[T any](raw string) Result[T] {
	return Result[T]{State: Missing, Raw: raw}
}

func invalid[T any](raw string) Result[T] {
	return Result[T]{State: Invalid, Raw: raw}
}

var (
	amountPattern = regexp.MustCompile(`^(\d+(\.\d+)?|\.\d+)$`)
	usDatePattern = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`)
	usDateExact   = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)
)

const (
	usDateLayout  = "1/2/2006"
	isoDateLayout = "2006-01-02"
)

// Money parses a currency string such as "$1,234.56", "US$1,234.56",
// "-$5.00", "($5.00)" or "1234.56" and rounds it half away from zero to
// cents. A minus sign inside accounting parentheses is Invalid.
func Money(s string) Result[decimal.Decimal] {
	raw := s
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || s == "\u2014" {
		return missing[decimal.Decimal](raw)
	}

	negative, parens := false, false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative, parens = true, true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if strings.HasPrefix(s, "-") {
		if parens {
			return invalid[decimal.Decimal](raw)
		}
		negative = true
		s = strings.TrimSpace(s[1:])
	}
	s = strings.TrimPrefix(s, "US")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSpace(s)
	// "$-5.00" puts the sign after the symbol
	if strings.HasPrefix(s, "-") {
		if negative {
			return invalid[decimal.Decimal](raw)
		}
		negative = true
		s = s[1:]
	}
	s = strings.ReplaceAll(s, ",", "")

	if !amountPattern.MatchString(s) {
		return invalid[decimal.Decimal](raw)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return invalid[decimal.Decimal](raw)
	}
	d = d.Round(2)
	if negative {
		d = d.Neg()
	}
	return valid(d, raw)
}

// Date parses "MM/DD/YYYY" (single-digit month and day allowed) or ISO
// "YYYY-MM-DD".
func Date(s string) Result[time.Time] {
	raw := s
	s = strings.TrimSpace(s)
	if s == "" {
		return missing[time.Time](raw)
	}

	layout := isoDateLayout
	if usDateExact.MatchString(s) {
		layout = usDateLayout
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return invalid[time.Time](raw)
	}
	return valid(t, raw)
}

// Range extracts a period from text such as "01/01/2025-01/07/2025".
// The last two MM/DD/YYYY substrings are the start and end. When only one
// date is present it is used as both start and end. A range whose end
// precedes its start is Invalid.
func Range(s string) Result[model.Period] {
	raw := s
	if strings.TrimSpace(s) == "" {
		return missing[model.Period](raw)
	}

	found := usDatePattern.FindAllString(s, -1)
	switch len(found) {
	case 0:
		return invalid[model.Period](raw)
	case 1:
		found = []string{found[0], found[0]}
	default:
		found = found[len(found)-2:]
	}

	start, err := time.Parse(usDateLayout, found[0])
	if err != nil {
		return invalid[model.Period](raw)
	}
	end, err := time.Parse(usDateLayout, found[1])
	if err != nil {
		return invalid[model.Period](raw)
	}
	if end.Before(start) {
		return invalid[model.Period](raw)
	}
	return valid(model.Period{Start: start, End: end}, raw)
}

var timeLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04:05 PM",
	"3:04 PM",
	"3:04:05PM",
	"3:04PM",
}

// TimeOfDay parses a wall-clock time and returns it as an offset from
// midnight.
func TimeOfDay(s string) Result[time.Duration] {
	raw := s
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return missing[time.Duration](raw)
	}

	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		d := time.Duration(t.Hour())*time.Hour +
			time.Duration(t.Minute())*time.Minute +
			time.Duration(t.Second())*time.Second
		return valid(d, raw)
	}
	return invalid[time.Duration](raw)
}
