//-------------------------------------------------------------------------
//
// pgEdge POS Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package vocab maps free-text export labels onto the controlled
// vocabularies used by the destination tables.
package vocab

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pgEdge/pgedge-posload/internal/model"
)

// Uncategorized is returned for blank or missing category labels.
const Uncategorized = "Uncategorized"

// categoryMap holds known raw category phrases, keyed by lowercased text.
var categoryMap = map[string]string{
	"iced coffee":           "Coffee",
	"cold brew":             "Coffee",
	"espresso":              "Espresso",
	"espresso basics":       "Espresso",
	"matcha latte":          "Matcha",
	"build your own energy": "Energy",
	"crochet goods":         "Merch",
	"banana puddin latte":   "Specialty Espresso",
	"cinnamoney":            "Specialty Espresso",
}

// Category returns the canonical category for a raw label. Unknown labels
// are passed through title-cased; blank labels become Uncategorized.
func Category(raw string) string {
	clean := strings.ToLower(strings.TrimSpace(raw))
	if clean == "" {
		return Uncategorized
	}
	if canonical, ok := categoryMap[clean]; ok {
		return canonical
	}
	// cases.Caser is stateful, so each call gets its own.
	return cases.Title(language.English).String(clean)
}

// salesTypeRules is evaluated in order; the first rule with a matching
// keyword wins.
var salesTypeRules = []struct {
	keywords []string
	typ      model.SalesType
}{
	{[]string{"gross", "net sales"}, model.SalesTypeSale},
	{[]string{"tip"}, model.SalesTypeTip},
	{[]string{"discount", "comp"}, model.SalesTypeDiscount},
	{[]string{"tax"}, model.SalesTypeTax},
	{[]string{"refund", "return"}, model.SalesTypeRefund},
}

// SalesType classifies a verbose sales summary label by keyword.
func SalesType(label string) model.SalesType {
	clean := strings.ToLower(label)
	for _, rule := range salesTypeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(clean, kw) {
				return rule.typ
			}
		}
	}
	return model.SalesTypeOther
}

// summaryStoplist holds sales summary labels that are totals or payment
// breakdowns rather than sales lines.
var summaryStoplist = map[string]struct{}{
	"":                {},
	"total":           {},
	"payments":        {},
	"fees":            {},
	"net total":       {},
	"total collected": {},
	"card":            {},
	"cash":            {},
	"other":           {},
	"gift card":       {},
}

// Excluded reports whether a sales summary label is on the stoplist.
func Excluded(label string) bool {
	_, ok := summaryStoplist[strings.ToLower(strings.TrimSpace(label))]
	return ok
}
