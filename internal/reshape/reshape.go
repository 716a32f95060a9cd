//-------------------------------------------------------------------------
//
// pgEdge POS Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package reshape pivots wide exports, with one column per reporting
// period, into long rows.
package reshape

import (
	"github.com/pgEdge/pgedge-posload/internal/coerce"
	"github.com/pgEdge/pgedge-posload/internal/model"
	"github.com/pgEdge/pgedge-posload/internal/source"
	"github.com/pgEdge/pgedge-posload/internal/validate"
)

// LongRow is one (identity, period) cell of a wide table.
type LongRow struct {
	ID     string
	Period model.Period
	Header string
	Value  string
	Line   int
}

// Melted is the result of a pivot.
type Melted struct {
	Rows []LongRow
	// Skipped lists headers that were not date ranges and were left out.
	Skipped []string
}

// Melt turns every date-range column of t into rows keyed by idColumn.
// Columns whose header is not a date range are excluded before the pivot.
// Rows are emitted in source order and, within a row, in column order.
func Melt(t *source.Table, idColumn string) (*Melted, error) {
	if err := validate.RequireColumns(t, idColumn); err != nil {
		return nil, err
	}
	idIdx := t.Index(idColumn)

	type periodColumn struct {
		index  int
		header string
		period model.Period
	}
	var cols []periodColumn
	m := &Melted{}
	for i, h := range t.Headers {
		if i == idIdx {
			continue
		}
		r := coerce.Range(h)
		if !r.OK() {
			m.Skipped = append(m.Skipped, h)
			continue
		}
		cols = append(cols, periodColumn{index: i, header: h, period: r.Value})
	}

	m.Rows = make([]LongRow, 0, len(t.Rows)*len(cols))
	for _, row := range t.Rows {
		for _, c := range cols {
			m.Rows = append(m.Rows, LongRow{
				ID:     row.Cells[idIdx],
				Period: c.period,
				Header: c.header,
				Value:  row.Cells[c.index],
				Line:   row.Line,
			})
		}
	}
	return m, nil
}
