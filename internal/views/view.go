//-------------------------------------------------------------------------
//
// pgEdge POS Loader
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package views defines the read-only reports served over the loaded
// tables.
package views

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-posload/internal/db"
)

// DefaultLimit caps the rows a view returns when Params.Limit is unset.
const DefaultLimit = 10

// Params narrows a view. Zero dates mean unbounded.
type Params struct {
	Start time.Time
	End   time.Time
	Limit int
}

// args returns the positional arguments every view query takes:
// $1 start date, $2 end date, $3 row limit.
func (p Params) args() []any {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	return []any{
		pgtype.Date{Time: p.Start, Valid: !p.Start.IsZero()},
		pgtype.Date{Time: p.End, Valid: !p.End.IsZero()},
		limit,
	}
}

// Result is the output of a view.
type Result struct {
	Columns []string
	Rows    [][]any
}

// View is a named, parameterized read-only query.
type View struct {
	Name        string
	Description string
	// Table is the destination table the view mostly reads.
	Table string
	Query string
}

// Run executes the view and returns its rows with database types
// converted to plain Go values.
func (v *View) Run(ctx context.Context, conn db.DB, p Params) (*Result, error) {
	rows, err := conn.Query(ctx, v.Query, p.args()...)
	if err != nil {
		return nil, fmt.Errorf("view %s: %w", v.Name, err)
	}
	defer rows.Close()

	res := &Result{}
	for _, fd := range rows.FieldDescriptions() {
		res.Columns = append(res.Columns, fd.Name)
	}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("view %s: %w", v.Name, err)
		}
		for i, val := range values {
			values[i] = plain(val)
		}
		res.Rows = append(res.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("view %s: %w", v.Name, err)
	}
	return res, nil
}

// plain converts pgx value types into printable Go values.
func plain(v any) any {
	switch x := v.(type) {
	case pgtype.Numeric:
		if !x.Valid || x.NaN || x.Int == nil {
			return nil
		}
		return decimal.NewFromBigInt(x.Int, x.Exp)
	case pgtype.Time:
		if !x.Valid {
			return nil
		}
		d := time.Duration(x.Microseconds) * time.Microsecond
		return fmt.Sprintf("%02d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
	case time.Time:
		return x.Format("2006-01-02")
	default:
		return v
	}
}
