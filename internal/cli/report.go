//-------------------------------------------------------------------------
//
// pgEdge POS Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-posload/internal/coerce"
	"github.com/pgEdge/pgedge-posload/internal/db"
	"github.com/pgEdge/pgedge-posload/internal/logging"
	"github.com/pgEdge/pgedge-posload/internal/views"
)

var (
	reportLimit int
	reportStart string
	reportEnd   string
)

var reportCmd = &cobra.Command{
	Use:   "report <view>",
	Short: "Run an analytical view over the loaded data",
	Long: `Run one of the read-only analytical views and print the result.
Dates may be given as YYYY-MM-DD or MM/DD/YYYY; either bound may be
omitted.

Example:
  pgedge-posload report top_items --limit 5
  pgedge-posload report revenue_by_category --start 2025-01-01 --end 2025-01-31`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the last successful load recorded",
	RunE:  runStatus,
}

func init() {
	reportCmd.Flags().IntVar(&reportLimit, "limit", 0,
		"maximum rows for ranked views (default from config)")
	reportCmd.Flags().StringVar(&reportStart, "start", "",
		"first day included")
	reportCmd.Flags().StringVar(&reportEnd, "end", "",
		"last day included")
}

func runReport(cmd *cobra.Command, args []string) error {
	if reportLimit > 0 {
		cfg.Report.Limit = reportLimit
	}
	if err := cfg.ValidateReport(); err != nil {
		return err
	}

	v, err := views.Get(args[0])
	if err != nil {
		return err
	}
	params, err := reportParams(reportStart, reportEnd, cfg.Report.Limit)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if loadedAt, err := db.GetMetadataValue(ctx, pool, "loaded_at"); err == nil {
		logging.Debug().Str("loaded_at", loadedAt).Msg("Reporting on load")
	} else {
		logging.Warn().Msg("No load recorded; run 'pgedge-posload load' first")
	}

	res, err := v.Run(ctx, pool, params)
	if err != nil {
		return err
	}
	printResult(cmd.OutOrStdout(), res)
	return nil
}

// reportParams parses the date bounds; blank means unbounded.
func reportParams(start, end string, limit int) (views.Params, error) {
	p := views.Params{Limit: limit}
	var err error
	if p.Start, err = boundDate("start", start); err != nil {
		return p, err
	}
	if p.End, err = boundDate("end", end); err != nil {
		return p, err
	}
	if !p.Start.IsZero() && !p.End.IsZero() && p.End.Before(p.Start) {
		return p, fmt.Errorf("end %s is before start %s", end, start)
	}
	return p, nil
}

func boundDate(name, s string) (time.Time, error) {
	d := coerce.Date(s)
	switch d.State {
	case coerce.Missing:
		return time.Time{}, nil
	case coerce.Invalid:
		return time.Time{}, fmt.Errorf("invalid %s date: %q", name, s)
	}
	return d.Value, nil
}

// printResult writes a view result as an aligned table.
func printResult(out io.Writer, res *views.Result) {
	tw := newTabWriterTo(out)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(res.Columns, "\t")))
	for _, row := range res.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = cell(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	_ = tw.Flush()
	fmt.Fprintf(out, "(%d rows)\n", len(res.Rows))
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case decimal.Decimal:
		return x.StringFixed(2)
	case float64:
		return decimal.NewFromFloat(x).StringFixed(2)
	default:
		return fmt.Sprint(x)
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	out := cmd.OutOrStdout()
	exists, err := db.MetadataExists(ctx, pool)
	if err != nil {
		return err
	}
	if !exists {
		fmt.Fprintln(out, "No load recorded.")
		return nil
	}

	meta, err := db.GetAllMetadata(ctx, pool)
	if err != nil {
		return err
	}
	printMetadata(out, meta)
	return nil
}

func printMetadata(out io.Writer, meta map[string]string) {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := newTabWriterTo(out)
	for _, k := range keys {
		fmt.Fprintf(tw, "%s\t%s\n", k, meta[k])
	}
	_ = tw.Flush()
}
