//-------------------------------------------------------------------------
//
// pgEdge POS Loader
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-posload/internal/db"
	"github.com/pgEdge/pgedge-posload/internal/loader"
	"github.com/pgEdge/pgedge-posload/internal/logging"
	"github.com/pgEdge/pgedge-posload/internal/pipeline"
)

var (
	loadCategorySales string
	loadSalesSummary  string
	loadDetailItems   string
	loadSchema        string
	loadRejectSamples int
	loadDryRun        bool
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Clean, validate and load the POS exports",
	Long: `Read the three POS exports, clean and validate every row, and load
the result into PostgreSQL. The schema script runs first, then all tables
are written in one transaction: either everything is loaded or nothing is.

Rows that fail validation are dropped and reported by reason.

Example:
  pgedge-posload load --connection "postgres://..." \
    --category-sales exports/category_sales.csv \
    --sales-summary exports/sales_summary.csv \
    --detail-items exports/detail_items.csv \
    --schema exports/schema.sql
  pgedge-posload load --config pgedge-posload.yaml --dry-run`,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&loadCategorySales, "category-sales", "",
		"category sales export (wide CSV)")
	loadCmd.Flags().StringVar(&loadSalesSummary, "sales-summary", "",
		"sales summary export (wide CSV)")
	loadCmd.Flags().StringVar(&loadDetailItems, "detail-items", "",
		"transaction detail export (long CSV)")
	loadCmd.Flags().StringVar(&loadSchema, "schema", "",
		"DDL script run before loading")
	loadCmd.Flags().IntVar(&loadRejectSamples, "reject-samples", -1,
		"rejected rows shown per table (default from config)")
	loadCmd.Flags().BoolVar(&loadDryRun, "dry-run", false,
		"run the pipelines and report without writing to the database")
}

func runLoad(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if loadCategorySales != "" {
		cfg.Sources.CategorySales = loadCategorySales
	}
	if loadSalesSummary != "" {
		cfg.Sources.SalesSummary = loadSalesSummary
	}
	if loadDetailItems != "" {
		cfg.Sources.DetailItems = loadDetailItems
	}
	if loadSchema != "" {
		cfg.Sources.Schema = loadSchema
	}
	if loadRejectSamples >= 0 {
		cfg.Load.RejectSamples = loadRejectSamples
	}
	if loadDryRun {
		cfg.Load.DryRun = true
	}

	if err := cfg.ValidateLoad(); err != nil {
		return err
	}

	src := loader.Sources{
		CategorySales: cfg.Sources.CategorySales,
		SalesSummary:  cfg.Sources.SalesSummary,
		DetailItems:   cfg.Sources.DetailItems,
		Schema:        cfg.Sources.Schema,
	}
	// Fail on missing files before opening a connection.
	if err := loader.Preflight(src); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	opts := loader.Options{
		RejectSamples: cfg.Load.RejectSamples,
		DryRun:        cfg.Load.DryRun,
	}

	var w loader.Writer
	if !opts.DryRun {
		pool, err := db.Connect(ctx, cfg.Connection)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()
		w = db.NewStore(pool)
	}

	logging.Info().
		Str("category_sales", src.CategorySales).
		Str("sales_summary", src.SalesSummary).
		Str("detail_items", src.DetailItems).
		Bool("dry_run", opts.DryRun).
		Msg("Starting load")

	res, err := loader.Run(ctx, src, w, opts)
	if err != nil {
		return err
	}

	printLoadReport(cmd.OutOrStdout(), res)
	return nil
}

// printLoadReport writes the per-table summary of a load.
func printLoadReport(out io.Writer, res *loader.Result) {
	tw := newTabWriterTo(out)
	fmt.Fprintln(tw, "TABLE\tCANDIDATES\tLOADED\tDROPPED\tREASONS")
	for _, rep := range res.Reports {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n",
			rep.Table, rep.Candidates, rep.Loaded, rep.Tally.Dropped(), reasons(rep))
	}
	_ = tw.Flush()

	for _, rep := range res.Reports {
		if len(rep.SkippedColumns) > 0 {
			fmt.Fprintf(out, "\n%s: ignored columns %s\n",
				rep.Table, strings.Join(rep.SkippedColumns, ", "))
		}
		samples := rep.Tally.Samples()
		if len(samples) == 0 {
			continue
		}
		fmt.Fprintf(out, "\n%s: sample rejections\n", rep.Table)
		for _, r := range samples {
			fmt.Fprintf(out, "  %s\n", r)
		}
	}

	fmt.Fprintln(out)
	if res.Written {
		fmt.Fprintf(out, "Loaded in %s.\n", res.Duration.Round(time.Millisecond))
	} else {
		fmt.Fprintln(out, "Dry run: nothing was written.")
	}
}

func reasons(rep *pipeline.Report) string {
	counts := rep.Tally.Counts()
	if len(counts) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(counts))
	for _, gc := range counts {
		parts = append(parts, fmt.Sprintf("%s=%d", gc.Gate, gc.Count))
	}
	return strings.Join(parts, " ")
}
