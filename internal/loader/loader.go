//-------------------------------------------------------------------------
//
// pgEdge POS Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package loader orchestrates a full load: preflight checks, the three
// table pipelines, then one all-or-nothing write.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pgEdge/pgedge-posload/internal/logging"
	"github.com/pgEdge/pgedge-posload/internal/model"
	"github.com/pgEdge/pgedge-posload/internal/pipeline"
	"github.com/pgEdge/pgedge-posload/internal/source"
	"github.com/pgEdge/pgedge-posload/pkg/version"
)

// Sources names the input files of a load.
type Sources struct {
	CategorySales string
	SalesSummary  string
	DetailItems   string
	Schema        string
}

// paths returns the source paths in a fixed order, labelled by role.
func (s Sources) paths() [][2]string {
	return [][2]string{
		{"category_sales", s.CategorySales},
		{"sales_summary", s.SalesSummary},
		{"detail_items", s.DetailItems},
		{"schema", s.Schema},
	}
}

// MissingSourceError is returned by preflight when input files are absent.
type MissingSourceError struct {
	Paths []string
}

func (e *MissingSourceError) Error() string {
	return "missing source files: " + strings.Join(e.Paths, ", ")
}

// Writer applies a cleaned dataset to the destination. Implementations
// must execute the schema, insert every table and record the metadata as
// one atomic unit.
type Writer interface {
	Load(ctx context.Context, schemaSQL string, ds *model.Dataset, metadata map[string]string) error
}

// Options controls a load.
type Options struct {
	// RejectSamples is the number of sample rejections kept per table.
	RejectSamples int
	// DryRun stops after the pipelines; nothing is written.
	DryRun bool
}

// Result is the outcome of a load.
type Result struct {
	// LoadID identifies the run in logs and in the recorded metadata.
	LoadID       string
	Dataset      *model.Dataset
	Reports      []*pipeline.Report
	Fingerprints map[string]uint64
	Metadata     map[string]string
	Written      bool
	Duration     time.Duration
}

// Preflight checks that every source file and the schema exist.
func Preflight(src Sources) error {
	var missing []string
	for _, p := range src.paths() {
		if p[1] == "" {
			missing = append(missing, p[0]+" (not configured)")
			continue
		}
		info, err := os.Stat(p[1])
		if err != nil || info.IsDir() {
			missing = append(missing, p[1])
		}
	}
	if len(missing) > 0 {
		return &MissingSourceError{Paths: missing}
	}
	return nil
}

// Run executes a load. The writer is not touched unless every pipeline
// succeeded, and is never touched in a dry run.
func Run(ctx context.Context, src Sources, w Writer, opts Options) (*Result, error) {
	start := time.Now()

	if err := Preflight(src); err != nil {
		return nil, err
	}
	schemaSQL, err := os.ReadFile(src.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}

	var (
		ds        model.Dataset
		catRep    *pipeline.Report
		sumRep    *pipeline.Report
		detRep    *pipeline.Report
		catSource *source.Table
		sumSource *source.Table
		detSource *source.Table
	)

	var g errgroup.Group
	g.Go(func() error {
		t, err := source.ReadFile(src.CategorySales)
		if err != nil {
			return err
		}
		catSource = t
		ds.CategorySales, catRep, err = pipeline.CategorySales(t, opts.RejectSamples)
		return err
	})
	g.Go(func() error {
		t, err := source.ReadFile(src.SalesSummary)
		if err != nil {
			return err
		}
		sumSource = t
		ds.SalesSummary, sumRep, err = pipeline.SalesSummary(t, opts.RejectSamples)
		return err
	})
	g.Go(func() error {
		t, err := source.ReadFile(src.DetailItems)
		if err != nil {
			return err
		}
		detSource = t
		ds.DetailItems, detRep, err = pipeline.DetailItems(t, opts.RejectSamples)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var custRep *pipeline.Report
	ds.Customers, custRep = pipeline.Customers(ds.DetailItems, opts.RejectSamples)

	res := &Result{
		LoadID:  uuid.NewString(),
		Dataset: &ds,
		Reports: []*pipeline.Report{catRep, sumRep, detRep, custRep},
		Fingerprints: map[string]uint64{
			pipeline.TableCategorySales: catSource.Fingerprint,
			pipeline.TableSalesSummary:  sumSource.Fingerprint,
			pipeline.TableDetailItems:   detSource.Fingerprint,
		},
	}
	res.Metadata = metadata(res)

	for _, rep := range res.Reports {
		logReport(rep)
	}

	if opts.DryRun {
		logging.Info().Msg("Dry run, nothing written")
		res.Duration = time.Since(start)
		return res, nil
	}
	if w == nil {
		return nil, errors.New("no destination writer")
	}

	if err := w.Load(ctx, string(schemaSQL), &ds, res.Metadata); err != nil {
		logging.Error().Err(err).Msg("Write failed, destination unchanged")
		return nil, fmt.Errorf("load failed, transaction rolled back: %w", err)
	}
	res.Written = true
	res.Duration = time.Since(start)

	logging.Info().
		Int(pipeline.TableCategorySales, len(ds.CategorySales)).
		Int(pipeline.TableSalesSummary, len(ds.SalesSummary)).
		Int(pipeline.TableDetailItems, len(ds.DetailItems)).
		Int(pipeline.TableCustomers, len(ds.Customers)).
		Str("load_id", res.LoadID).
		Dur("duration", res.Duration).
		Msg("Load complete")

	return res, nil
}

// metadata builds the key/value pairs recorded with a successful load.
func metadata(res *Result) map[string]string {
	m := version.Metadata()
	m["load_id"] = res.LoadID
	m["loaded_at"] = time.Now().UTC().Format(time.RFC3339)
	for _, rep := range res.Reports {
		m["rows_"+rep.Table] = strconv.Itoa(rep.Loaded)
		m["dropped_"+rep.Table] = strconv.Itoa(rep.Tally.Dropped())
	}
	for table, fp := range res.Fingerprints {
		m["fingerprint_"+table] = strconv.FormatUint(fp, 16)
	}
	return m
}

func logReport(rep *pipeline.Report) {
	l := logging.Table(rep.Table)
	ev := l.Info().
		Int("candidates", rep.Candidates).
		Int("loaded", rep.Loaded).
		Int("dropped", rep.Tally.Dropped())
	for _, gc := range rep.Tally.Counts() {
		ev = ev.Int(gc.Gate, gc.Count)
	}
	ev.Msg("Pipeline finished")

	if len(rep.SkippedColumns) > 0 {
		l.Warn().
			Strs("columns", rep.SkippedColumns).
			Msg("Ignored columns that are not date ranges")
	}
	for _, r := range rep.Tally.Samples() {
		l.Debug().
			Str("rejection", r.String()).
			Msg("Rejected row")
	}
}
