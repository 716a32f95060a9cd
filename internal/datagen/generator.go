//-------------------------------------------------------------------------
//
// pgEdge POS Loader
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-posload/internal/loader"
	"github.com/pgEdge/pgedge-posload/internal/logging"
)

// Sample file names written by Generate.
const (
	CategorySalesFile = "category_sales.csv"
	SalesSummaryFile  = "sales_summary.csv"
	DetailItemsFile   = "detail_items.csv"
	SchemaFile        = "schema.sql"
)

// Config controls sample generation.
type Config struct {
	// Rows is the number of detail item lines.
	Rows int
	// Seed makes output reproducible. Zero picks a random seed.
	Seed uint64
	// MalformedRatio is the fraction of rows and cells deliberately broken.
	MalformedRatio float64
	// Weeks is the number of weekly reporting periods.
	Weeks int
	// Start is the first day of the first period.
	Start time.Time
}

// DefaultConfig returns the sample defaults.
func DefaultConfig() Config {
	return Config{
		Rows:           500,
		Seed:           1,
		MalformedRatio: 0.05,
		Weeks:          4,
		Start:          time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
	}
}

type menuItem struct {
	name     string
	category string // raw export label
	price    decimal.Decimal
	weight   int
}

var menu = []menuItem{
	{"Latte", "Espresso Basics", decimal.RequireFromString("5.25"), 20},
	{"Americano", "Espresso", decimal.RequireFromString("3.75"), 12},
	{"Iced Coffee", "Iced Coffee", decimal.RequireFromString("4.25"), 15},
	{"Cold Brew", "Cold Brew", decimal.RequireFromString("4.75"), 10},
	{"Matcha Latte", "Matcha Latte", decimal.RequireFromString("5.75"), 8},
	{"Banana Puddin Latte", "Banana Puddin Latte", decimal.RequireFromString("6.50"), 6},
	{"Cinnamoney", "Cinnamoney", decimal.RequireFromString("6.25"), 6},
	{"Build Your Own Energy", "Build Your Own Energy", decimal.RequireFromString("6.00"), 5},
	{"Crochet Coaster", "Crochet Goods", decimal.RequireFromString("12.00"), 2},
	{"Blueberry Muffin", "Pastries", decimal.RequireFromString("3.50"), 9},
	{"Chocolate Croissant", "Pastries", decimal.RequireFromString("4.25"), 7},
}

var (
	channels       = []string{"Counter", "Online", "Drive-Thru"}
	channelWeights = []int{60, 25, 15}
	modifiers      = []string{"Oat Milk", "Extra Shot", "Vanilla Syrup", "Almond Milk"}
	timeLayouts    = []string{"3:04 PM", "15:04:05", "15:04"}
)

// Generator writes one set of sample exports.
type Generator struct {
	cfg   Config
	faker *Faker

	categories []string
	revenue    [][]decimal.Decimal // [category][week]
	gross      []decimal.Decimal   // per week
	discounts  []decimal.Decimal
	refunds    []decimal.Decimal
	tips       []decimal.Decimal
}

// NewGenerator creates a generator; zero config fields take defaults.
func NewGenerator(cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.Rows <= 0 {
		cfg.Rows = def.Rows
	}
	if cfg.Weeks <= 0 {
		cfg.Weeks = def.Weeks
	}
	if cfg.Start.IsZero() {
		cfg.Start = def.Start
	}

	faker := NewFakerWithSeed(cfg.Seed)
	if cfg.Seed == 0 {
		faker = NewFaker()
	}

	g := &Generator{
		cfg:       cfg,
		faker:     faker,
		gross:     zeros(cfg.Weeks),
		discounts: zeros(cfg.Weeks),
		refunds:   zeros(cfg.Weeks),
		tips:      zeros(cfg.Weeks),
	}
	seen := map[string]bool{}
	for _, m := range menu {
		if !seen[m.category] {
			seen[m.category] = true
			g.categories = append(g.categories, m.category)
		}
	}
	g.revenue = make([][]decimal.Decimal, len(g.categories))
	for i := range g.revenue {
		g.revenue[i] = zeros(cfg.Weeks)
	}
	return g
}

func zeros(n int) []decimal.Decimal {
	out := make([]decimal.Decimal, n)
	for i := range out {
		out[i] = decimal.Zero
	}
	return out
}

// Generate writes the three exports and the schema into dir and returns
// the paths as load sources.
func Generate(dir string, cfg Config, schemaSQL string) (loader.Sources, error) {
	return NewGenerator(cfg).Write(dir, schemaSQL)
}

// Write writes the sample files into dir.
func (g *Generator) Write(dir string, schemaSQL string) (loader.Sources, error) {
	src := loader.Sources{
		CategorySales: filepath.Join(dir, CategorySalesFile),
		SalesSummary:  filepath.Join(dir, SalesSummaryFile),
		DetailItems:   filepath.Join(dir, DetailItemsFile),
		Schema:        filepath.Join(dir, SchemaFile),
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return src, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	// Details first: the wide exports are aggregates of them.
	if err := writeCSV(src.DetailItems, g.detailItems()); err != nil {
		return src, err
	}
	if err := writeCSV(src.CategorySales, g.categorySales()); err != nil {
		return src, err
	}
	if err := writeCSV(src.SalesSummary, g.salesSummary()); err != nil {
		return src, err
	}
	if err := os.WriteFile(src.Schema, []byte(schemaSQL), 0o644); err != nil {
		return src, fmt.Errorf("failed to write schema: %w", err)
	}

	for _, p := range []string{src.CategorySales, src.SalesSummary, src.DetailItems, src.Schema} {
		if info, err := os.Stat(p); err == nil {
			logging.Debug().Str("file", p).Str("size", FormatSize(info.Size())).Msg("Wrote sample file")
		}
	}
	return src, nil
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func (g *Generator) period(week int) (time.Time, time.Time) {
	start := g.cfg.Start.AddDate(0, 0, 7*week)
	return start, start.AddDate(0, 0, 6)
}

func (g *Generator) periodHeader(week int) string {
	start, end := g.period(week)
	return start.Format("01/02/2006") + "-" + end.Format("01/02/2006")
}

func (g *Generator) categoryIndex(raw string) int {
	for i, c := range g.categories {
		if c == raw {
			return i
		}
	}
	return -1
}

type customer struct {
	id   string
	name string
}

func (g *Generator) detailItems() [][]string {
	f := g.faker
	out := [][]string{{
		"Item", "Category", "Date", "Time", "Gross Sales", "Discounts", "Refunds",
		"Modifiers Applied", "Channel", "Card Brand", "Transaction ID", "Employee",
		"Customer ID", "Customer Name",
	}}

	employees := make([]string, 4)
	for i := range employees {
		employees[i] = f.FirstName()
	}
	customers := make([]customer, max(1, g.cfg.Rows/8))
	for i := range customers {
		customers[i] = customer{id: fmt.Sprintf("C%04d", i+1), name: f.Name()}
	}
	weights := make([]int, len(menu))
	for i, m := range menu {
		weights[i] = m.weight
	}

	progress := NewProgressReporter(DetailItemsFile, int64(g.cfg.Rows), max(1, int64(g.cfg.Rows/4)))
	txn := 0
	for written := 0; written < g.cfg.Rows; {
		txn++
		week := f.Int(0, g.cfg.Weeks-1)
		start, _ := g.period(week)
		day := start.AddDate(0, 0, f.Int(0, 6))
		clock := time.Duration(f.Int(7*60, 19*60-1)) * time.Minute
		channel := ChooseWeighted(f, channels, channelWeights)
		card := "Cash"
		if f.Chance(0.8) {
			card = f.CardBrand()
		}
		employee := f.NullableString(Choose(f, employees), 0.05)
		var cust customer
		if f.Chance(0.6) {
			cust = Choose(f, customers)
		}

		lines := min(f.Int(1, 3), g.cfg.Rows-written)
		for l := 0; l < lines; l++ {
			item := ChooseWeighted(f, menu, weights)
			gross := item.price
			modifier := ""
			if f.Chance(0.3) {
				modifier = Choose(f, modifiers)
				gross = gross.Add(decimal.RequireFromString("0.75"))
			}
			discount := ""
			var discountAmt decimal.Decimal
			if f.Chance(0.1) {
				discountAmt = gross.Mul(decimal.RequireFromString("0.10")).Round(2)
				discount = FormatMoney(discountAmt)
			}
			refund := ""
			var refundAmt decimal.Decimal
			if f.Chance(0.02) {
				refundAmt = gross
				refund = FormatMoney(refundAmt)
			}

			row := []string{
				item.name,
				item.category,
				day.Format("01/02/2006"),
				time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).Add(clock).Format(Choose(f, timeLayouts)),
				FormatMoney(gross),
				discount,
				refund,
				modifier,
				channel,
				card,
				fmt.Sprintf("T%06d", txn),
				employee,
				cust.id,
				cust.name,
			}

			if !f.Chance(g.cfg.MalformedRatio) || !g.corruptDetail(row) {
				ci := g.categoryIndex(item.category)
				g.revenue[ci][week] = g.revenue[ci][week].Add(gross)
				g.gross[week] = g.gross[week].Add(gross)
				g.discounts[week] = g.discounts[week].Add(discountAmt)
				g.refunds[week] = g.refunds[week].Add(refundAmt)
				if f.Chance(0.25) {
					g.tips[week] = g.tips[week].Add(f.Cents(0.5, 3))
				}
			}
			out = append(out, row)
			written++
		}
		progress.Update(int64(lines))
	}
	progress.Done()
	return out
}

// corruptDetail breaks one field of a detail row and reports whether the
// loader will drop the row. A placeholder customer name keeps the row but
// must not reach the customer table.
func (g *Generator) corruptDetail(row []string) bool {
	switch g.faker.Int(0, 5) {
	case 0:
		row[4] = "-" + row[4]
	case 1:
		row[4] = "N/A"
	case 2:
		row[2] = ""
	case 3:
		row[3] = "soon"
	case 4:
		row[0] = ""
	default:
		if row[12] == "" {
			row[4] = "$12.3.4"
			return true
		}
		row[13] = ","
		return false
	}
	return true
}

func (g *Generator) categorySales() [][]string {
	header := []string{"Category"}
	for w := 0; w < g.cfg.Weeks; w++ {
		header = append(header, g.periodHeader(w))
	}
	header = append(header, "Total")
	out := [][]string{header}

	for ci, cat := range g.categories {
		row := []string{cat}
		total := decimal.Zero
		for w := 0; w < g.cfg.Weeks; w++ {
			v := g.revenue[ci][w]
			total = total.Add(v)
			cell := FormatMoney(v)
			if g.faker.Chance(g.cfg.MalformedRatio) {
				cell = Choose(g.faker, []string{"n/a", "-" + cell, ""})
			}
			row = append(row, cell)
		}
		row = append(row, FormatMoney(total))
		out = append(out, row)
	}
	return out
}

func (g *Generator) salesSummary() [][]string {
	header := []string{"Sales"}
	for w := 0; w < g.cfg.Weeks; w++ {
		header = append(header, g.periodHeader(w))
	}
	out := [][]string{header}

	tax := decimal.RequireFromString("0.08")
	lines := []struct {
		label string
		value func(w int) decimal.Decimal
	}{
		{"Gross Sales", func(w int) decimal.Decimal { return g.gross[w] }},
		{"Discounts/Comps", func(w int) decimal.Decimal { return g.discounts[w].Neg() }},
		{"Refunds by Amount", func(w int) decimal.Decimal { return g.refunds[w].Neg() }},
		{"Net Sales", func(w int) decimal.Decimal { return g.net(w) }},
		{"Tax", func(w int) decimal.Decimal { return g.net(w).Mul(tax).Round(2) }},
		{"Tips", func(w int) decimal.Decimal { return g.tips[w] }},
		{"Total Collected", func(w int) decimal.Decimal { return g.net(w).Mul(tax.Add(decimal.NewFromInt(1))).Add(g.tips[w]).Round(2) }},
		{"Card", func(w int) decimal.Decimal { return g.net(w).Mul(decimal.RequireFromString("0.8")).Round(2) }},
		{"Cash", func(w int) decimal.Decimal { return g.net(w).Mul(decimal.RequireFromString("0.2")).Round(2) }},
		{"Fees", func(w int) decimal.Decimal { return g.net(w).Mul(decimal.RequireFromString("-0.03")).Round(2) }},
	}
	for _, l := range lines {
		row := []string{l.label}
		for w := 0; w < g.cfg.Weeks; w++ {
			cell := FormatMoney(l.value(w))
			if g.faker.Chance(g.cfg.MalformedRatio) {
				cell = Choose(g.faker, []string{"--", "USD?", ""})
			}
			row = append(row, cell)
		}
		out = append(out, row)
	}
	return out
}

func (g *Generator) net(week int) decimal.Decimal {
	return g.gross[week].Sub(g.discounts[week]).Sub(g.refunds[week])
}

// ProgressReporter tracks and reports sample generation progress.
type ProgressReporter struct {
	fileName         string
	totalRows        int64
	currentRow       int64
	progressInterval int64
}

// NewProgressReporter creates a new progress reporter.
func NewProgressReporter(fileName string, totalRows int64, interval int64) *ProgressReporter {
	return &ProgressReporter{
		fileName:         fileName,
		totalRows:        totalRows,
		progressInterval: interval,
	}
}

// Update updates the progress and logs if necessary.
func (p *ProgressReporter) Update(rows int64) {
	oldRow := p.currentRow
	p.currentRow += rows

	// Check if we crossed a progress interval
	if p.currentRow/p.progressInterval > oldRow/p.progressInterval {
		pct := float64(p.currentRow) / float64(p.totalRows) * 100
		logging.Debug().
			Str("file", p.fileName).
			Int64("rows", p.currentRow).
			Int64("total", p.totalRows).
			Float64("percent", pct).
			Msg("Generating rows")
	}
}

// Done logs completion.
func (p *ProgressReporter) Done() {
	logging.Info().
		Str("file", p.fileName).
		Int64("rows", p.currentRow).
		Msg("Sample file complete")
}

// FormatSize formats a byte count as a human-readable string.
func FormatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
	)

	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
