// Command scentia-load imports the perfume catalog from CSV exports and
// dumps positive-feedback rates back out. It is offline tooling; the API
// server never writes the catalog.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/aromatch/scentia/internal/config"
	dbSqlite "github.com/aromatch/scentia/internal/db/sqlite"
	"github.com/aromatch/scentia/internal/domain"
	"github.com/aromatch/scentia/internal/domain/predicate"
	"github.com/aromatch/scentia/internal/domain/query"
	logpkg "github.com/aromatch/scentia/internal/logger"
	productrepo "github.com/aromatch/scentia/internal/repository/product"
)

// defaultPositiveRate is assigned to catalog rows with no feedback data.
const defaultPositiveRate = 0.5

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: scentia-load <import|export> [flags]")
		os.Exit(2)
	}

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	catalog, err := dbSqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to open catalog database", zap.Error(err))
	}
	defer catalog.Close()

	repo := productrepo.New(catalog)
	ctx := context.Background()

	switch os.Args[1] {
	case "import":
		err = runImport(ctx, repo, os.Args[2:], logger)
	case "export":
		err = runExport(ctx, repo, os.Args[2:], logger)
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n", os.Args[1])
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal("Command failed", zap.Error(err))
	}
}

// runImport merges the catalog CSV with the positive-rate CSV on the
// product title and replaces the products table contents.
func runImport(ctx context.Context, repo *productrepo.Repo, args []string, logger *zap.Logger) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	catalogPath := fs.String("catalog", "", "catalog CSV (product_title, url, main_accords, ...)")
	ratesPath := fs.String("rates", "", "positive-rate CSV (product_title, positive_rate); optional")
	_ = fs.Parse(args)

	if *catalogPath == "" {
		return fmt.Errorf("-catalog is required")
	}

	rates := map[string]float64{}
	if *ratesPath != "" {
		var err error
		rates, err = readRates(*ratesPath)
		if err != nil {
			return fmt.Errorf("read rates: %w", err)
		}
	}

	products, err := readCatalog(*catalogPath, rates)
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}

	if err := repo.ReplaceAll(ctx, products); err != nil {
		return fmt.Errorf("import products: %w", err)
	}

	logger.Info("Catalog imported",
		zap.Int("products", len(products)),
		zap.Int("rated", len(rates)),
	)
	return nil
}

// runExport writes name, description, and positive_rate for the whole
// catalog to a CSV file.
func runExport(ctx context.Context, repo *productrepo.Repo, args []string, logger *zap.Logger) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	outPath := fs.String("out", "fragrance_with_positive.csv", "output CSV path")
	_ = fs.Parse(args)

	// Empty predicate matches the whole catalog.
	products, err := repo.FindByPredicate(ctx, predicate.Build(query.Attributes{}))
	if err != nil {
		return fmt.Errorf("fetch products: %w", err)
	}

	f, err := os.Create(*outPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"product_title", "description", "positive_rate"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range products {
		row := []string{p.Name, p.Description, strconv.FormatFloat(p.PositiveRate, 'f', -1, 64)}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row for %q: %w", p.Name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	logger.Info("Catalog exported", zap.Int("products", len(products)), zap.String("path", *outPath))
	return nil
}

func readRates(path string) (map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := columnIndex(header)
	titleIdx, okTitle := cols["product_title"]
	rateIdx, okRate := cols["positive_rate"]
	if !okTitle || !okRate {
		return nil, fmt.Errorf("rates CSV must have product_title and positive_rate columns")
	}

	rates := map[string]float64{}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		rate, err := strconv.ParseFloat(rec[rateIdx], 64)
		if err != nil {
			continue // unparseable rate falls back to the default
		}
		rates[rec[titleIdx]] = rate
	}
	return rates, nil
}

func readCatalog(path string, rates map[string]float64) ([]domain.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := columnIndex(header)
	if _, ok := cols["product_title"]; !ok {
		return nil, fmt.Errorf("catalog CSV must have a product_title column")
	}

	field := func(rec []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(rec) {
			return ""
		}
		return rec[idx]
	}

	var products []domain.Product
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		title := field(rec, "product_title")
		rate, ok := rates[title]
		if !ok {
			rate = defaultPositiveRate
		}

		products = append(products, domain.Product{
			Name:         title,
			URL:          field(rec, "url"),
			MainAccords:  field(rec, "main_accords"),
			Longevity:    field(rec, "longevity"),
			Sillage:      field(rec, "sillage"),
			Gender:       field(rec, "gender"),
			Season:       field(rec, "suitable_season"),
			Time:         field(rec, "suitable_time"),
			Description:  field(rec, "description"),
			PositiveRate: rate,
		})
	}
	return products, nil
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	return cols
}
