package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/realfoodscore/backend/config"
	"github.com/realfoodscore/backend/internal/domain"
	"github.com/realfoodscore/backend/internal/infrastructure/cache"
	"github.com/realfoodscore/backend/internal/infrastructure/openfoodfacts"
	"github.com/realfoodscore/backend/internal/logging"
	"github.com/realfoodscore/backend/internal/report"
	"github.com/realfoodscore/backend/internal/usecase"
	"github.com/realfoodscore/backend/internal/worker"
)

// logger is the application-wide structured logger (writes to stderr).
var logger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
	ReportTimestamp: false,
	Level:           charmlog.WarnLevel,
})

// Set by build flags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries the state shared by every subcommand
type app struct {
	configFile string
	verbose    bool
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "realfood",
		Short: "Real Food Score - rate packaged food by its ingredient list",
		Long: `realfood classifies the ingredients of a packaged food and scores
the product under three philosophies: a strict whole-food view (RFK),
the official dietary guideline view and a practical middle ground.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default: ./config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(newScoreCmd(a))
	root.AddCommand(newBarcodeCmd(a))
	root.AddCommand(newSearchCmd(a))
	root.AddCommand(newBatchCmd(a))
	root.AddCommand(newCatalogCmd())
	root.AddCommand(newConfigCmd(a))
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// load reads the configuration and sets up the logger
func (a *app) load() error {
	v := config.NewViper()
	cfg, err := config.FromViper(v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := "warn"
	if a.verbose {
		level = "debug"
	}
	l, err := logging.New(os.Stderr, level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	logger = l

	if a.verbose && v.ConfigFileUsed() != "" {
		logger.Debug("using config file", "path", v.ConfigFileUsed())
	}
	return nil
}

// productService builds the cached Open Food Facts lookup from the config
func (a *app) productService() (*usecase.ProductService, error) {
	store, err := cache.FromConfig(a.cfg.Cache)
	if err != nil {
		return nil, err
	}
	client := openfoodfacts.NewClient(openfoodfacts.Options{
		BaseURL:           a.cfg.OpenFoodFacts.BaseURL,
		UserAgent:         a.cfg.OpenFoodFacts.UserAgent,
		Timeout:           a.cfg.OpenFoodFacts.Timeout,
		RequestsPerSecond: a.cfg.OpenFoodFacts.RequestsPerSecond,
		Burst:             a.cfg.OpenFoodFacts.Burst,
		Logger:            logger,
	})
	return usecase.NewProductService(store, client, nil, usecase.ProductServiceConfig{
		CacheTTL: a.cfg.Cache.TTL,
		Logger:   logger,
	}), nil
}

func checkFormat(format string) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format %q: must be 'text' or 'json'", format)
	}
	return nil
}

// scoreParams holds the parsed flags for the score command.
type scoreParams struct {
	name        string
	ingredients string
	format      string
	scorer      worker.IngredientScorer
	stdout      io.Writer
}

// runScore is the extracted, testable body of the score command.
func runScore(p scoreParams) error {
	if err := checkFormat(p.format); err != nil {
		return err
	}

	name := strings.TrimSpace(p.name)
	if name == "" {
		name = "Unknown Product"
	}

	rpt, err := p.scorer.Score(name, p.ingredients)
	if err != nil {
		return err
	}

	logger.Debug("scored product", "product", name, "ingredients", rpt.IngredientCount)
	if p.format == "json" {
		return report.WriteJSON(p.stdout, rpt)
	}
	return report.WriteText(p.stdout, rpt)
}

func newScoreCmd(a *app) *cobra.Command {
	var (
		name        string
		format      string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "score [ingredients]",
		Short: "Score an ingredient list",
		Long: `Score a comma-separated ingredient list under all three tiers.
Without an argument the list is read from standard input.`,
		Example: `  realfood score --name Soda "high fructose corn syrup, caramel color, caffeine"
  echo "eggs, butter, salt" | realfood score --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scorer := usecase.NewScoreService(nil)
			if interactive {
				return runInteractiveScore(scorer, name)
			}

			var ingredients string
			if len(args) == 1 {
				ingredients = args[0]
			} else {
				text, err := readAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				ingredients = text
			}

			return runScore(scoreParams{
				name:        name,
				ingredients: ingredients,
				format:      format,
				scorer:      scorer,
				stdout:      cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "product name shown in the report")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "launch interactive TUI for scoring")

	return cmd
}

// readAll reads r to the end and joins its lines into one ingredient list
func readAll(r io.Reader) (string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read ingredients: %w", err)
	}
	return strings.Join(lines, " "), nil
}

// productLookup is the part of the product service the lookup commands use
type productLookup interface {
	ScoreBarcode(ctx context.Context, barcode string) (*domain.BarcodeScore, error)
	SearchProducts(ctx context.Context, query string, limit int) ([]domain.ProductMatch, error)
}

// barcodeParams holds the parsed flags for the barcode command.
type barcodeParams struct {
	barcode  string
	format   string
	products productLookup
	stdout   io.Writer
}

// runBarcode is the extracted, testable body of the barcode command. A
// product without ingredient data is still printed before the error.
func runBarcode(ctx context.Context, p barcodeParams) error {
	if err := checkFormat(p.format); err != nil {
		return err
	}

	result, err := p.products.ScoreBarcode(ctx, p.barcode)
	if result == nil {
		return err
	}

	var werr error
	if p.format == "json" {
		werr = report.WriteBarcodeJSON(p.stdout, result)
	} else {
		werr = report.WriteBarcodeText(p.stdout, result)
	}
	return errors.Join(err, werr)
}

func newBarcodeCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "barcode <code>",
		Short: "Look a product up on Open Food Facts and score it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := a.productService()
			if err != nil {
				return err
			}
			return runBarcode(cmd.Context(), barcodeParams{
				barcode:  args[0],
				format:   format,
				products: products,
				stdout:   cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")
	return cmd
}

// searchParams holds the parsed flags for the search command.
type searchParams struct {
	query    string
	limit    int
	format   string
	products productLookup
	stdout   io.Writer
}

// runSearch is the extracted, testable body of the search command.
func runSearch(ctx context.Context, p searchParams) error {
	if err := checkFormat(p.format); err != nil {
		return err
	}
	if p.limit < 0 {
		return fmt.Errorf("invalid limit %d: must not be negative", p.limit)
	}

	matches, err := p.products.SearchProducts(ctx, p.query, p.limit)
	if err != nil {
		return err
	}

	if p.format == "json" {
		return report.WriteMatchesJSON(p.stdout, matches)
	}
	return report.WriteMatchesText(p.stdout, matches)
}

func newSearchCmd(a *app) *cobra.Command {
	var (
		limit  int
		format string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search Open Food Facts by product name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := a.productService()
			if err != nil {
				return err
			}
			return runSearch(cmd.Context(), searchParams{
				query:    strings.Join(args, " "),
				limit:    limit,
				format:   format,
				products: products,
				stdout:   cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "maximum number of results")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")
	return cmd
}

// batchParams holds the parsed flags for the batch command.
type batchParams struct {
	file     string
	workers  int
	format   string
	scorer   worker.IngredientScorer
	barcodes worker.BarcodeScorer
	stdout   io.Writer
}

// runBatch is the extracted, testable body of the batch command.
func runBatch(ctx context.Context, p batchParams) error {
	if err := checkFormat(p.format); err != nil {
		return err
	}
	if p.workers < 1 {
		return fmt.Errorf("invalid workers %d: must be at least 1", p.workers)
	}

	processor := worker.NewBatchProcessor(p.scorer, p.barcodes, p.workers)
	results, err := processor.ProcessFile(ctx, p.file)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
			logger.Warn("item failed", "item", r.Index+1, "label", r.Item.Label(), "err", r.Error)
		}
	}
	logger.Info("batch complete", "items", len(results), "failed", failed)

	if p.format == "json" {
		return report.WriteBatchJSON(p.stdout, results)
	}
	return report.WriteBatchText(p.stdout, results)
}

func newBatchCmd(a *app) *cobra.Command {
	var (
		workers int
		format  string
	)

	cmd := &cobra.Command{
		Use:   "batch <file.yaml>",
		Short: "Score many products from a YAML file",
		Long: `Score a YAML list of products concurrently. Each entry holds either
a name and an ingredient list or a barcode to look up:

  - name: Soda
    ingredients: high fructose corn syrup, caramel color, caffeine
  - barcode: "3017620422003"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := a.productService()
			if err != nil {
				return err
			}
			return runBatch(cmd.Context(), batchParams{
				file:     args[0],
				workers:  workers,
				format:   format,
				scorer:   products.Scorer(),
				barcodes: products,
				stdout:   cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "number of concurrent workers")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")
	return cmd
}

// runCatalog lists the phrase count of every category, or the phrases of
// one category.
func runCatalog(catalog *usecase.Catalog, category string, w io.Writer) error {
	if category == "" {
		return report.WriteCatalogText(w, catalog)
	}

	c, ok := domain.ParseCategory(category)
	if !ok {
		names := make([]string, 0, len(domain.AllCategories))
		for _, known := range domain.AllCategories {
			names = append(names, string(known))
		}
		return fmt.Errorf("unknown category %q: must be one of %s", category, strings.Join(names, ", "))
	}
	for _, phrase := range catalog.Phrases(c) {
		if _, err := fmt.Fprintln(w, phrase); err != nil {
			return err
		}
	}
	return nil
}

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog [category]",
		Short: "List the reference catalog",
		Long: `Without an argument, print how many phrases each category holds.
With a category name, print its phrases one per line.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category := ""
			if len(args) == 1 {
				category = args[0]
			}
			return runCatalog(usecase.DefaultCatalog(), category, cmd.OutOrStdout())
		},
	}
}

// runConfigShow prints the effective configuration as YAML
func runConfigShow(cfg *config.Config, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(a.cfg, cmd.OutOrStdout())
		},
	})
	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for score reports",
		Long: `Print the JSON Schema (Draft 2020-12) that documents the
structure of realfood score --format=json output and of the
scoring endpoints of the HTTP API.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), report.Schema)
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "realfood %s\n", version)
			return err
		},
	}
}
