package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/realfoodscore/backend/internal/domain"
)

// IngredientScorer scores a raw ingredient list
type IngredientScorer interface {
	Score(name, ingredients string) (*domain.ProductScoreReport, error)
}

// BarcodeScorer looks a barcode up and scores the product
type BarcodeScorer interface {
	ScoreBarcode(ctx context.Context, barcode string) (*domain.BarcodeScore, error)
}

// Item is one product of a batch file: either an ingredient list or a
// barcode to look up
type Item struct {
	Name        string `yaml:"name" json:"name,omitempty"`
	Ingredients string `yaml:"ingredients" json:"ingredients,omitempty"`
	Barcode     string `yaml:"barcode" json:"barcode,omitempty"`
}

// Label names the item in output
func (i Item) Label() string {
	switch {
	case i.Name != "":
		return i.Name
	case i.Barcode != "":
		return i.Barcode
	default:
		return "Unknown Product"
	}
}

// ScoreJob scores a single batch item
type ScoreJob struct {
	Index    int
	Item     Item
	Scorer   IngredientScorer
	Barcodes BarcodeScorer
}

// Execute executes the score job
func (j *ScoreJob) Execute(ctx context.Context) Result {
	result := &ItemResult{Index: j.Index, Item: j.Item}

	if err := ctx.Err(); err != nil {
		result.Error = err
		return result
	}

	switch {
	case j.Item.Barcode != "":
		if j.Barcodes == nil {
			result.Error = fmt.Errorf("%w: barcode lookups are not available", domain.ErrLookupUnavailable)
			return result
		}
		scored, err := j.Barcodes.ScoreBarcode(ctx, j.Item.Barcode)
		if scored != nil {
			result.Product = &scored.Product
			result.Report = scored.Report
		}
		result.Error = err
	default:
		result.Report, result.Error = j.Scorer.Score(j.Item.Label(), j.Item.Ingredients)
	}
	return result
}

// ItemResult represents the result of a score job
type ItemResult struct {
	Index   int
	Item    Item
	Product *domain.Product
	Report  *domain.ProductScoreReport
	Error   error
}

// GetError returns the error from the item result
func (r *ItemResult) GetError() error {
	return r.Error
}

// BatchProcessor scores many items concurrently
type BatchProcessor struct {
	scorer      IngredientScorer
	barcodes    BarcodeScorer
	concurrency int
}

// NewBatchProcessor creates a new batch processor. barcodes may be nil when
// no product database is configured.
func NewBatchProcessor(scorer IngredientScorer, barcodes BarcodeScorer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		scorer:      scorer,
		barcodes:    barcodes,
		concurrency: concurrency,
	}
}

// ProcessItems scores items concurrently and returns the results in input
// order. Items never started because ctx ended carry the context error.
func (b *BatchProcessor) ProcessItems(ctx context.Context, items []Item) []*ItemResult {
	if len(items) == 0 {
		return []*ItemResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, item := range items {
		job := &ScoreJob{Index: i, Item: item, Scorer: b.scorer, Barcodes: b.barcodes}
		if err := pool.Submit(job); err != nil {
			break
		}
	}

	results := make([]*ItemResult, len(items))
	for _, r := range pool.Wait() {
		ir := r.(*ItemResult)
		results[ir.Index] = ir
	}

	for i, r := range results {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = ErrPoolClosed
			}
			results[i] = &ItemResult{Index: i, Item: items[i], Error: err}
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })
	return results
}

// ProcessFile reads a YAML batch file and scores its items
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ItemResult, error) {
	items, err := ReadItemsFile(filePath)
	if err != nil {
		return nil, err
	}
	return b.ProcessItems(ctx, items), nil
}

// ReadItemsFile reads a YAML list of {name, ingredients} or {barcode} items
func ReadItemsFile(filePath string) ([]Item, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}
	return ParseItems(data)
}

// ParseItems decodes a YAML list of batch items. Every item needs either
// an ingredients key or a barcode.
func ParseItems(data []byte) ([]Item, error) {
	var raw []map[string]*string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parse batch file: %v", domain.ErrInvalidRequest, err)
	}

	items := make([]Item, 0, len(raw))
	var errs []error
	for i, entry := range raw {
		item := Item{
			Name:        strings.TrimSpace(deref(entry["name"])),
			Ingredients: deref(entry["ingredients"]),
			Barcode:     strings.TrimSpace(deref(entry["barcode"])),
		}
		if entry["ingredients"] == nil && item.Barcode == "" {
			errs = append(errs, fmt.Errorf("item %d: needs ingredients or a barcode", i+1))
			continue
		}
		items = append(items, item)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, errors.Join(errs...))
	}
	return items, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
