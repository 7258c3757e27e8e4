package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/realfoodscore/backend/internal/domain"
	"github.com/realfoodscore/backend/internal/report"
	"github.com/realfoodscore/backend/internal/usecase"
)

const sodaIngredients = "high fructose corn syrup, caramel color, phosphoric acid, caffeine"

// fakeProducts is an in-memory productLookup
type fakeProducts struct {
	products map[string]domain.Product
	matches  []domain.ProductMatch
	err      error
}

func (f *fakeProducts) ScoreBarcode(ctx context.Context, barcode string) (*domain.BarcodeScore, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.products[barcode]
	if !ok {
		return nil, fmt.Errorf("%w: barcode %s", domain.ErrProductNotFound, barcode)
	}
	result := &domain.BarcodeScore{Product: p}
	if p.Ingredients() == "" {
		return result, domain.ErrNoIngredientData
	}
	rpt, err := usecase.Score(p.Name, p.Ingredients())
	if err != nil {
		return result, err
	}
	result.Report = rpt
	return result, nil
}

func (f *fakeProducts) SearchProducts(ctx context.Context, query string, limit int) ([]domain.ProductMatch, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.matches, nil
}

func newFakeProducts() *fakeProducts {
	return &fakeProducts{products: map[string]domain.Product{
		"0049000000443": {Barcode: "0049000000443", Name: "Cola", IngredientsText: sodaIngredients},
		"3017620422003": {Barcode: "3017620422003", Name: "Mystery Spread"},
	}}
}

// ---------------------------------------------------------------------------
// runScore tests
// ---------------------------------------------------------------------------

func TestRunScore_InvalidFormat(t *testing.T) {
	err := runScore(scoreParams{
		ingredients: "eggs",
		format:      "yaml",
		scorer:      usecase.NewScoreService(nil),
		stdout:      &bytes.Buffer{},
	})
	if err == nil {
		t.Fatal("expected error for invalid format")
	}
	if !strings.Contains(err.Error(), `invalid format "yaml"`) {
		t.Errorf("unexpected error message: %s", err)
	}
}

func TestRunScore_TextFormat(t *testing.T) {
	var stdout bytes.Buffer
	err := runScore(scoreParams{
		name:        "Soda",
		ingredients: sodaIngredients,
		format:      "text",
		scorer:      usecase.NewScoreService(nil),
		stdout:      &stdout,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := stdout.String()
	for _, want := range []string{"=== Soda ===", "MAHA Score", "47.5", "61.5"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRunScore_JSONFormat(t *testing.T) {
	var stdout bytes.Buffer
	err := runScore(scoreParams{
		name:        "  ",
		ingredients: "",
		format:      "json",
		scorer:      usecase.NewScoreService(nil),
		stdout:      &stdout,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed domain.ProductScoreReport
	if err := json.Unmarshal(stdout.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v\noutput:\n%s", err, stdout.String())
	}
	if parsed.Product != "Unknown Product" {
		t.Errorf("product = %q, want Unknown Product", parsed.Product)
	}
	if parsed.Scores.RFK.Score != 75 || parsed.Scores.Guideline.Score != 75 || parsed.Scores.Practical.Score != 75 {
		t.Errorf("empty input should score 75 everywhere, got %+v", parsed.Scores)
	}
}

func TestRunScore_MalformedInput(t *testing.T) {
	var stdout bytes.Buffer
	err := runScore(scoreParams{
		ingredients: "sugar\x00salt",
		format:      "text",
		scorer:      usecase.NewScoreService(nil),
		stdout:      &stdout,
	})
	if !errors.Is(err, domain.ErrMalformedInput) {
		t.Errorf("expected ErrMalformedInput, got %v", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("expected no output, got %q", stdout.String())
	}
}

func TestReadAll(t *testing.T) {
	got, err := readAll(strings.NewReader("eggs,\n\n  butter, salt  \n"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "eggs, butter, salt" {
		t.Errorf("readAll = %q", got)
	}
}

// ---------------------------------------------------------------------------
// runBarcode / runSearch tests
// ---------------------------------------------------------------------------

func TestRunBarcode_Scored(t *testing.T) {
	var stdout bytes.Buffer
	err := runBarcode(context.Background(), barcodeParams{
		barcode:  "0049000000443",
		format:   "text",
		products: newFakeProducts(),
		stdout:   &stdout,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out := stdout.String(); !strings.Contains(out, "barcode 0049000000443") || !strings.Contains(out, "47.5") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestRunBarcode_NoIngredientData(t *testing.T) {
	var stdout bytes.Buffer
	err := runBarcode(context.Background(), barcodeParams{
		barcode:  "3017620422003",
		format:   "json",
		products: newFakeProducts(),
		stdout:   &stdout,
	})
	if !errors.Is(err, domain.ErrNoIngredientData) {
		t.Fatalf("expected ErrNoIngredientData, got %v", err)
	}

	var parsed domain.BarcodeScore
	if err := json.Unmarshal(stdout.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if parsed.Product.Name != "Mystery Spread" || parsed.Report != nil {
		t.Errorf("unexpected result %+v", parsed)
	}
}

func TestRunBarcode_NotFound(t *testing.T) {
	var stdout bytes.Buffer
	err := runBarcode(context.Background(), barcodeParams{
		barcode:  "12345678",
		format:   "text",
		products: newFakeProducts(),
		stdout:   &stdout,
	})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("expected no output, got %q", stdout.String())
	}
}

func TestRunSearch(t *testing.T) {
	products := newFakeProducts()
	products.matches = []domain.ProductMatch{
		{Product: domain.Product{Barcode: "0051500255162", Name: "Creamy Peanut Butter"}, MatchScore: 95},
	}

	var stdout bytes.Buffer
	err := runSearch(context.Background(), searchParams{
		query:    "peanut butter",
		limit:    5,
		format:   "json",
		products: products,
		stdout:   &stdout,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed []domain.ProductMatch
	if err := json.Unmarshal(stdout.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(parsed) != 1 || parsed[0].MatchScore != 95 {
		t.Errorf("unexpected matches %+v", parsed)
	}

	err = runSearch(context.Background(), searchParams{query: "milk", limit: -1, format: "text", products: products, stdout: &stdout})
	if err == nil {
		t.Error("expected error for negative limit")
	}

	products.err = domain.ErrLookupUnavailable
	err = runSearch(context.Background(), searchParams{query: "milk", format: "text", products: products, stdout: &stdout})
	if !errors.Is(err, domain.ErrLookupUnavailable) {
		t.Errorf("expected ErrLookupUnavailable, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// runBatch tests
// ---------------------------------------------------------------------------

func writeBatchFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunBatch_JSONFormat(t *testing.T) {
	path := writeBatchFile(t, `
- name: Soda
  ingredients: high fructose corn syrup, caramel color, phosphoric acid, caffeine
- name: Dinner
  ingredients: chicken, rice, olive oil
- barcode: "0049000000443"
- barcode: "12345678"
`)

	var stdout bytes.Buffer
	err := runBatch(context.Background(), batchParams{
		file:     path,
		workers:  2,
		format:   "json",
		scorer:   usecase.NewScoreService(nil),
		barcodes: newFakeProducts(),
		stdout:   &stdout,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed report.BatchReport
	if err := json.Unmarshal(stdout.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v\noutput:\n%s", err, stdout.String())
	}
	if parsed.Total != 4 || parsed.Failed != 1 {
		t.Errorf("Total/Failed = %d/%d, want 4/1", parsed.Total, parsed.Failed)
	}
	for i, entry := range parsed.Results {
		if entry.Index != i {
			t.Errorf("result %d has index %d", i, entry.Index)
		}
	}
	if parsed.Results[0].Report == nil || parsed.Results[0].Report.Scores.RFK.Score != 47.5 {
		t.Errorf("unexpected soda result %+v", parsed.Results[0])
	}
	if parsed.Results[2].Product == nil || parsed.Results[2].Product.Name != "Cola" {
		t.Errorf("expected barcode item to carry its product, got %+v", parsed.Results[2])
	}
	if parsed.Results[3].Error == "" {
		t.Error("expected unknown barcode to fail")
	}
}

func TestRunBatch_TextFormat(t *testing.T) {
	path := writeBatchFile(t, "- name: Eggs\n  ingredients: eggs\n")

	var stdout bytes.Buffer
	err := runBatch(context.Background(), batchParams{
		file:    path,
		workers: 1,
		format:  "text",
		scorer:  usecase.NewScoreService(nil),
		stdout:  &stdout,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out := stdout.String(); !strings.Contains(out, "Eggs") || !strings.Contains(out, "1 item(s) scored, 0 failed") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestRunBatch_Errors(t *testing.T) {
	scorer := usecase.NewScoreService(nil)

	tests := []struct {
		name string
		p    batchParams
		want string
	}{
		{"invalid format", batchParams{file: "x.yaml", workers: 1, format: "csv"}, `invalid format "csv"`},
		{"no workers", batchParams{file: "x.yaml", workers: 0, format: "text"}, "invalid workers 0"},
		{"missing file", batchParams{file: filepath.Join(t.TempDir(), "missing.yaml"), workers: 1, format: "text"}, "read batch file"},
		{"invalid item", batchParams{file: writeBatchFile(t, "- name: Nothing\n"), workers: 1, format: "text"}, "needs ingredients or a barcode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.p.scorer = scorer
			tt.p.stdout = &bytes.Buffer{}
			err := runBatch(context.Background(), tt.p)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// catalog, config, schema and version tests
// ---------------------------------------------------------------------------

func TestRunCatalog(t *testing.T) {
	catalog := usecase.MustNewCatalog(map[domain.IngredientCategory][]string{
		domain.AddedSugar: {"sugar", "cane sugar"},
		domain.WholeFood:  {"eggs"},
	})

	var stdout bytes.Buffer
	if err := runCatalog(catalog, "", &stdout); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout.String(), "added_sugar") {
		t.Errorf("expected category summary, got:\n%s", stdout.String())
	}

	stdout.Reset()
	if err := runCatalog(catalog, "added_sugar", &stdout); err != nil {
		t.Fatal(err)
	}
	if got := stdout.String(); got != "cane sugar\nsugar\n" {
		t.Errorf("phrases = %q, want sorted phrases", got)
	}

	err := runCatalog(catalog, "snacks", &stdout)
	if err == nil || !strings.Contains(err.Error(), "whole_food") {
		t.Errorf("expected unknown category error listing categories, got %v", err)
	}
}

func TestRootCmd_ConfigShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server:\n  port: \"9090\"\ncache:\n  type: memory\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetArgs([]string{"config", "show", "--config", path})
	if err := root.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := stdout.String()
	for _, want := range []string{`port: "9090"`, "type: memory", "world.openfoodfacts.org"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in config output:\n%s", want, out)
		}
	}
}

func TestRootCmd_MissingConfigFile(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"version", "--config", filepath.Join(t.TempDir(), "nope.yaml")})
	if err := root.Execute(); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestSchemaCmd_OutputsValidJSON(t *testing.T) {
	var stdout bytes.Buffer
	cmd := newSchemaCmd()
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &parsed); err != nil {
		t.Fatalf("schema output is not valid JSON: %v", err)
	}
	if parsed["title"] != "Real Food Score Report" {
		t.Errorf("title = %v", parsed["title"])
	}
}

func TestVersionCmd(t *testing.T) {
	var stdout bytes.Buffer
	cmd := newVersionCmd()
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if got := stdout.String(); got != "realfood dev\n" {
		t.Errorf("version output = %q", got)
	}
}
