// Package report renders score reports, search results and batch results
// as JSON or as human-readable terminal text.
package report

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/realfoodscore/backend/internal/domain"
	"github.com/realfoodscore/backend/internal/worker"
)

// WriteJSON writes a score report as formatted JSON to the writer.
func WriteJSON(w io.Writer, report *domain.ProductScoreReport) error {
	if report == nil {
		return errors.New("report: nil score report")
	}
	return encode(w, report)
}

// WriteBarcodeJSON writes a looked-up product with its report.
func WriteBarcodeJSON(w io.Writer, result *domain.BarcodeScore) error {
	if result == nil {
		return errors.New("report: nil barcode result")
	}
	return encode(w, result)
}

// WriteMatchesJSON writes ranked search results.
func WriteMatchesJSON(w io.Writer, matches []domain.ProductMatch) error {
	if matches == nil {
		matches = []domain.ProductMatch{}
	}
	return encode(w, matches)
}

// BatchEntry is the JSON form of one batch item.
type BatchEntry struct {
	Index   int                        `json:"index"`
	Item    worker.Item                `json:"item"`
	Product *domain.Product            `json:"product,omitempty"`
	Report  *domain.ProductScoreReport `json:"report,omitempty"`
	Error   string                     `json:"error,omitempty"`
}

// BatchReport is the top-level JSON output of a batch run.
type BatchReport struct {
	Total   int          `json:"total"`
	Failed  int          `json:"failed"`
	Results []BatchEntry `json:"results"`
}

// NewBatchReport converts batch results into their JSON form.
func NewBatchReport(results []*worker.ItemResult) BatchReport {
	out := BatchReport{Total: len(results), Results: make([]BatchEntry, 0, len(results))}
	for _, r := range results {
		entry := BatchEntry{Index: r.Index, Item: r.Item, Product: r.Product, Report: r.Report}
		if r.Error != nil {
			entry.Error = r.Error.Error()
			out.Failed++
		}
		out.Results = append(out.Results, entry)
	}
	return out
}

// WriteBatchJSON writes batch results as formatted JSON.
func WriteBatchJSON(w io.Writer, results []*worker.ItemResult) error {
	return encode(w, NewBatchReport(results))
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
