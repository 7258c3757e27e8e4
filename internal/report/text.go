package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/realfoodscore/backend/internal/domain"
	"github.com/realfoodscore/backend/internal/worker"
)

// tableWidth leaves 4 columns for the left indent of an 80-column terminal.
const tableWidth = 76

// WriteText writes a score report as human-readable styled text to the
// writer. Output uses lipgloss for color when the output is a TTY and
// degrades to plain text for pipes and CI.
func WriteText(w io.Writer, report *domain.ProductScoreReport) error {
	if report == nil {
		return errors.New("report: nil score report")
	}
	s := DefaultStyles()
	c := report.Classification

	fmt.Fprintln(w, s.Header.Render(fmt.Sprintf("=== %s ===", report.Product)))
	fmt.Fprintln(w, s.SubHeader.Render(fmt.Sprintf(
		"    %d ingredient(s), %d whole food, %d flagged, %d unclassified",
		report.IngredientCount, c.CategoryCounts[domain.WholeFood],
		c.FlaggedIngredientCount(), c.UnclassifiedCount)))
	fmt.Fprintln(w)

	fmt.Fprintln(w, tierTable(report.Scores, s))
	fmt.Fprintln(w)

	if len(c.Ingredients) == 0 {
		fmt.Fprintln(w, s.Muted.Render("    No ingredients listed."))
	} else {
		fmt.Fprintln(w, ingredientTable(c.Ingredients, s))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, s.Header.Render("Flags"))
	if len(report.Flags) == 0 {
		fmt.Fprintln(w, s.Muted.Render("    No flagged ingredients."))
	}
	for _, flag := range report.Flags {
		fmt.Fprintln(w, s.Flag.Render("    ! "+flag))
	}

	if len(report.Recommendations) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, s.Header.Render("Recommendations"))
		for _, rec := range report.Recommendations {
			fmt.Fprintln(w, s.Tip.Render("    - "+rec))
		}
	}
	return nil
}

func tierTable(scores domain.TierScores, s Styles) *table.Table {
	rows := make([][]string, 0, len(domain.AllTiers))
	for _, tier := range domain.AllTiers {
		ts, _ := scores.ByTier(tier)
		rows = append(rows, []string{
			ts.Title,
			fmt.Sprintf("%.1f", ts.Score),
			ts.Grade,
			ts.Label,
		})
	}

	return table.New().
		Width(tableWidth).
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.TableHeader
			}
			if col == 2 && row >= 0 && row < len(rows) {
				return s.GradeStyle(rows[row][2])
			}
			return s.TableCell
		}).
		Headers("TIER", "SCORE", "GRADE", "LABEL").
		Rows(rows...)
}

func ingredientTable(ingredients []domain.ClassifiedIngredient, s Styles) *table.Table {
	// INGREDIENT=30, CATEGORIES=28, MATCH=9 plus borders and padding.
	rows := make([][]string, 0, len(ingredients))
	flagged := make([]bool, 0, len(ingredients))
	for _, ing := range ingredients {
		categories := make([]string, 0, len(ing.Categories))
		for _, c := range ing.Categories {
			categories = append(categories, string(c))
		}
		cats := strings.Join(categories, ", ")
		if cats == "" {
			cats = "-"
		}
		rows = append(rows, []string{
			truncate(ing.Raw, 30),
			truncate(cats, 28),
			string(ing.Match),
		})
		flagged = append(flagged, ing.Flagged())
	}

	return table.New().
		Width(tableWidth).
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.TableHeader
			}
			if col == 1 && row >= 0 && row < len(flagged) && flagged[row] {
				return s.Flag
			}
			return s.TableCell
		}).
		Headers("INGREDIENT", "CATEGORIES", "MATCH").
		Rows(rows...)
}

// WriteProductText writes the product details of a barcode lookup.
func WriteProductText(w io.Writer, product *domain.Product) error {
	if product == nil {
		return errors.New("report: nil product")
	}
	s := DefaultStyles()

	fmt.Fprintln(w, s.Header.Render(fmt.Sprintf("=== %s ===", product.Name)))
	sub := "    barcode " + product.Barcode
	if product.Brand != "" {
		sub += ", " + product.Brand
	}
	fmt.Fprintln(w, s.SubHeader.Render(sub))

	if product.NutriScore != "" {
		fmt.Fprintf(w, "    Nutri-Score: %s\n", strings.ToUpper(product.NutriScore))
	}
	if product.NovaGroup > 0 {
		fmt.Fprintf(w, "    NOVA group:  %d\n", product.NovaGroup)
	}
	if product.Categories != "" {
		fmt.Fprintf(w, "    Categories:  %s\n", truncate(product.Categories, 60))
	}

	if ingredients := product.Ingredients(); ingredients != "" {
		fmt.Fprintln(w, lipgloss.NewStyle().Width(tableWidth).PaddingLeft(4).Render("Ingredients: "+ingredients))
	} else {
		fmt.Fprintln(w, s.Muted.Render("    No ingredient data."))
	}
	return nil
}

// WriteBarcodeText writes a looked-up product followed by its report, when
// there is one.
func WriteBarcodeText(w io.Writer, result *domain.BarcodeScore) error {
	if result == nil {
		return errors.New("report: nil barcode result")
	}
	if err := WriteProductText(w, &result.Product); err != nil {
		return err
	}
	if result.Report == nil {
		return nil
	}
	fmt.Fprintln(w)
	return WriteText(w, result.Report)
}

// WriteMatchesText writes ranked search results as a table.
func WriteMatchesText(w io.Writer, matches []domain.ProductMatch) error {
	s := DefaultStyles()

	fmt.Fprintln(w, s.Header.Render(fmt.Sprintf("=== %d result(s) ===", len(matches))))
	if len(matches) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, []string{
			fmt.Sprintf("%.1f", m.MatchScore),
			m.Product.Barcode,
			truncate(m.Product.Name, 28),
			truncate(m.Product.Brand, 14),
		})
	}

	t := table.New().
		Width(tableWidth).
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.TableHeader
			}
			return s.TableCell
		}).
		Headers("MATCH", "BARCODE", "PRODUCT", "BRAND").
		Rows(rows...)

	fmt.Fprintln(w, t)
	return nil
}

// WriteBatchText writes batch results as a table with one row per item and
// a summary line.
func WriteBatchText(w io.Writer, results []*worker.ItemResult) error {
	s := DefaultStyles()

	rows := make([][]string, 0, len(results))
	failed := 0
	for _, r := range results {
		row := []string{
			fmt.Sprintf("%d", r.Index+1),
			truncate(r.Item.Label(), 24),
			"-", "-", "-",
		}
		if r.Report != nil {
			row[2] = scoreCell(r.Report.Scores.RFK)
			row[3] = scoreCell(r.Report.Scores.Guideline)
			row[4] = scoreCell(r.Report.Scores.Practical)
		}
		if r.Error != nil {
			failed++
			row = append(row, truncate(r.Error.Error(), 18))
		} else {
			row = append(row, "ok")
		}
		rows = append(rows, row)
	}

	t := table.New().
		Width(tableWidth).
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.TableHeader
			}
			if col == 5 && row >= 0 && row < len(rows) {
				if rows[row][5] == "ok" {
					return s.Pass
				}
				return s.Fail
			}
			return s.TableCell
		}).
		Headers("#", "PRODUCT", "RFK", "GUIDE", "PRACT", "STATUS").
		Rows(rows...)

	fmt.Fprintln(w, t)
	fmt.Fprintf(w, "\n%s\n", s.Header.Render(fmt.Sprintf(
		"%d item(s) scored, %d failed", len(results)-failed, failed)))
	return nil
}

func scoreCell(ts domain.TierScore) string {
	return fmt.Sprintf("%.1f %s", ts.Score, ts.Grade)
}

// truncate shortens s to at most n runes, ending in "..." when cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
