package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/realfoodscore/backend/internal/usecase"
)

// WriteCatalogText writes the number of phrases per catalog category.
func WriteCatalogText(w io.Writer, catalog *usecase.Catalog) error {
	s := DefaultStyles()

	rows := make([][]string, 0, len(catalog.Categories()))
	for _, c := range catalog.Categories() {
		kind := "flagged"
		if !c.Flagged() {
			kind = "whole food"
		}
		rows = append(rows, []string{string(c), fmt.Sprintf("%d", len(catalog.Phrases(c))), kind})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.TableHeader
			}
			if col == 2 && row >= 0 && row < len(rows) && rows[row][2] == "flagged" {
				return s.Flag
			}
			return s.TableCell
		}).
		Headers("CATEGORY", "PHRASES", "KIND").
		Rows(rows...)

	fmt.Fprintln(w, t)
	fmt.Fprintf(w, "\n%s\n", s.Header.Render(fmt.Sprintf(
		"%d phrase(s) in %d categories", catalog.Size(), len(rows))))
	return nil
}
