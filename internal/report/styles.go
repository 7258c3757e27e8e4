package report

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles defines the visual theme for terminal report output.
// Lipgloss degrades to no-color when output is not a TTY.
type Styles struct {
	// Header is used for section headers (e.g. "=== Product ===").
	Header lipgloss.Style

	// SubHeader is used for secondary information lines.
	SubHeader lipgloss.Style

	// GradeA through GradeF color-code letter grades.
	GradeA lipgloss.Style
	GradeB lipgloss.Style
	GradeC lipgloss.Style
	GradeD lipgloss.Style
	GradeF lipgloss.Style

	TableHeader lipgloss.Style
	TableCell   lipgloss.Style

	// Flag styles flagged-ingredient lines and flagged categories.
	Flag lipgloss.Style

	// Tip styles recommendation lines.
	Tip lipgloss.Style

	Pass lipgloss.Style
	Fail lipgloss.Style

	Border lipgloss.Style
	Muted  lipgloss.Style
}

// DefaultStyles returns the default color scheme for terminal reports.
func DefaultStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		SubHeader: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),

		GradeA: lipgloss.NewStyle().Foreground(lipgloss.Color("40")).Bold(true),
		GradeB: lipgloss.NewStyle().Foreground(lipgloss.Color("113")),
		GradeC: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		GradeD: lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		GradeF: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),

		TableHeader: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		TableCell:   lipgloss.NewStyle().PaddingRight(1),

		Flag: lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		Tip:  lipgloss.NewStyle().Foreground(lipgloss.Color("75")),

		Pass: lipgloss.NewStyle().Foreground(lipgloss.Color("40")).Bold(true),
		Fail: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),

		Border: lipgloss.NewStyle().Foreground(lipgloss.Color("63")),
		Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// GradeStyle returns the style for a letter grade.
func (s Styles) GradeStyle(grade string) lipgloss.Style {
	switch grade {
	case "A":
		return s.GradeA
	case "B":
		return s.GradeB
	case "C":
		return s.GradeC
	case "D":
		return s.GradeD
	case "F":
		return s.GradeF
	default:
		return s.Muted
	}
}
