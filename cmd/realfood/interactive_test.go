package main

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/realfoodscore/backend/internal/domain"
	"github.com/realfoodscore/backend/internal/usecase"
)

func sizedModel(t *testing.T, name string) scoreModel {
	t.Helper()
	m := newScoreModel(usecase.NewScoreService(nil), name)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(scoreModel)
}

func typeText(m scoreModel, text string) scoreModel {
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return updated.(scoreModel)
}

func press(m scoreModel, k tea.KeyType) (scoreModel, tea.Cmd) {
	updated, cmd := m.Update(tea.KeyMsg{Type: k})
	return updated.(scoreModel), cmd
}

func TestScoreModel_InitialView(t *testing.T) {
	m := newScoreModel(usecase.NewScoreService(nil), "")
	if got := m.View(); got != "Initializing..." {
		t.Errorf("View before sizing = %q", got)
	}

	m = sizedModel(t, "Soda")
	view := m.View()
	if !strings.Contains(view, "Real Food Score") || !strings.Contains(view, "Soda") {
		t.Errorf("expected title and product name in view:\n%s", view)
	}
	if m.focus != fieldIngredients {
		t.Errorf("focus = %d, want ingredients", m.focus)
	}
}

func TestScoreModel_SubmitScores(t *testing.T) {
	m := sizedModel(t, "Soda")
	m = typeText(m, sodaIngredients)
	m, _ = press(m, tea.KeyEnter)

	if !strings.Contains(m.content, "=== Soda ===") || !strings.Contains(m.content, "47.5") {
		t.Errorf("expected rendered report, got:\n%s", m.content)
	}
	if !strings.Contains(m.View(), "MAHA Score") {
		t.Error("expected report in the viewport")
	}
}

func TestScoreModel_TabSwitchesField(t *testing.T) {
	m := sizedModel(t, "")
	m, _ = press(m, tea.KeyTab)
	if m.focus != fieldName {
		t.Fatalf("focus = %d, want name", m.focus)
	}

	m = typeText(m, "Breakfast")
	m, _ = press(m, tea.KeyTab)
	m = typeText(m, "eggs, butter")
	m, _ = press(m, tea.KeyEnter)

	if m.inputs[fieldName].Value() != "Breakfast" {
		t.Errorf("name = %q", m.inputs[fieldName].Value())
	}
	if !strings.Contains(m.content, "=== Breakfast ===") {
		t.Errorf("expected report for Breakfast, got:\n%s", m.content)
	}
}

func TestScoreModel_EmptyNameDefaults(t *testing.T) {
	m := sizedModel(t, "")
	m, _ = press(m, tea.KeyEnter)
	if !strings.Contains(m.content, "=== Unknown Product ===") {
		t.Errorf("expected default product name, got:\n%s", m.content)
	}
}

type failingScorer struct{}

func (failingScorer) Score(name, ingredients string) (*domain.ProductScoreReport, error) {
	return nil, errors.New("scorer exploded")
}

func TestScoreModel_ShowsErrors(t *testing.T) {
	m := newScoreModel(failingScorer{}, "X")
	m.submit()
	if !strings.Contains(m.content, "scorer exploded") {
		t.Errorf("expected error in content, got %q", m.content)
	}
}

func TestScoreModel_Quit(t *testing.T) {
	m := sizedModel(t, "")
	_, cmd := press(m, tea.KeyEsc)
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
