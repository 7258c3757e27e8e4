package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/realfoodscore/backend/internal/report"
	"github.com/realfoodscore/backend/internal/worker"
)

// keyMap defines keybindings for the interactive TUI.
type keyMap struct {
	Next     key.Binding
	Submit   key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Submit, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Submit},
		{k.PageUp, k.PageDown, k.Quit},
	}
}

var defaultKeyMap = keyMap{
	Next:     key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch field")),
	Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "score")),
	PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
	PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
	Quit:     key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
}

// Styles for the TUI.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

const (
	fieldName = iota
	fieldIngredients
)

// headerHeight is the title plus the two inputs and a blank line.
const headerHeight = 4

// scoreModel is the Bubble Tea model for scoring ingredient lists.
type scoreModel struct {
	scorer   worker.IngredientScorer
	inputs   []textinput.Model
	focus    int
	viewport viewport.Model
	help     help.Model
	keys     keyMap
	ready    bool
	content  string
}

func newScoreModel(scorer worker.IngredientScorer, name string) scoreModel {
	nameInput := textinput.New()
	nameInput.Prompt = "Product:     "
	nameInput.Placeholder = "Unknown Product"
	nameInput.CharLimit = 120
	nameInput.SetValue(name)

	ingredientsInput := textinput.New()
	ingredientsInput.Prompt = "Ingredients: "
	ingredientsInput.Placeholder = "chicken, rice, olive oil, salt"
	ingredientsInput.CharLimit = 4096

	m := scoreModel{
		scorer:  scorer,
		inputs:  []textinput.Model{nameInput, ingredientsInput},
		focus:   fieldIngredients,
		help:    help.New(),
		keys:    defaultKeyMap,
		content: statusStyle.Render("Type an ingredient list and press enter."),
	}
	m.inputs[fieldIngredients].Focus()
	return m
}

// submit scores the current inputs and renders the report as content
func (m *scoreModel) submit() {
	name := strings.TrimSpace(m.inputs[fieldName].Value())
	if name == "" {
		name = "Unknown Product"
	}

	rpt, err := m.scorer.Score(name, m.inputs[fieldIngredients].Value())
	if err != nil {
		m.setContent(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		return
	}

	var buf bytes.Buffer
	if err := report.WriteText(&buf, rpt); err != nil {
		m.setContent(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		return
	}
	m.setContent(buf.String())
}

func (m *scoreModel) setContent(content string) {
	m.content = content
	if m.ready {
		m.viewport.SetContent(content)
		m.viewport.GotoTop()
	}
}

func (m *scoreModel) cycleFocus() {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + 1) % len(m.inputs)
	m.inputs[m.focus].Focus()
}

func (m scoreModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m scoreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		footerHeight := 2
		height := max(1, msg.Height-headerHeight-footerHeight)

		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.viewport.SetContent(m.content)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.cycleFocus()
			return m, nil
		case key.Matches(msg, m.keys.Submit):
			m.submit()
			return m, nil
		case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	for i := range m.inputs {
		var cmd tea.Cmd
		m.inputs[i], cmd = m.inputs[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	if _, isKey := msg.(tea.KeyMsg); !isKey {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m scoreModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := titleStyle.Render("Real Food Score") + "\n" +
		m.inputs[fieldName].View() + "\n" +
		m.inputs[fieldIngredients].View() + "\n"

	footer := statusStyle.Render(
		fmt.Sprintf(" %3.f%% ", m.viewport.ScrollPercent()*100)) +
		" " + m.help.View(m.keys)

	return header + "\n" + m.viewport.View() + "\n" + footer
}

// runInteractiveScore launches the Bubble Tea TUI for scoring
// ingredient lists.
func runInteractiveScore(scorer worker.IngredientScorer, name string) error {
	model := newScoreModel(scorer, name)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
