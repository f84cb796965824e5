package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// RunSummaryView is the data payload for the report summary TUI.
// Same facts as the non-TUI rendering; no TUI-exclusive data.
type RunSummaryView struct {
	RunID   string `json:"run_id"`
	Deck    string `json:"deck"`
	Outcome string `json:"outcome"`

	WellsPlanned   int `json:"wells_planned"`
	WellsCompleted int `json:"wells_completed"`
	WellsFailed    int `json:"wells_failed"`

	RecordsPersisted int64 `json:"records_persisted"`
	RecordsDropped   int64 `json:"records_dropped"`

	TotalNetPay           float64 `json:"total_net_pay"`
	TotalCompletionLength float64 `json:"total_completion_length"`
	TotalWellIndex        float64 `json:"total_well_index"`

	SkinMin  float64 `json:"skin_min"`
	SkinMax  float64 `json:"skin_max"`
	SkinMean float64 `json:"skin_mean"`
}

// SummaryModel is a Bubble Tea model for the run summary view.
type SummaryModel struct {
	data     *RunSummaryView
	width    int
	height   int
	quitting bool
}

// NewSummaryModel creates a summary model.
func NewSummaryModel(data *RunSummaryView) SummaryModel {
	return SummaryModel{data: data}
}

// Init implements tea.Model.
func (m SummaryModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m SummaryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m SummaryModel) View() string {
	if m.quitting {
		return ""
	}
	if m.data == nil {
		return "No summary data"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("Run Summary: %s", m.data.RunID)))
	b.WriteString("\n\n")

	boxes := []string{
		m.renderStatBox("Planned", fmt.Sprintf("%d", m.data.WellsPlanned), highlightColor),
		m.renderStatBox("Completed", fmt.Sprintf("%d", m.data.WellsCompleted), successColor),
		m.renderStatBox("Failed", fmt.Sprintf("%d", m.data.WellsFailed), errorColor),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	b.WriteString("\n\n")

	detail := strings.Builder{}
	writeField := func(label, value string) {
		detail.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render(label), ValueStyle.Render(value)))
	}

	writeField("Deck:", m.data.Deck)
	detail.WriteString(fmt.Sprintf("%s %s\n",
		LabelStyle.Render("Outcome:"), StateStyle(m.data.Outcome).Render(m.data.Outcome)))
	writeField("Persisted:", fmt.Sprintf("%d records (%d dropped)", m.data.RecordsPersisted, m.data.RecordsDropped))
	writeField("Net Pay:", fmt.Sprintf("%.2f", m.data.TotalNetPay))
	writeField("Compl. Length:", fmt.Sprintf("%.1f", m.data.TotalCompletionLength))
	writeField("Well Index:", fmt.Sprintf("%.4g", m.data.TotalWellIndex))
	writeField("Skin:", fmt.Sprintf("min %.2f / mean %.2f / max %.2f", m.data.SkinMin, m.data.SkinMean, m.data.SkinMax))

	b.WriteString(BoxStyle.Render(strings.TrimRight(detail.String(), "\n")))

	help := HelpStyle.Render("Press q or Ctrl+C to quit")
	return b.String() + "\n" + help
}

func (m SummaryModel) renderStatBox(label, value string, color lipgloss.Color) string {
	boxStyle := StatBoxStyle.BorderForeground(color)

	valueStr := StatValueStyle.Foreground(color).Render(value)
	labelStr := StatLabelStyle.Render(label)

	content := lipgloss.JoinVertical(lipgloss.Center, valueStr, labelStr)
	return boxStyle.Render(content)
}

// keyMap defines key bindings.
type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// RunSummaryTUI runs the summary TUI.
func RunSummaryTUI(data *RunSummaryView) error {
	model := NewSummaryModel(data)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderSummaryStatic renders summary data without full TUI (for tests
// and non-interactive fallback).
func RenderSummaryStatic(data *RunSummaryView) string {
	model := NewSummaryModel(data)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
