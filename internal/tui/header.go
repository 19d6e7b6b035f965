package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/glmeal/internal/format"
	"github.com/agbru/glmeal/internal/orchestration"
)

// HeaderModel renders the top bar: title, version, step progress and the
// smart-matching badge.
type HeaderModel struct {
	version string
	step    orchestration.Step
	smart   bool
	width   int
}

// NewHeaderModel creates a new header.
func NewHeaderModel(version string) HeaderModel {
	return HeaderModel{version: version, step: orchestration.StepInput}
}

// SetStep updates the progress indicator.
func (h *HeaderModel) SetStep(s orchestration.Step) { h.step = s }

// SetSmart updates the smart-matching badge.
func (h *HeaderModel) SetSmart(on bool) { h.smart = on }

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) { h.width = w }

// View renders the header.
func (h HeaderModel) View() string {
	titleText := "glmeal"
	if h.version != "" && h.version != "dev" {
		titleText += " " + h.version
	}
	pipe := dimStyle.Render(" | ")
	row := titleStyle.Render(titleText) + pipe +
		stepStyle.Render(format.StepIndicator(h.step.Number(), orchestration.StepCount))
	if h.smart {
		row += pipe + smartOnStyle.Render("smart matching")
	}

	gap := max(h.width-2-lipgloss.Width(row), 0)
	return headerStyle.Render(row + spaces(gap))
}

// spaces returns a string of n space characters.
func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
