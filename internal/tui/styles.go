package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/glmeal/internal/ui"
)

// Style variables for the screens.
// Initialized from the ui theme system via initTUIStyles().
var (
	panelStyle    lipgloss.Style
	headerStyle   lipgloss.Style
	titleStyle    lipgloss.Style
	stepStyle     lipgloss.Style
	dimStyle      lipgloss.Style
	labelStyle    lipgloss.Style
	cursorStyle   lipgloss.Style
	selectedStyle lipgloss.Style
	valueStyle    lipgloss.Style
	warningStyle  lipgloss.Style
	errorStyle    lipgloss.Style
	suggestStyle  lipgloss.Style
	smartOnStyle  lipgloss.Style
	spinnerStyle  lipgloss.Style
	totalBoxStyle lipgloss.Style
	currentTheme  ui.TUITheme
)

func init() {
	initTUIStyles()
}

// initTUIStyles rebuilds all styles from the current ui theme.
// Called at package init and again from Run() after InitTheme has been invoked.
func initTUIStyles() {
	t := ui.GetCurrentTUITheme()
	currentTheme = t

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Foreground(t.Text).
		Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent).
		Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent)

	stepStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	dimStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	labelStyle = lipgloss.NewStyle().
		Foreground(t.Text).
		Bold(true)

	cursorStyle = lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)

	selectedStyle = lipgloss.NewStyle().
		Foreground(t.Accent)

	valueStyle = lipgloss.NewStyle().
		Foreground(t.Text).
		Bold(true)

	warningStyle = lipgloss.NewStyle().
		Foreground(t.Warning)

	errorStyle = lipgloss.NewStyle().
		Foreground(t.Error).
		Bold(true)

	suggestStyle = lipgloss.NewStyle().
		Foreground(t.Info)

	smartOnStyle = lipgloss.NewStyle().
		Foreground(t.Success).
		Bold(true)

	spinnerStyle = lipgloss.NewStyle().
		Foreground(t.Accent)

	totalBoxStyle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder()).
		Padding(0, 2).
		Bold(true)
}

// bandStyle returns the style for a glycemic load band name.
func bandStyle(band string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(currentTheme.BandColor(band)).Bold(true)
}
