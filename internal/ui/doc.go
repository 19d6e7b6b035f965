// Package ui holds the colour palettes shared by the command-line output and
// the terminal UI. ANSI themes serve the plain CLI; TUITheme carries the
// lipgloss equivalents. Both honour NO_COLOR.
package ui
