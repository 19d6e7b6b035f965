package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines a color scheme for CLI output.
// Each field contains an ANSI escape code for the corresponding category.
type Theme struct {
	// Name is the identifier of the theme.
	Name string
	// Primary is the accent colour for headings and totals.
	Primary string
	// Secondary is used for labels and less prominent text.
	Secondary string
	// Success marks completed operations.
	Success string
	// Warning marks AI-estimated values and other caveats.
	Warning string
	// Error marks failures.
	Error string
	// Info is used for suggestions.
	Info string
	// LowGL, ModerateGL and HighGL colour glycemic load values by band.
	LowGL      string
	ModerateGL string
	HighGL     string
	Bold       string
	Reset      string
}

var (
	// DarkTheme is optimized for dark terminal backgrounds.
	DarkTheme = Theme{
		Name:       "dark",
		Primary:    "\033[38;5;39m",  // Bright blue
		Secondary:  "\033[38;5;245m", // Grey
		Success:    "\033[38;5;82m",  // Bright green
		Warning:    "\033[38;5;220m", // Yellow
		Error:      "\033[38;5;196m", // Red
		Info:       "\033[38;5;141m", // Purple
		LowGL:      "\033[38;5;82m",
		ModerateGL: "\033[38;5;214m",
		HighGL:     "\033[38;5;196m",
		Bold:       "\033[1m",
		Reset:      "\033[0m",
	}

	// LightTheme uses darker colours for light backgrounds.
	LightTheme = Theme{
		Name:       "light",
		Primary:    "\033[38;5;27m",
		Secondary:  "\033[38;5;240m",
		Success:    "\033[38;5;28m",
		Warning:    "\033[38;5;130m",
		Error:      "\033[38;5;124m",
		Info:       "\033[38;5;54m",
		LowGL:      "\033[38;5;28m",
		ModerateGL: "\033[38;5;130m",
		HighGL:     "\033[38;5;124m",
		Bold:       "\033[1m",
		Reset:      "\033[0m",
	}

	// NoColorTheme disables all colour output.
	NoColorTheme = Theme{Name: "none"}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// BandColor returns the escape code for a glycemic load band name
// ("low", "moderate" or "high"). Unknown names get no colour.
func (t Theme) BandColor(band string) string {
	switch band {
	case "low":
		return t.LowGL
	case "moderate":
		return t.ModerateGL
	case "high":
		return t.HighGL
	default:
		return ""
	}
}

// TUITheme defines lipgloss colours for the terminal UI.
type TUITheme struct {
	Text       lipgloss.TerminalColor
	Border     lipgloss.TerminalColor
	Accent     lipgloss.TerminalColor
	Success    lipgloss.TerminalColor
	Warning    lipgloss.TerminalColor
	Error      lipgloss.TerminalColor
	Dim        lipgloss.TerminalColor
	Info       lipgloss.TerminalColor
	LowGL      lipgloss.TerminalColor
	ModerateGL lipgloss.TerminalColor
	HighGL     lipgloss.TerminalColor
}

var (
	// DarkTUITheme is the default TUI palette.
	DarkTUITheme = TUITheme{
		Text:       lipgloss.Color("#E0E0E0"),
		Border:     lipgloss.Color("#3FA34D"),
		Accent:     lipgloss.Color("#7BD389"),
		Success:    lipgloss.Color("#9ece6a"),
		Warning:    lipgloss.Color("#FFB347"),
		Error:      lipgloss.Color("#FF4444"),
		Dim:        lipgloss.Color("#666666"),
		Info:       lipgloss.Color("#4488FF"),
		LowGL:      lipgloss.Color("#2E7D32"),
		ModerateGL: lipgloss.Color("#F57C00"),
		HighGL:     lipgloss.Color("#C62828"),
	}

	// NoColorTUITheme renders everything in the terminal's default colours.
	NoColorTUITheme = TUITheme{
		Text:       lipgloss.NoColor{},
		Border:     lipgloss.NoColor{},
		Accent:     lipgloss.NoColor{},
		Success:    lipgloss.NoColor{},
		Warning:    lipgloss.NoColor{},
		Error:      lipgloss.NoColor{},
		Dim:        lipgloss.NoColor{},
		Info:       lipgloss.NoColor{},
		LowGL:      lipgloss.NoColor{},
		ModerateGL: lipgloss.NoColor{},
		HighGL:     lipgloss.NoColor{},
	}
)

// BandColor is the lipgloss counterpart of Theme.BandColor.
func (t TUITheme) BandColor(band string) lipgloss.TerminalColor {
	switch band {
	case "low":
		return t.LowGL
	case "moderate":
		return t.ModerateGL
	case "high":
		return t.HighGL
	default:
		return t.Text
	}
}

// GetCurrentTUITheme returns the TUI theme matching the active theme.
func GetCurrentTUITheme() TUITheme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()

	if currentTheme.Name == NoColorTheme.Name {
		return NoColorTUITheme
	}
	return DarkTUITheme
}

// GetCurrentTheme returns the currently active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme replaces the active theme. Tests use it to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// SetTheme changes the active theme by name ("dark", "light", "none").
// Unknown names select the dark theme.
func SetTheme(name string) {
	themeMutex.Lock()
	defer themeMutex.Unlock()

	switch name {
	case "light":
		currentTheme = LightTheme
	case "none":
		currentTheme = NoColorTheme
	default:
		currentTheme = DarkTheme
	}
}

// InitTheme selects the theme from the -no-color flag and the NO_COLOR
// environment variable (https://no-color.org/). Any value of NO_COLOR,
// including the empty string, disables colour.
//
// Parameters:
//   - noColor: If true, disables colour regardless of the environment.
func InitTheme(noColor bool) {
	themeMutex.Lock()
	defer themeMutex.Unlock()

	if noColor {
		currentTheme = NoColorTheme
		return
	}
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		currentTheme = NoColorTheme
		return
	}
	currentTheme = DarkTheme
}
