package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds every binding used by the screens.
type KeyMap struct {
	Quit        key.Binding
	Back        key.Binding
	Submit      key.Binding
	ToggleSmart key.Binding
	Up          key.Binding
	Down        key.Binding
	Increase    key.Binding
	Decrease    key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "start over"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		ToggleSmart: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "toggle smart matching"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Increase: key.NewBinding(
			key.WithKeys("+", "=", "right", "l"),
			key.WithHelp("+/→", "more"),
		),
		Decrease: key.NewBinding(
			key.WithKeys("-", "left", "h"),
			key.WithHelp("-/←", "less"),
		),
	}
}

// screenHelp adapts a list of bindings to help.KeyMap.
type screenHelp []key.Binding

func (s screenHelp) ShortHelp() []key.Binding  { return s }
func (s screenHelp) FullHelp() [][]key.Binding { return [][]key.Binding{s} }
