package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the bindings that work on every screen.
type KeyMap struct {
	ToggleVoice key.Binding
	StopSpeech  key.Binding
	Repeat      key.Binding
	Quit        key.Binding
	ForceQuit   key.Binding
}

// DefaultKeyMap returns the global key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		ToggleVoice: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "voice on/off"),
		),
		StopSpeech: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "stop speaking"),
		),
		Repeat: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "repeat"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "force quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ToggleVoice, k.StopSpeech, k.Repeat, k.Quit}
}

// FullHelp returns all global bindings.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ToggleVoice, k.StopSpeech, k.Repeat},
		{k.Quit, k.ForceQuit},
	}
}
