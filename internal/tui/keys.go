package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the player's keyboard surface.
type keyMap struct {
	PlayPause   key.Binding
	SkipBack    key.Binding
	SkipForward key.Binding
	SpeedUp     key.Binding
	SpeedDown   key.Binding
	NextMarker  key.Binding
	PrevMarker  key.Binding
	FirstMarker key.Binding
	OpenMarker  key.Binding
	ClearMarker key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		PlayPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "play/pause"),
		),
		SkipBack: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "skip back"),
		),
		SkipForward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "skip forward"),
		),
		SpeedUp: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "faster"),
		),
		SpeedDown: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "slower"),
		),
		NextMarker: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next marker"),
		),
		PrevMarker: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("s-tab", "prev marker"),
		),
		FirstMarker: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "first marker"),
		),
		OpenMarker: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "jump to marker"),
		),
		ClearMarker: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear selection"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PlayPause, k.SkipBack, k.SkipForward, k.NextMarker, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PlayPause, k.SkipBack, k.SkipForward, k.SpeedUp, k.SpeedDown},
		{k.NextMarker, k.PrevMarker, k.FirstMarker, k.OpenMarker, k.ClearMarker},
		{k.Help, k.Quit},
	}
}
