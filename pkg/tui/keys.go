package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Prev       key.Binding
	Next       key.Binding
	Play       key.Binding
	Mode       key.Binding
	Hands      key.Binding
	Fingering  key.Binding
	Audio      key.Binding
	Faster     key.Binding
	Slower     key.Binding
	OctaveDown key.Binding
	OctaveUp   key.Binding
	Reset      key.Binding
	Open       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Play, k.Mode, k.Hands, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.Reset, k.Play},
		{k.Mode, k.Hands, k.Fingering, k.Audio},
		{k.Faster, k.Slower, k.OctaveDown, k.OctaveUp},
		{k.Open, k.Help, k.Quit},
	}
}

// The home and top letter rows are reserved for the virtual keyboard
var keys = keyMap{
	Prev: key.NewBinding(
		key.WithKeys("left"),
		key.WithHelp("←", "prev step"),
	),
	Next: key.NewBinding(
		key.WithKeys("right"),
		key.WithHelp("→", "next step"),
	),
	Play: key.NewBinding(
		key.WithKeys(" ", "space"),
		key.WithHelp("space", "play/pause"),
	),
	Mode: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "practice/watch"),
	),
	Hands: key.NewBinding(
		key.WithKeys("b"),
		key.WithHelp("b", "cycle hands"),
	),
	Fingering: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "finger numbers"),
	),
	Audio: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "audio"),
	),
	Faster: key.NewBinding(
		key.WithKeys("=", "+"),
		key.WithHelp("+", "faster"),
	),
	Slower: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "slower"),
	),
	OctaveDown: key.NewBinding(
		key.WithKeys("z"),
		key.WithHelp("z", "octave down"),
	),
	OctaveUp: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "octave up"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "restart"),
	),
	Open: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "open file"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "more keys"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
