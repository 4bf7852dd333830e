package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the bindings shared across screens. Crafting-phase bindings
// avoid printable keys so they never collide with typing.
type keyMap struct {
	Quit       key.Binding
	ForceQuit  key.Binding
	Back       key.Binding
	Battle     key.Binding
	History    key.Binding
	Continue   key.Binding
	Submit     key.Binding
	Finish     key.Binding
	Hint       key.Binding
	TimeExtend key.Binding
	PeerReview key.Binding
	DoubleShot key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Battle: key.NewBinding(
			key.WithKeys("b", "enter"),
			key.WithHelp("b", "battle"),
		),
		History: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "history"),
		),
		Continue: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "continue"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "submit"),
		),
		Finish: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("ctrl+f", "finish"),
		),
		Hint: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "hint"),
		),
		TimeExtend: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("f2", "+60s"),
		),
		PeerReview: key.NewBinding(
			key.WithKeys("f3"),
			key.WithHelp("f3", "peer review"),
		),
		DoubleShot: key.NewBinding(
			key.WithKeys("f4"),
			key.WithHelp("f4", "double submit"),
		),
	}
}
