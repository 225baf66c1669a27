package robogrid

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Run     key.Binding
	Stop    key.Binding
	Resume  key.Binding
	Restart key.Binding
	Reset   key.Binding
	Rerun   key.Binding
	Focus   key.Binding
	Dismiss key.Binding
	Quit    key.Binding

	// active only while the editor is unfocused
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Rotate key.Binding
	Color  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Run:     key.NewBinding(key.WithKeys("f5"), key.WithHelp("F5", "Start")),
		Stop:    key.NewBinding(key.WithKeys("f6"), key.WithHelp("F6", "Stopp")),
		Resume:  key.NewBinding(key.WithKeys("f7"), key.WithHelp("F7", "Weiter")),
		Restart: key.NewBinding(key.WithKeys("f8"), key.WithHelp("F8", "Neustart")),
		Reset:   key.NewBinding(key.WithKeys("f9"), key.WithHelp("F9", "Zurücksetzen")),
		Rerun:   key.NewBinding(key.WithKeys("f10"), key.WithHelp("F10", "Wiederholen")),
		Focus:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "Editor")),
		Dismiss: key.NewBinding(key.WithKeys("enter", "esc"), key.WithHelp("Enter", "Schließen")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("Ctrl+C", "Beenden")),

		Up:     key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		Down:   key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
		Left:   key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "left")),
		Right:  key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "right")),
		Rotate: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rotate")),
		Color:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "color")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Run, k.Stop, k.Resume, k.Restart, k.Reset, k.Rerun, k.Focus, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		k.ShortHelp(),
		{k.Up, k.Down, k.Left, k.Right, k.Rotate, k.Color},
	}
}
