package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap lists the browser bindings. Printable keys go to the filter
// input, so every binding here is a control or navigation key.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Scroll   key.Binding // half page of messages
	ScrollUp key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	HitOnly  key.Binding
	Clear    key.Binding
	Copy     key.Binding
	Quit     key.Binding
}

// ShortHelp feeds the status line.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.ScrollUp, k.Scroll, k.HitOnly, k.Clear, k.Copy, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.ScrollUp, k.Scroll, k.PageUp, k.PageDown},
		{k.HitOnly, k.Clear, k.Copy, k.Quit},
	}
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "ctrl+k"), key.WithHelp("↑", "prev")),
	Down:     key.NewBinding(key.WithKeys("down", "ctrl+j"), key.WithHelp("↓", "next")),
	ScrollUp: key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("C-u", "msgs up")),
	Scroll:   key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("C-d", "msgs down")),
	PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
	PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
	HitOnly:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "hits only")),
	Clear:    key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("C-l", "clear")),
	Copy:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "copy id")),
	Quit:     key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
}
