package chat

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Send     key.Binding
	Attach   key.Binding
	Settings key.Binding
	History  key.Binding
	Clear    key.Binding
	NextChip key.Binding
	Preview  key.Binding
	Remove   key.Binding
	Back     key.Binding
	Quit     key.Binding
	ScrollUp key.Binding
	ScrollDn key.Binding
	MenuUp   key.Binding
	MenuDown key.Binding
	MenuPick key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Send:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Attach:   key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "attach")),
		Settings: key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "settings")),
		History:  key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "history")),
		Clear:    key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
		NextChip: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next file")),
		Preview:  key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "preview")),
		Remove:   key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "remove file")),
		Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back/quit")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		ScrollUp: key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		ScrollDn: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
		MenuUp:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "up")),
		MenuDown: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "down")),
		MenuPick: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "select")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Attach, k.Settings, k.History, k.Clear, k.Back}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.Attach, k.NextChip, k.Preview, k.Remove},
		{k.Settings, k.History, k.Clear, k.ScrollUp, k.ScrollDn},
		{k.Back, k.Quit},
	}
}
