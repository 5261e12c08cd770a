package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up     key.Binding
	down   key.Binding
	enter  key.Binding
	back   key.Binding
	tab    key.Binding
	search key.Binding
	rate   key.Binding
	reload key.Binding
	logout key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		tab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next page")),
		search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		rate: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9", "0"),
			key.WithHelp("1-9,0", "rate"),
		),
		reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		logout: key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "log out")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.tab, k.rate, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.tab, k.search, k.rate},
		{k.reload, k.logout, k.quit},
	}
}

// scoreForKey maps a rating key to a score; "0" means 10.
func scoreForKey(s string) (int, bool) {
	if len(s) != 1 || s[0] < '0' || s[0] > '9' {
		return 0, false
	}
	if s == "0" {
		return 10, true
	}
	return int(s[0] - '0'), true
}
