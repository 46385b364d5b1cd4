package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/hn-over-ssh/internal/nav"
)

type keyMap struct {
	Quit  key.Binding
	Top   key.Binding
	Back  key.Binding
	About key.Binding
	Faq   key.Binding
	Up    key.Binding
	Down  key.Binding
	Open  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:  key.NewBinding(key.WithKeys("q", "Q", "ctrl+c", "ctrl+d"), key.WithHelp("q", "quit")),
		Top:   key.NewBinding(key.WithKeys("t", "T"), key.WithHelp("t", "top")),
		Back:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		About: key.NewBinding(key.WithKeys("a", "A"), key.WithHelp("a", "about")),
		Faq:   key.NewBinding(key.WithKeys("f", "F"), key.WithHelp("f", "faq")),
		Up:    key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		Down:  key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
		Open:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	}
}

// translate maps a key press to a navigator key.
func (k keyMap) translate(msg tea.KeyMsg) nav.Key {
	switch {
	case key.Matches(msg, k.Quit):
		return nav.KeyQuit
	case key.Matches(msg, k.Top):
		return nav.KeyTop
	case key.Matches(msg, k.Back):
		return nav.KeyEscape
	case key.Matches(msg, k.About):
		return nav.KeyAbout
	case key.Matches(msg, k.Faq):
		return nav.KeyFaq
	case key.Matches(msg, k.Up):
		return nav.KeyUp
	case key.Matches(msg, k.Down):
		return nav.KeyDown
	case key.Matches(msg, k.Open):
		return nav.KeyEnter
	default:
		return nav.KeyNone
	}
}
