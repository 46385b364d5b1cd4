package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/hn-over-ssh/internal/backend"
)

func waitForWarmerEvent(events <-chan backend.Event) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-events
		if !ok {
			return warmerDoneMsg{}
		}
		return warmerEventMsg{event: evt}
	}
}

type warmerEventMsg struct {
	event backend.Event
}

type warmerDoneMsg struct{}

func (m *Model) handleWarmerEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(warmerEventMsg)
	if !ok {
		return nil
	}
	m.lastWarm = eventMsg.event
	cmds := []tea.Cmd{m.reload()}
	if m.warmerEvents != nil {
		cmds = append(cmds, waitForWarmerEvent(m.warmerEvents))
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleWarmerDoneMsg(msg tea.Msg) tea.Cmd {
	m.warmerEvents = nil
	return nil
}
