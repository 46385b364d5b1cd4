package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/hn-over-ssh/internal/nav"
)

type frameLoadedMsg struct {
	seq   int
	nav   *nav.Navigator
	frame nav.Frame
}

// reload schedules a frame build for the current navigator state and
// supersedes any load already in flight.
func (m *Model) reload() tea.Cmd {
	m.seq++
	cmd := loadFrameCmd(m.ctx, m.src, m.nav.Clone(), m.size, m.seq)
	if m.loading {
		return cmd
	}
	m.loading = true
	return tea.Batch(cmd, m.spinner.Tick)
}

func loadFrameCmd(ctx context.Context, src nav.Source, n *nav.Navigator, size nav.Size, seq int) tea.Cmd {
	return func() tea.Msg {
		frame := n.Frame(ctx, src, size)
		return frameLoadedMsg{seq: seq, nav: n, frame: frame}
	}
}

func (m *Model) handleFrameLoadedMsg(msg tea.Msg) tea.Cmd {
	loaded, ok := msg.(frameLoadedMsg)
	if !ok || loaded.seq != m.seq {
		return nil
	}
	// The clone has the list the frame was built from applied.
	m.nav = loaded.nav
	m.frame = loaded.frame
	m.haveFrame = true
	m.loading = false
	return nil
}
