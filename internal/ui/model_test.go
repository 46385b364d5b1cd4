package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/hn-over-ssh/internal/backend"
	"github.com/atomicstack/hn-over-ssh/internal/content"
	"github.com/atomicstack/hn-over-ssh/internal/nav"
)

type fakeSource struct {
	mu    sync.Mutex
	ids   []int
	lists int
}

func (s *fakeSource) TopList(ctx context.Context) content.ListResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	return content.ListResult{IDs: append([]int{}, s.ids...)}
}

func (s *fakeSource) Item(ctx context.Context, id int) content.ItemResult {
	return content.ItemResult{Item: content.Item{
		ID:        id,
		Title:     fmt.Sprintf("story-%d", id),
		URL:       "#",
		Author:    "pg",
		Text:      fmt.Sprintf("body of %d", id),
		Available: true,
	}}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newHarness(t *testing.T, src *fakeSource, opts Options) *Harness {
	t.Helper()
	h := NewHarness(NewModel(context.Background(), src, opts))
	h.Send(tea.WindowSizeMsg{Width: 80, Height: 24})
	return h
}

func TestViewBeforeFirstFrame(t *testing.T) {
	m := NewModel(context.Background(), &fakeSource{}, Options{})
	if view := m.View(); !strings.Contains(view, loadingLabel) {
		t.Fatalf("expected loading label, got %q", view)
	}
}

func TestInitialFrameShowsList(t *testing.T) {
	h := newHarness(t, &fakeSource{ids: []int{1, 2, 3}}, Options{})
	view := h.View()
	if !strings.Contains(view, "*1. story-1 (#)") {
		t.Fatalf("expected first story selected, got:\n%s", view)
	}
	if strings.Contains(view, "\r") || strings.Contains(view, "\x1b[2J") {
		t.Fatalf("expected bare newlines without clear sequence, got %q", view)
	}
	if h.Model().loading {
		t.Fatalf("expected loading to finish")
	}
}

func TestKeysDriveNavigator(t *testing.T) {
	h := newHarness(t, &fakeSource{ids: []int{1, 2, 3}}, Options{})

	h.Send(tea.KeyMsg{Type: tea.KeyDown})
	h.Send(tea.KeyMsg{Type: tea.KeyDown})
	if got := h.Model().Navigator().Cursor(); got != 2 {
		t.Fatalf("expected cursor 2, got %d", got)
	}
	h.Send(tea.KeyMsg{Type: tea.KeyDown})
	if got := h.Model().Navigator().Cursor(); got != 2 {
		t.Fatalf("expected cursor to stay on the last story, got %d", got)
	}

	h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	if h.Model().Navigator().View() != nav.Detail || h.Model().Navigator().DetailID() != 3 {
		t.Fatalf("expected detail of story 3")
	}
	if view := h.View(); !strings.Contains(view, "body of 3") {
		t.Fatalf("expected story text in detail view, got:\n%s", view)
	}

	h.Send(tea.KeyMsg{Type: tea.KeyEsc})
	if h.Model().Navigator().View() != nav.TopList {
		t.Fatalf("expected escape to return to the list")
	}
	h.Send(runes("A"))
	if h.Model().Navigator().View() != nav.About {
		t.Fatalf("expected about view")
	}
	h.Send(runes("f"))
	if h.Model().Navigator().View() != nav.Faq {
		t.Fatalf("expected faq view")
	}
	h.Send(runes("t"))
	if h.Model().Navigator().View() != nav.TopList {
		t.Fatalf("expected top view")
	}
	if got := h.Model().Navigator().Cursor(); got != 2 {
		t.Fatalf("expected cursor to survive view changes, got %d", got)
	}
}

func TestUnboundKeysIgnored(t *testing.T) {
	src := &fakeSource{ids: []int{1}}
	h := newHarness(t, src, Options{})
	before := src.lists
	h.Send(runes("x"))
	if src.lists != before {
		t.Fatalf("expected no reload for unbound key")
	}
	if h.Quit() {
		t.Fatalf("unbound key should not quit")
	}
}

func TestQuitKeys(t *testing.T) {
	for _, msg := range []tea.KeyMsg{runes("q"), runes("Q"), {Type: tea.KeyCtrlC}, {Type: tea.KeyCtrlD}} {
		h := newHarness(t, &fakeSource{ids: []int{1}}, Options{})
		h.Send(msg)
		if !h.Quit() {
			t.Fatalf("expected %q to quit", msg.String())
		}
		if h.View() != "" {
			t.Fatalf("expected empty view after quit")
		}
	}
}

func TestStaleFrameDropped(t *testing.T) {
	h := newHarness(t, &fakeSource{ids: []int{1, 2}}, Options{})
	m := h.Model()
	stale := frameLoadedMsg{seq: m.seq - 1, nav: nav.New(), frame: nav.Frame{View: nav.About}}
	h.Send(stale)
	if m.frame.View != nav.TopList {
		t.Fatalf("expected stale frame to be ignored")
	}
}

func TestWarmerEventReloads(t *testing.T) {
	src := &fakeSource{ids: []int{1}}
	events := make(chan backend.Event, 1)
	events <- backend.Event{Stories: 1, Items: 1}
	close(events)

	h := NewHarness(NewModel(context.Background(), src, Options{WarmerEvents: events}))
	h.Init()
	m := h.Model()
	if m.lastWarm.Stories != 1 {
		t.Fatalf("expected warmer event to be recorded, got %+v", m.lastWarm)
	}
	if m.warmerEvents != nil {
		t.Fatalf("expected closed warmer channel to detach")
	}
	if src.lists < 2 {
		t.Fatalf("expected initial load plus a reload, got %d list reads", src.lists)
	}
}
