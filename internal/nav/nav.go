// Package nav is the per-session navigation state machine.
//
// A Navigator owns the active view, the cursor into the top-story list and
// the item opened in the detail view. Apply consumes one key and performs the
// transition; Frame queries a Source for the content the active view needs
// and returns a view model for the renderer. Navigators are never shared
// between sessions.
package nav

import (
	"context"

	"github.com/atomicstack/hn-over-ssh/internal/content"
	"github.com/atomicstack/hn-over-ssh/internal/logging/events"
)

// View is one of the mutually exclusive screens.
type View int

const (
	TopList View = iota
	About
	Faq
	Detail
)

func (v View) String() string {
	switch v {
	case TopList:
		return "top"
	case About:
		return "about"
	case Faq:
		return "faq"
	case Detail:
		return "detail"
	default:
		return "unknown"
	}
}

// Key is a decoded logical input.
type Key int

const (
	KeyNone Key = iota
	KeyQuit
	KeyTop
	KeyEscape
	KeyAbout
	KeyFaq
	KeyUp
	KeyDown
	KeyEnter
)

func (k Key) String() string {
	switch k {
	case KeyQuit:
		return "q"
	case KeyTop:
		return "t"
	case KeyEscape:
		return "esc"
	case KeyAbout:
		return "a"
	case KeyFaq:
		return "f"
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyEnter:
		return "enter"
	default:
		return "none"
	}
}

// Source is the content lookup the navigator needs. *cache.Cache satisfies it.
type Source interface {
	TopList(ctx context.Context) content.ListResult
	Item(ctx context.Context, id int) content.ItemResult
}

// Navigator holds one session's navigation state.
type Navigator struct {
	view     View
	cursor   int
	detailID int
	// listLen is the list length seen by the last TopList frame; Down clamps
	// against it.
	listLen int
	ids     []int
}

// New returns a navigator on the top-story list.
func New() *Navigator {
	return &Navigator{view: TopList}
}

// Clone returns an independent copy of n, so a frame can be built off the
// caller's goroutine.
func (n *Navigator) Clone() *Navigator {
	c := *n
	return &c
}

// View returns the active view.
func (n *Navigator) View() View { return n.view }

// Cursor returns the cursor index into the top-story list.
func (n *Navigator) Cursor() int { return n.cursor }

// DetailID returns the id of the item opened with Enter.
func (n *Navigator) DetailID() int { return n.detailID }

// SetList records the list the cursor refers to and clamps the cursor to it.
func (n *Navigator) SetList(ids []int) {
	n.ids = ids
	n.listLen = len(ids)
	n.cursor = ClampCursor(n.cursor, n.listLen)
}

// Apply performs the transition for k and reports whether the session should
// end.
func (n *Navigator) Apply(k Key) (quit bool) {
	from := n.view
	switch k {
	case KeyQuit:
		return true
	case KeyTop, KeyEscape:
		n.view = TopList
	case KeyAbout:
		n.view = About
	case KeyFaq:
		n.view = Faq
	case KeyUp:
		if n.view == TopList {
			n.moveCursorBy(-1)
		}
	case KeyDown:
		if n.view == TopList {
			n.moveCursorBy(1)
		}
	case KeyEnter:
		if n.view == TopList && n.listLen > 0 && n.cursor < len(n.ids) {
			n.detailID = n.ids[n.cursor]
			n.view = Detail
			events.Nav.Open(n.detailID)
		}
	}
	if from != n.view {
		events.Nav.Transition(from.String(), n.view.String(), k.String())
	}
	return false
}
