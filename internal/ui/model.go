package ui

import (
	"context"
	"reflect"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/hn-over-ssh/internal/backend"
	"github.com/atomicstack/hn-over-ssh/internal/nav"
	"github.com/atomicstack/hn-over-ssh/internal/render"
	"github.com/atomicstack/hn-over-ssh/internal/theme"
)

const (
	loadingLabel    = "Loading top stories..."
	refreshingLabel = "refreshing"
)

type msgHandler func(tea.Msg) tea.Cmd

// Options configure a Model.
type Options struct {
	// Renderer formats frames. Nil uses a plain renderer without clearing.
	Renderer *render.Renderer
	// Styles colours the spinner. Nil leaves it unstyled.
	Styles *theme.Styles
	// WarmerEvents triggers a reload after each warm cycle when set.
	WarmerEvents <-chan backend.Event
}

// Model implements the Bubble Tea model for the local browser.
type Model struct {
	ctx      context.Context
	src      nav.Source
	nav      *nav.Navigator
	renderer *render.Renderer
	keys     keyMap
	spinner  spinner.Model

	size      nav.Size
	frame     nav.Frame
	haveFrame bool
	loading   bool
	seq       int
	quitting  bool

	warmerEvents <-chan backend.Event
	lastWarm     backend.Event

	handlers map[reflect.Type]msgHandler
}

// NewModel returns a model on the top-story list reading from src.
func NewModel(ctx context.Context, src nav.Source, opts Options) *Model {
	r := opts.Renderer
	if r == nil {
		r = render.New(render.WithoutClear())
	}
	sp := spinner.New(spinner.WithSpinner(spinner.Line))
	if opts.Styles != nil && opts.Styles.Info != nil {
		sp.Style = *opts.Styles.Info
	}
	m := &Model{
		ctx:          ctx,
		src:          src,
		nav:          nav.New(),
		renderer:     r,
		keys:         defaultKeyMap(),
		spinner:      sp,
		warmerEvents: opts.WarmerEvents,
	}
	m.registerHandlers()
	return m
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.reload()}
	if m.warmerEvents != nil {
		cmds = append(cmds, waitForWarmerEvent(m.warmerEvents))
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if handler := m.handlerFor(msg); handler != nil {
		return m, handler(msg)
	}
	return m, nil
}

// View renders the latest frame.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.haveFrame {
		return m.spinner.View() + " " + loadingLabel
	}
	out := strings.ReplaceAll(m.renderer.RenderString(m.frame), "\r\n", "\n")
	out = strings.TrimSuffix(out, "\n")
	if m.loading {
		out += "\n" + m.spinner.View() + " " + refreshingLabel
	}
	return out
}

// Navigator exposes the navigation state.
func (m *Model) Navigator() *nav.Navigator {
	return m.nav
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(frameLoadedMsg{}):    m.handleFrameLoadedMsg,
		reflect.TypeOf(spinner.TickMsg{}):   m.handleSpinnerTickMsg,
		reflect.TypeOf(warmerEventMsg{}):    m.handleWarmerEventMsg,
		reflect.TypeOf(warmerDoneMsg{}):     m.handleWarmerDoneMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	k := m.keys.translate(keyMsg)
	if k == nav.KeyNone {
		return nil
	}
	if m.nav.Apply(k) {
		m.quitting = true
		return tea.Quit
	}
	return m.reload()
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	sizeMsg, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	m.size = nav.Size{Rows: sizeMsg.Height, Cols: sizeMsg.Width}
	return m.reload()
}

func (m *Model) handleSpinnerTickMsg(msg tea.Msg) tea.Cmd {
	if !m.loading {
		return nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return cmd
}
