package server

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gliderlabs/ssh"

	"github.com/atomicstack/hn-over-ssh/internal/convert"
	"github.com/atomicstack/hn-over-ssh/internal/logging"
	"github.com/atomicstack/hn-over-ssh/internal/logging/events"
	"github.com/atomicstack/hn-over-ssh/internal/nav"
	"github.com/atomicstack/hn-over-ssh/internal/render"
	"github.com/atomicstack/hn-over-ssh/internal/session"
)

const noPtyMessage = "This service needs an interactive terminal. Try: ssh -t\r\n"

// Handler serves one SSH session and reports why it ended.
type Handler func(s ssh.Session) (events.SessionReason, error)

func (h Handler) sshHandler(mode string) ssh.Handler {
	return func(s ssh.Session) {
		remote := s.RemoteAddr().String()
		pty, _, _ := s.Pty()
		events.Session.Start(remote, s.User(), pty.Term, pty.Window.Width, pty.Window.Height)
		start := time.Now()
		reason, err := h(s)
		if err != nil {
			logging.Error(err, "remote", remote, "mode", mode)
		}
		events.Session.End(remote, reason, time.Since(start))
	}
}

// Browse serves the story browser. Sessions without a PTY are refused.
func Browse(src nav.Source, r *render.Renderer) Handler {
	return func(s ssh.Session) (events.SessionReason, error) {
		pty, winCh, ok := s.Pty()
		if !ok {
			_, _ = io.WriteString(s, noPtyMessage)
			_ = s.Exit(1)
			return events.SessionReasonNoPty, nil
		}
		ctx := s.Context()
		t := newPtyTransport(s, pty.Window)
		go t.follow(ctx, winCh)

		err := session.Run(ctx, t, session.Deps{Source: src, Renderer: r, Remote: s.RemoteAddr().String()})
		switch {
		case err != nil:
			return events.SessionReasonError, err
		case ctx.Err() != nil:
			return events.SessionReasonDisconnect, nil
		default:
			return events.SessionReasonQuit, nil
		}
	}
}

// Convert serves the currency converter prompt.
func Convert(rates []convert.Rate) Handler {
	return func(s ssh.Session) (events.SessionReason, error) {
		ctx := s.Context()
		err := convert.Serve(ctx, s, rates)
		exitCode := 0
		if err != nil {
			exitCode = 1
		}
		_ = s.Exit(exitCode)
		switch {
		case err != nil:
			return events.SessionReasonError, err
		case ctx.Err() != nil:
			return events.SessionReasonDisconnect, nil
		default:
			return events.SessionReasonQuit, nil
		}
	}
}

// ptyTransport adapts an SSH session with a PTY to session.Transport.
type ptyTransport struct {
	ssh.Session
	size      atomic.Pointer[nav.Size]
	closeOnce sync.Once
	closeErr  error
}

func newPtyTransport(s ssh.Session, win ssh.Window) *ptyTransport {
	t := &ptyTransport{Session: s}
	t.resize(win)
	return t
}

func (t *ptyTransport) Size() nav.Size {
	return *t.size.Load()
}

// Close reports a zero exit status and closes the channel once.
func (t *ptyTransport) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.Session.Exit(0)
	})
	return t.closeErr
}

func (t *ptyTransport) resize(win ssh.Window) {
	t.size.Store(&nav.Size{Rows: win.Height, Cols: win.Width})
}

func (t *ptyTransport) follow(ctx context.Context, winCh <-chan ssh.Window) {
	for {
		select {
		case <-ctx.Done():
			return
		case win, ok := <-winCh:
			if !ok {
				return
			}
			t.resize(win)
			events.Session.Resize(t.RemoteAddr().String(), win.Width, win.Height)
		}
	}
}
