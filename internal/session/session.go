// Package session runs the render/read/apply loop for one connected terminal.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/atomicstack/hn-over-ssh/internal/logging"
	"github.com/atomicstack/hn-over-ssh/internal/logging/events"
	"github.com/atomicstack/hn-over-ssh/internal/nav"
	"github.com/atomicstack/hn-over-ssh/internal/render"
)

const (
	// readBufferSize caps how many input bytes are decoded per iteration.
	readBufferSize = 1024
	// escapeTimeout is how long a lone ESC waits for the rest of a sequence
	// before it counts as the Escape key.
	escapeTimeout = 50 * time.Millisecond
)

// Transport is a bidirectional byte stream with a known terminal size.
type Transport interface {
	io.Reader
	io.Writer
	// Size returns the current terminal size. It may change between calls.
	Size() nav.Size
	Close() error
}

// Deps are the collaborators a session loop needs.
type Deps struct {
	Source   nav.Source
	Renderer *render.Renderer
	// Remote identifies the peer in log output.
	Remote string
}

// Run drives one session until the user quits, the input reaches EOF, ctx is
// cancelled or the transport fails. The screen is cleared and the transport
// closed on every exit path. Quit and EOF are not errors.
func Run(ctx context.Context, t Transport, deps Deps) (err error) {
	r := deps.Renderer
	if r == nil {
		r = render.New()
	}
	defer func() {
		if _, werr := t.Write(render.ClearScreen()); werr != nil && err == nil && ctx.Err() == nil {
			logging.Warn("clear screen on teardown failed", "remote", deps.Remote, "err", werr)
		}
		if cerr := t.Close(); cerr != nil && err == nil && ctx.Err() == nil {
			logging.Warn("close transport failed", "remote", deps.Remote, "err", cerr)
		}
	}()

	stop := context.AfterFunc(ctx, func() { _ = t.Close() })
	defer stop()

	done := make(chan struct{})
	defer close(done)
	reads := readChunks(t, done)

	n := nav.New()
	dec := &Decoder{}
	var flush <-chan time.Time
	draw := true
	for {
		if draw {
			frame := n.Frame(ctx, deps.Source, t.Size())
			if _, err := t.Write(r.Render(frame)); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("write frame: %w", err)
			}
		}

		var keys []nav.Key
		var rerr error
		select {
		case <-ctx.Done():
			return nil
		case <-flush:
			keys = dec.Flush()
		case c := <-reads:
			rerr = c.err
			if len(c.data) > 0 {
				keys = dec.Decode(c.data)
				events.Session.Input(deps.Remote, c.data, keyNames(keys))
			}
			if rerr != nil {
				keys = append(keys, dec.Flush()...)
			}
		}
		flush = nil
		if dec.Pending() {
			flush = time.After(escapeTimeout)
		}
		draw = len(keys) > 0 || !dec.Pending()

		for _, k := range keys {
			if n.Apply(k) {
				return nil
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read input: %w", rerr)
		}
	}
}

type chunk struct {
	data []byte
	err  error
}

// readChunks reads from r on its own goroutine so the loop can wait on a
// held escape sequence and on ctx at the same time. It stops after the first
// read error or once done is closed.
func readChunks(r io.Reader, done <-chan struct{}) <-chan chunk {
	ch := make(chan chunk)
	go func() {
		buf := make([]byte, readBufferSize)
		for {
			nr, err := r.Read(buf)
			c := chunk{data: append([]byte(nil), buf[:nr]...), err: err}
			select {
			case ch <- c:
			case <-done:
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return ch
}
