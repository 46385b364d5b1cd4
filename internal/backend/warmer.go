// Package backend keeps the shared content cache warm in the background.
package backend

import (
	"context"
	"sync"
	"time"

	"github.com/atomicstack/hn-over-ssh/internal/content"
	"github.com/atomicstack/hn-over-ssh/internal/logging/events"
)

// DefaultPace is the minimum gap between item fetches in one cycle.
const DefaultPace = 50 * time.Millisecond

// Source is the cache the warmer reads through. *cache.Cache satisfies it.
// Entries that expire within ahead are refreshed by the read.
type Source interface {
	TopListAhead(ctx context.Context, ahead time.Duration) content.ListResult
	ItemAhead(ctx context.Context, id int, ahead time.Duration) content.ItemResult
}

// Event reports one completed warm cycle.
type Event struct {
	Stories int
	Items   int
	Status  content.Status
	Elapsed time.Duration
}

// Options configure a Warmer.
type Options struct {
	// Interval between cycles. The first cycle runs immediately.
	Interval time.Duration
	// Count is how many leading stories are loaded each cycle.
	Count int
	// Pace is the minimum gap between item fetches; zero uses DefaultPace.
	Pace time.Duration
}

// Warmer periodically reads the top list and its leading items through the
// cache. Each cycle refreshes every entry that would expire before the next
// cycle, so sessions keep finding them fresh.
type Warmer struct {
	src  Source
	opts Options

	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	wg     sync.WaitGroup
}

// NewWarmer starts a warmer that runs until ctx is done or Stop is called.
func NewWarmer(ctx context.Context, src Source, opts Options) *Warmer {
	if opts.Pace <= 0 {
		opts.Pace = DefaultPace
	}
	ctx, cancel := context.WithCancel(ctx)
	w := &Warmer{
		src:    src,
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
		events: make(chan Event, 16),
	}

	w.wg.Add(1)
	go w.poll()

	go func() {
		w.wg.Wait()
		close(w.events)
	}()

	return w
}

// Events returns a channel of completed cycles. Events are dropped when no
// one is reading.
func (w *Warmer) Events() <-chan Event {
	return w.events
}

// Stop cancels the warmer. The current cycle stops at its next fetch.
func (w *Warmer) Stop() {
	w.cancel()
}

// Wait blocks until the poll goroutine has exited and the events channel is
// closed.
func (w *Warmer) Wait() {
	w.wg.Wait()
}

func (w *Warmer) poll() {
	defer w.wg.Done()

	throttle := newThrottle(w.opts.Pace)
	if !w.emit(w.cycle(throttle)) {
		return
	}
	if w.opts.Interval <= 0 {
		return
	}

	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			if !w.emit(w.cycle(throttle)) {
				return
			}
		}
	}
}

func (w *Warmer) cycle(throttle *throttle) Event {
	start := time.Now()
	ahead := w.ahead()
	list := w.src.TopListAhead(w.ctx, ahead)
	evt := Event{Stories: len(list.IDs), Status: list.Status}
	ids := list.IDs
	if w.opts.Count >= 0 && len(ids) > w.opts.Count {
		ids = ids[:w.opts.Count]
	}
	for _, id := range ids {
		if !throttle.wait(w.ctx) {
			break
		}
		w.src.ItemAhead(w.ctx, id, ahead)
		evt.Items++
	}
	evt.Elapsed = time.Since(start)
	events.Warmer.Cycle(evt.Stories, evt.Items, evt.Elapsed)
	return evt
}

// ahead is one interval plus a tenth for tick jitter and cycle time. A
// single-shot warmer reads through the normal freshness window.
func (w *Warmer) ahead() time.Duration {
	if w.opts.Interval <= 0 {
		return 0
	}
	return w.opts.Interval + w.opts.Interval/10
}

func (w *Warmer) emit(evt Event) bool {
	if w.ctx.Err() != nil {
		return false
	}
	select {
	case w.events <- evt:
	default:
	}
	return true
}
