// Package cache memoizes reads from the HN API behind freshness windows.
//
// One Cache is created per process and shared by every session. It holds two
// regions: the top-story list (a single entry) and items keyed by id. A read
// inside the freshness window never touches the network. Once an entry has
// expired the next read refreshes it; if that refresh fails the previous
// value is served as stale, and only a key that was never fetched falls back
// to an empty list or the unavailable placeholder. Reads never return errors.
//
// The mutex guards lookups and the compare/update of stored entries only.
// Network round trips run outside it, and concurrent misses for the same key
// share one fetch through a singleflight group. The shared fetch is detached
// from the caller's cancellation; a caller whose context ends stops waiting
// and falls back alone while the fetch completes for everyone else.
package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/atomicstack/hn-over-ssh/internal/content"
	"github.com/atomicstack/hn-over-ssh/internal/hn"
	"github.com/atomicstack/hn-over-ssh/internal/logging/events"
)

const (
	DefaultTopTTL   = 600 * time.Second
	DefaultItemTTL  = 900 * time.Second
	DefaultTopLimit = 200

	regionTop   = "top_list"
	regionItems = "items"
)

// Source performs the remote reads the cache memoizes. *hn.Client satisfies it.
type Source interface {
	TopStories(ctx context.Context, limit int) ([]int, error)
	Item(ctx context.Context, id int) (hn.Item, error)
}

type entry[T any] struct {
	value     T
	fetchedAt time.Time
}

// Stats counts cache outcomes since construction.
type Stats struct {
	Hits        int
	Refreshes   int
	Stale       int
	Unavailable int
	Items       int
}

// Cache is safe for concurrent use.
type Cache struct {
	src      Source
	now      func() time.Time
	topTTL   time.Duration
	itemTTL  time.Duration
	topLimit int

	mu    sync.Mutex
	top   *entry[[]int]
	items map[int]entry[content.Item]
	stats Stats

	group singleflight.Group
}

// Option customises a Cache.
type Option func(*Cache)

// WithTTL overrides the freshness windows. Non-positive values keep the default.
func WithTTL(top, item time.Duration) Option {
	return func(c *Cache) {
		if top > 0 {
			c.topTTL = top
		}
		if item > 0 {
			c.itemTTL = item
		}
	}
}

// WithTopLimit caps how many ids the top list keeps.
func WithTopLimit(limit int) Option {
	return func(c *Cache) {
		if limit > 0 {
			c.topLimit = limit
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// New returns an empty cache reading through src.
func New(src Source, opts ...Option) *Cache {
	c := &Cache{
		src:      src,
		now:      time.Now,
		topTTL:   DefaultTopTTL,
		itemTTL:  DefaultItemTTL,
		topLimit: DefaultTopLimit,
		items:    make(map[int]entry[content.Item]),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TopList returns the ranked story ids.
func (c *Cache) TopList(ctx context.Context) content.ListResult {
	return c.TopListAhead(ctx, 0)
}

// TopListAhead is TopList, except that an entry expiring within ahead is
// refreshed now. A failed early refresh still serves the entry as fresh.
func (c *Cache) TopListAhead(ctx context.Context, ahead time.Duration) content.ListResult {
	c.mu.Lock()
	prev := c.top
	if prev != nil && c.now().Sub(prev.fetchedAt) < c.topTTL-ahead {
		c.stats.Hits++
		ids := cloneIDs(prev.value)
		c.mu.Unlock()
		return content.ListResult{IDs: ids, Status: content.StatusFresh}
	}
	c.mu.Unlock()

	v, err := c.shared(ctx, regionTop, func(ctx context.Context) (interface{}, error) {
		ids, err := c.src.TopStories(ctx, c.topLimit)
		if err != nil {
			return nil, err
		}
		if len(ids) > c.topLimit {
			ids = ids[:c.topLimit]
		}
		c.mu.Lock()
		c.top = &entry[[]int]{value: cloneIDs(ids), fetchedAt: c.now()}
		c.stats.Refreshes++
		c.mu.Unlock()
		events.Cache.Refresh(regionTop, 0, len(ids))
		return ids, nil
	})
	if err == nil {
		return content.ListResult{IDs: cloneIDs(v.([]int)), Status: content.StatusFresh}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another session may have refreshed the entry while this fetch failed.
	if c.top != nil {
		status := content.StatusStale
		if c.now().Sub(c.top.fetchedAt) < c.topTTL {
			status = content.StatusFresh
		} else {
			c.stats.Stale++
			events.Cache.Stale(regionTop, 0, err)
		}
		return content.ListResult{IDs: cloneIDs(c.top.value), Status: status}
	}
	c.stats.Unavailable++
	events.Cache.Unavailable(regionTop, 0, err)
	return content.ListResult{IDs: []int{}, Status: content.StatusUnavailable}
}

// Item returns the item with the given id.
func (c *Cache) Item(ctx context.Context, id int) content.ItemResult {
	return c.ItemAhead(ctx, id, 0)
}

// ItemAhead is Item with the early refresh of TopListAhead.
func (c *Cache) ItemAhead(ctx context.Context, id int, ahead time.Duration) content.ItemResult {
	c.mu.Lock()
	prev, ok := c.items[id]
	if ok && c.now().Sub(prev.fetchedAt) < c.itemTTL-ahead {
		c.stats.Hits++
		c.mu.Unlock()
		return content.ItemResult{Item: prev.value, Status: content.StatusFresh}
	}
	c.mu.Unlock()

	v, err := c.shared(ctx, regionItems+":"+strconv.Itoa(id), func(ctx context.Context) (interface{}, error) {
		raw, err := c.src.Item(ctx, id)
		if err != nil {
			return nil, err
		}
		item := fromWire(id, raw)
		c.mu.Lock()
		c.items[id] = entry[content.Item]{value: item, fetchedAt: c.now()}
		c.stats.Refreshes++
		c.mu.Unlock()
		events.Cache.Refresh(regionItems, id, 1)
		return item, nil
	})
	if err == nil {
		return content.ItemResult{Item: v.(content.Item), Status: content.StatusFresh}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.items[id]; ok {
		status := content.StatusStale
		if c.now().Sub(cur.fetchedAt) < c.itemTTL {
			status = content.StatusFresh
		} else {
			c.stats.Stale++
			events.Cache.Stale(regionItems, id, err)
		}
		return content.ItemResult{Item: cur.value, Status: status}
	}
	c.stats.Unavailable++
	events.Cache.Unavailable(regionItems, id, err)
	return content.ItemResult{Item: content.Unavailable(id), Status: content.StatusUnavailable}
}

// shared runs fetch once per key across concurrent callers. The fetch gets a
// context that keeps ctx's values but not its cancellation, so it is bounded
// by the HTTP client timeout rather than by whichever session started it.
func (c *Cache) shared(ctx context.Context, key string, fetch func(context.Context) (interface{}, error)) (interface{}, error) {
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		return fetch(detached)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Items = len(c.items)
	return s
}

func cloneIDs(ids []int) []int {
	dup := make([]int, len(ids))
	copy(dup, ids)
	return dup
}
