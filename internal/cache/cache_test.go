package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/atomicstack/hn-over-ssh/internal/content"
	"github.com/atomicstack/hn-over-ssh/internal/hn"
)

type fakeSource struct {
	mu        sync.Mutex
	top       []int
	topErr    error
	items     map[int]hn.Item
	itemErr   map[int]error
	topCalls  int
	itemCalls map[int]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		items:     map[int]hn.Item{},
		itemErr:   map[int]error{},
		itemCalls: map[int]int{},
	}
}

func (f *fakeSource) TopStories(ctx context.Context, limit int) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topCalls++
	if f.topErr != nil {
		return nil, f.topErr
	}
	return append([]int(nil), f.top...), nil
}

func (f *fakeSource) Item(ctx context.Context, id int) (hn.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.itemCalls[id]++
	if err := f.itemErr[id]; err != nil {
		return hn.Item{}, err
	}
	item, ok := f.items[id]
	if !ok {
		return hn.Item{}, hn.ErrNotFound
	}
	return item, nil
}

func (f *fakeSource) set(fn func(*fakeSource)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func newTestCache(src Source) (*Cache, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	return New(src, WithClock(clock.Now)), clock
}

func TestTopListMemoizedWithinTTL(t *testing.T) {
	src := newFakeSource()
	src.top = []int{3, 2, 1}
	c, clock := newTestCache(src)

	first := c.TopList(context.Background())
	clock.Advance(599 * time.Second)
	second := c.TopList(context.Background())

	if src.topCalls != 1 {
		t.Fatalf("expected 1 remote call, got %d", src.topCalls)
	}
	if fmt.Sprint(first.IDs) != fmt.Sprint(second.IDs) {
		t.Fatalf("expected identical values, got %v and %v", first.IDs, second.IDs)
	}
	if second.Status != content.StatusFresh {
		t.Fatalf("expected fresh status, got %s", second.Status)
	}
}

func TestTopListRefreshesAfterTTL(t *testing.T) {
	src := newFakeSource()
	src.top = []int{1}
	c, clock := newTestCache(src)

	c.TopList(context.Background())
	clock.Advance(600 * time.Second)
	src.set(func(f *fakeSource) { f.top = []int{9, 8} })
	got := c.TopList(context.Background())

	if src.topCalls != 2 {
		t.Fatalf("expected refresh after TTL, got %d calls", src.topCalls)
	}
	if len(got.IDs) != 2 || got.IDs[0] != 9 {
		t.Fatalf("expected refreshed ids, got %v", got.IDs)
	}
}

func TestTopListStaleFallback(t *testing.T) {
	src := newFakeSource()
	src.top = []int{5, 6}
	c, clock := newTestCache(src)

	c.TopList(context.Background())
	clock.Advance(11 * time.Minute)
	src.set(func(f *fakeSource) { f.topErr = errors.New("network down") })

	got := c.TopList(context.Background())
	if got.Status != content.StatusStale {
		t.Fatalf("expected stale status, got %s", got.Status)
	}
	if fmt.Sprint(got.IDs) != "[5 6]" {
		t.Fatalf("expected previous ids, got %v", got.IDs)
	}

	// The failed refresh does not reset the timestamp, so the next read
	// retries and recovers.
	src.set(func(f *fakeSource) { f.topErr = nil; f.top = []int{7} })
	got = c.TopList(context.Background())
	if got.Status != content.StatusFresh || fmt.Sprint(got.IDs) != "[7]" {
		t.Fatalf("expected recovery, got %v (%s)", got.IDs, got.Status)
	}
}

func TestTopListEmptyWhenNeverFetched(t *testing.T) {
	src := newFakeSource()
	src.topErr = errors.New("boom")
	c, _ := newTestCache(src)

	got := c.TopList(context.Background())
	if got.Status != content.StatusUnavailable {
		t.Fatalf("expected unavailable, got %s", got.Status)
	}
	if got.IDs == nil || len(got.IDs) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", got.IDs)
	}
}

func TestTopListHonoursLimit(t *testing.T) {
	src := newFakeSource()
	for i := 0; i < 250; i++ {
		src.top = append(src.top, i)
	}
	c, _ := newTestCache(src)
	if got := c.TopList(context.Background()); len(got.IDs) != DefaultTopLimit {
		t.Fatalf("expected %d ids, got %d", DefaultTopLimit, len(got.IDs))
	}

	small := New(src, WithTopLimit(10))
	if got := small.TopList(context.Background()); len(got.IDs) != 10 {
		t.Fatalf("expected 10 ids, got %d", len(got.IDs))
	}
}

func TestTopListReturnsCopy(t *testing.T) {
	src := newFakeSource()
	src.top = []int{1, 2}
	c, _ := newTestCache(src)

	got := c.TopList(context.Background())
	got.IDs[0] = 99
	again := c.TopList(context.Background())
	if again.IDs[0] != 1 {
		t.Fatalf("cache value was mutated through a returned slice")
	}
}

func TestItemMemoizedWithinTTL(t *testing.T) {
	src := newFakeSource()
	src.items[1] = hn.Item{ID: 1, Title: strPtr("one")}
	c, clock := newTestCache(src)

	first := c.Item(context.Background(), 1)
	clock.Advance(899 * time.Second)
	second := c.Item(context.Background(), 1)

	if src.itemCalls[1] != 1 {
		t.Fatalf("expected one remote call, got %d", src.itemCalls[1])
	}
	if first.Item.Title != "one" || second.Item.Title != "one" {
		t.Fatalf("unexpected titles %q / %q", first.Item.Title, second.Item.Title)
	}
}

func TestItemUnavailableThenRecovers(t *testing.T) {
	src := newFakeSource()
	src.itemErr[42] = &hn.StatusError{URL: "item/42", StatusCode: 500}
	c, _ := newTestCache(src)

	got := c.Item(context.Background(), 42)
	if got.Status != content.StatusUnavailable {
		t.Fatalf("expected unavailable, got %s", got.Status)
	}
	if got.Item.Available || got.Item.ID != 42 || got.Item.Title != content.UnavailableTitle {
		t.Fatalf("expected unavailable placeholder, got %#v", got.Item)
	}

	src.set(func(f *fakeSource) {
		delete(f.itemErr, 42)
		f.items[42] = hn.Item{ID: 42, Title: strPtr("answer"), Score: intPtr(42)}
	})
	got = c.Item(context.Background(), 42)
	if got.Status != content.StatusFresh || !got.Item.Available || got.Item.Title != "answer" {
		t.Fatalf("expected real data on next call, got %#v (%s)", got.Item, got.Status)
	}
}

func TestItemStaleFallback(t *testing.T) {
	src := newFakeSource()
	src.items[7] = hn.Item{ID: 7, Title: strPtr("seven")}
	c, clock := newTestCache(src)

	c.Item(context.Background(), 7)
	clock.Advance(16 * time.Minute)
	src.set(func(f *fakeSource) { f.itemErr[7] = errors.New("timeout") })

	got := c.Item(context.Background(), 7)
	if got.Status != content.StatusStale {
		t.Fatalf("expected stale, got %s", got.Status)
	}
	if got.Item.Title != "seven" {
		t.Fatalf("expected previous value unchanged, got %#v", got.Item)
	}
	stats := c.Stats()
	if stats.Stale != 1 || stats.Refreshes != 1 || stats.Items != 1 {
		t.Fatalf("unexpected stats %#v", stats)
	}
}

func TestItemPlaceholdersForMissingFields(t *testing.T) {
	src := newFakeSource()
	src.items[3] = hn.Item{ID: 3}
	c, _ := newTestCache(src)

	item := c.Item(context.Background(), 3).Item
	if item.Title != content.PlaceholderTitle {
		t.Fatalf("expected title placeholder, got %q", item.Title)
	}
	if item.URL != content.PlaceholderURL || item.Author != content.PlaceholderAuthor {
		t.Fatalf("expected url/author placeholders, got %#v", item)
	}
	if item.Score != 0 || item.Comments != 0 || !item.Posted.IsZero() {
		t.Fatalf("expected zero numeric fields, got %#v", item)
	}
	if !item.Available {
		t.Fatalf("fetched item must be available")
	}
}

func TestItemConvertsHTMLText(t *testing.T) {
	src := newFakeSource()
	posted := int64(1_600_000_000)
	src.items[4] = hn.Item{ID: 4, Text: strPtr("a<p>b &amp; c"), Time: &posted, Kids: []int{10, 11}}
	c, _ := newTestCache(src)

	item := c.Item(context.Background(), 4).Item
	if item.Text != "a\n\nb & c" {
		t.Fatalf("unexpected text %q", item.Text)
	}
	if item.Posted.Unix() != posted {
		t.Fatalf("unexpected posted time %v", item.Posted)
	}
	if len(item.Kids) != 2 {
		t.Fatalf("expected kids to be kept, got %v", item.Kids)
	}
}

func TestConcurrentReadsAreSafe(t *testing.T) {
	src := newFakeSource()
	src.top = []int{1, 2, 3}
	for i := 1; i <= 3; i++ {
		src.items[i] = hn.Item{ID: i, Title: strPtr(fmt.Sprintf("item %d", i))}
	}
	c := New(src)

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, id := range c.TopList(context.Background()).IDs {
				if got := c.Item(context.Background(), id); got.Item.ID != id {
					t.Errorf("expected id %d, got %d", id, got.Item.ID)
				}
			}
		}()
	}
	wg.Wait()

	src.mu.Lock()
	defer src.mu.Unlock()
	if src.topCalls > 16 {
		t.Fatalf("unexpected number of top fetches %d", src.topCalls)
	}
	for id, calls := range src.itemCalls {
		if calls < 1 {
			t.Fatalf("item %d never fetched", id)
		}
	}
}

// gatedSource blocks Item calls for ids in gates until the gate is closed or
// the fetch context ends.
type gatedSource struct {
	*fakeSource
	gates   map[int]chan struct{}
	started chan int
}

func (g *gatedSource) Item(ctx context.Context, id int) (hn.Item, error) {
	if gate, ok := g.gates[id]; ok {
		g.started <- id
		select {
		case <-gate:
		case <-ctx.Done():
			return hn.Item{}, ctx.Err()
		}
	}
	return g.fakeSource.Item(ctx, id)
}

func TestCancelledCallerDoesNotFailOthers(t *testing.T) {
	src := newFakeSource()
	src.items[42] = hn.Item{ID: 42, Title: strPtr("answer")}
	gate := make(chan struct{})
	g := &gatedSource{fakeSource: src, gates: map[int]chan struct{}{42: gate}, started: make(chan int, 1)}
	c := New(g)

	ctxA, cancelA := context.WithCancel(context.Background())
	resA := make(chan content.ItemResult, 1)
	go func() { resA <- c.Item(ctxA, 42) }()
	<-g.started

	resB := make(chan content.ItemResult, 1)
	go func() { resB <- c.Item(context.Background(), 42) }()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	select {
	case got := <-resA:
		if got.Status != content.StatusUnavailable {
			t.Fatalf("expected the cancelled caller to fall back, got %s", got.Status)
		}
	case <-time.After(time.Second):
		t.Fatalf("cancelled caller kept waiting on the shared fetch")
	}

	close(gate)
	select {
	case got := <-resB:
		if got.Status != content.StatusFresh || got.Item.Title != "answer" {
			t.Fatalf("expected fresh item for the other caller, got %#v (%s)", got.Item, got.Status)
		}
	case <-time.After(time.Second):
		t.Fatalf("other caller never received the item")
	}

	if got := c.Item(context.Background(), 42); got.Status != content.StatusFresh || got.Item.Title != "answer" {
		t.Fatalf("expected the shared fetch to populate the cache, got %#v (%s)", got.Item, got.Status)
	}
}

func TestSlowFetchDoesNotBlockHits(t *testing.T) {
	src := newFakeSource()
	src.items[1] = hn.Item{ID: 1, Title: strPtr("slow")}
	src.items[2] = hn.Item{ID: 2, Title: strPtr("cached")}
	gate := make(chan struct{})
	g := &gatedSource{fakeSource: src, gates: map[int]chan struct{}{1: gate}, started: make(chan int, 1)}
	c := New(g)

	if got := c.Item(context.Background(), 2); got.Status != content.StatusFresh {
		t.Fatalf("expected item 2 to be fetched, got %s", got.Status)
	}

	done := make(chan content.ItemResult, 1)
	go func() { done <- c.Item(context.Background(), 1) }()
	<-g.started

	hit := make(chan content.ItemResult, 1)
	go func() { hit <- c.Item(context.Background(), 2) }()
	select {
	case got := <-hit:
		if got.Item.Title != "cached" {
			t.Fatalf("unexpected item %#v", got.Item)
		}
	case <-time.After(time.Second):
		t.Fatalf("cache hit blocked behind an in-flight fetch")
	}
	if stats := c.Stats(); stats.Hits != 1 {
		t.Fatalf("expected one hit while the fetch was in flight, got %#v", stats)
	}

	close(gate)
	if got := <-done; got.Item.Title != "slow" {
		t.Fatalf("unexpected item %#v", got.Item)
	}
}

func TestItemStripsControlCharacters(t *testing.T) {
	src := newFakeSource()
	src.items[5] = hn.Item{
		ID:    5,
		Title: strPtr("Line one\nline two \x1b[2J"),
		URL:   strPtr("https://example.com/\x1b]0;x\x07"),
		By:    strPtr("\x1b"),
		Text:  strPtr("<p>hi &#27;[2J there"),
	}
	c, _ := newTestCache(src)

	item := c.Item(context.Background(), 5).Item
	if item.Title != "Line one line two [2J" {
		t.Fatalf("unexpected title %q", item.Title)
	}
	if item.URL != "https://example.com/]0;x" {
		t.Fatalf("unexpected url %q", item.URL)
	}
	if item.Author != content.PlaceholderAuthor {
		t.Fatalf("expected author placeholder for a control-only name, got %q", item.Author)
	}
	if item.Text != "hi [2J there" {
		t.Fatalf("unexpected text %q", item.Text)
	}
}

func TestAheadRefreshesBeforeExpiry(t *testing.T) {
	src := newFakeSource()
	src.top = []int{1}
	src.items[1] = hn.Item{ID: 1, Title: strPtr("one")}
	c, clock := newTestCache(src)

	c.TopList(context.Background())
	c.Item(context.Background(), 1)
	clock.Advance(5 * time.Minute)

	c.TopList(context.Background())
	c.Item(context.Background(), 1)
	if src.topCalls != 1 || src.itemCalls[1] != 1 {
		t.Fatalf("plain reads inside the window must not refresh, got %d/%d calls", src.topCalls, src.itemCalls[1])
	}

	ahead := 5*time.Minute + 30*time.Second
	c.TopListAhead(context.Background(), ahead)
	c.ItemAhead(context.Background(), 1, ahead)
	if src.topCalls != 2 {
		t.Fatalf("expected list expiring within %s to be refreshed, got %d calls", ahead, src.topCalls)
	}
	if src.itemCalls[1] != 1 {
		t.Fatalf("item has 10m left and must not be refreshed yet, got %d calls", src.itemCalls[1])
	}

	clock.Advance(5 * time.Minute)
	src.set(func(f *fakeSource) { f.itemErr[1] = errors.New("timeout") })
	got := c.ItemAhead(context.Background(), 1, ahead)
	if got.Status != content.StatusFresh || got.Item.Title != "one" {
		t.Fatalf("failed early refresh should still serve a fresh entry, got %#v (%s)", got.Item, got.Status)
	}
	if stats := c.Stats(); stats.Stale != 0 {
		t.Fatalf("failed early refresh must not count as stale, got %#v", stats)
	}
}
