package nav

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/atomicstack/hn-over-ssh/internal/content"
)

// fetchParallelism bounds concurrent cache reads while building one frame.
const fetchParallelism = 8

// Size is a terminal size in character cells.
type Size struct {
	Rows int
	Cols int
}

// Row is one entry of the visible list window.
type Row struct {
	// Index is the 0-based position in the full list.
	Index    int
	Selected bool
	Item     content.Item
}

// DetailFrame carries a story and its direct replies.
type DetailFrame struct {
	Story   content.Item
	Replies []content.Item
}

// Frame is the view model handed to the renderer.
type Frame struct {
	View   View
	Size   Size
	Total  int
	Cursor int
	Start  int
	End    int
	Rows   []Row
	// ListStatus reports where the top list came from.
	ListStatus content.Status
	Detail     *DetailFrame
}

// Frame builds the view model for the active view, reading content from src.
func (n *Navigator) Frame(ctx context.Context, src Source, size Size) Frame {
	f := Frame{View: n.view, Size: size}
	switch n.view {
	case TopList:
		list := src.TopList(ctx)
		n.SetList(list.IDs)
		f.ListStatus = list.Status
		f.Total = n.listLen
		f.Cursor = n.cursor
		f.Start, f.End = Window(n.cursor, n.listLen, PageSize(size.Rows))
		items := fetchItems(ctx, src, list.IDs[f.Start:f.End])
		f.Rows = make([]Row, len(items))
		for i, item := range items {
			idx := f.Start + i
			f.Rows[i] = Row{Index: idx, Selected: idx == n.cursor, Item: item}
		}
	case Detail:
		story := src.Item(ctx, n.detailID).Item
		f.Detail = &DetailFrame{
			Story:   story,
			Replies: fetchItems(ctx, src, story.Kids),
		}
	}
	return f
}

// fetchItems reads ids concurrently and returns the items in the same order.
func fetchItems(ctx context.Context, src Source, ids []int) []content.Item {
	items := make([]content.Item, len(ids))
	if len(ids) == 0 {
		return items
	}
	var g errgroup.Group
	g.SetLimit(fetchParallelism)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			items[i] = src.Item(ctx, id).Item
			return nil
		})
	}
	g.Wait()
	return items
}
