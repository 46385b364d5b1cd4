package nav

import "github.com/atomicstack/hn-over-ssh/internal/logging/events"

// DefaultRows stands in for the terminal height when it is not known yet.
const DefaultRows = 24

// rowsReserved is the header, footer and spacing around the list, counted in
// list entries (each entry is two physical rows).
const rowsReserved = 5

// PageSize returns how many list entries fit a terminal of the given height.
// The result is always at least 1.
func PageSize(rows int) int {
	if rows <= 0 {
		rows = DefaultRows
	}
	size := rows/2 - rowsReserved
	if size < 1 {
		return 1
	}
	return size
}

// ClampCursor forces cursor into [0, n), or 0 for an empty list.
func ClampCursor(cursor, n int) int {
	if n <= 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}

// Window returns the half-open range [start, end) of list entries to draw.
// The window is centred on the cursor except near the ends of the list,
// where it is clamped so it never leaves [0, n).
func Window(cursor, n, pageSize int) (start, end int) {
	if n <= 0 {
		return 0, 0
	}
	if pageSize < 1 {
		pageSize = 1
	}
	cursor = ClampCursor(cursor, n)
	start = cursor - pageSize/2
	if start < 0 {
		start = 0
	}
	end = start + pageSize
	if end > n {
		end = n
	}
	return start, end
}

func (n *Navigator) moveCursorBy(delta int) bool {
	if n.listLen == 0 {
		n.cursor = 0
		return false
	}
	old := n.cursor
	n.cursor = ClampCursor(n.cursor+delta, n.listLen)
	if n.cursor != old {
		events.Nav.Cursor(n.cursor, n.listLen)
	}
	return n.cursor != old
}
