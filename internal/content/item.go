// Package content holds the record types shared by the cache, the navigator
// and the renderer. Values in this package never carry "missing" fields:
// placeholders are substituted when a wire record is converted, so callers
// can format them without special cases.
package content

import "time"

// Placeholders substituted for fields the upstream record omits.
const (
	PlaceholderTitle       = "No title available"
	PlaceholderURL         = "#"
	PlaceholderAuthor      = "unknown"
	UnavailableTitle       = "Story unavailable"
	UnavailableReplyAuthor = "unknown"
)

// Item is a story or comment ready for display.
type Item struct {
	ID       int
	Title    string
	URL      string
	Score    int
	Author   string
	Comments int
	Posted   time.Time
	Text     string
	Kids     []int
	// Available is false for the placeholder returned when an item has never
	// been fetched successfully.
	Available bool
}

// Unavailable returns the placeholder for an item that could not be fetched.
func Unavailable(id int) Item {
	return Item{
		ID:     id,
		Title:  UnavailableTitle,
		URL:    PlaceholderURL,
		Author: PlaceholderAuthor,
	}
}

// Status describes where a cache read got its value from.
type Status int

const (
	// StatusFresh means the value is within its freshness window, either
	// served from memory or just fetched.
	StatusFresh Status = iota
	// StatusStale means a refresh failed and an expired value was served.
	StatusStale
	// StatusUnavailable means no value was ever fetched and the fetch failed.
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusFresh:
		return "fresh"
	case StatusStale:
		return "stale"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// ListResult is the outcome of reading the top-story list.
type ListResult struct {
	IDs    []int
	Status Status
}

// ItemResult is the outcome of reading one item.
type ItemResult struct {
	Item   Item
	Status Status
}
