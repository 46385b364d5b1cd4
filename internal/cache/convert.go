package cache

import (
	"strings"
	"time"

	"github.com/atomicstack/hn-over-ssh/internal/content"
	"github.com/atomicstack/hn-over-ssh/internal/hn"
)

// fromWire substitutes placeholders for every field the API left out and
// strips control characters from upstream text. Title, URL and author are
// folded onto one line.
func fromWire(id int, raw hn.Item) content.Item {
	item := content.Item{
		ID:        id,
		Title:     content.PlaceholderTitle,
		URL:       content.PlaceholderURL,
		Author:    content.PlaceholderAuthor,
		Available: true,
	}
	if v := oneLine(raw.Title); v != "" {
		item.Title = v
	}
	if v := oneLine(raw.URL); v != "" {
		item.URL = v
	}
	if v := oneLine(raw.By); v != "" {
		item.Author = v
	}
	if raw.Score != nil {
		item.Score = *raw.Score
	}
	if raw.Descendants != nil {
		item.Comments = *raw.Descendants
	}
	if raw.Time != nil && *raw.Time > 0 {
		item.Posted = time.Unix(*raw.Time, 0)
	}
	if raw.Text != nil {
		item.Text = content.PlainText(*raw.Text)
	}
	if len(raw.Kids) > 0 {
		item.Kids = append([]int(nil), raw.Kids...)
	}
	return item
}

func oneLine(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(content.SingleLine(*s))
}
