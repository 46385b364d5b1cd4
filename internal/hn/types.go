package hn

// Item models a record from the HN item endpoint. Optional fields are
// pointers so callers can tell an omitted field from a zero value.
type Item struct {
	ID          int     `json:"id"`
	Type        string  `json:"type,omitempty"`
	Deleted     bool    `json:"deleted,omitempty"`
	Dead        bool    `json:"dead,omitempty"`
	By          *string `json:"by,omitempty"`
	Time        *int64  `json:"time,omitempty"` // unix seconds
	Title       *string `json:"title,omitempty"`
	URL         *string `json:"url,omitempty"`
	Text        *string `json:"text,omitempty"`
	Score       *int    `json:"score,omitempty"`
	Descendants *int    `json:"descendants,omitempty"`
	Kids        []int   `json:"kids,omitempty"`
}
