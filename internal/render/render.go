// Package render turns navigator frames into the bytes written to a
// terminal. Rendering is a pure function of the frame, the renderer's options
// and its clock.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/atomicstack/hn-over-ssh/internal/content"
	"github.com/atomicstack/hn-over-ssh/internal/nav"
	"github.com/atomicstack/hn-over-ssh/internal/theme"
)

const (
	lineEnd      = "\r\n"
	ellipsis     = "…"
	rule         = "────────────────────────────────"
	noStories    = "No stories available."
	noReplyText  = "No text available."
	unknownTime  = "at an unknown time"
	unavailable  = "details unavailable"
	replyMissing = "(reply unavailable)"
)

var (
	headerLines = []string{
		"     ┌────┬───────┬─────────┬───────┐",
		"     │ HN │ t top │ a about │ f faq │",
		"     └────┴───────┴─────────┴───────┘",
	}
	footerLines = []string{
		"───────────┬──────────┬────────────┬─────────────",
		"     ↑ Up  │  ↓ Down  │  Esc Back  │  q Quit",
	}
)

// clearScreen wipes scrollback and the visible screen, then homes the cursor.
var clearScreen = ansi.EraseDisplay(3) + ansi.EraseDisplay(2) + ansi.CursorHomePosition

// ClearScreen returns the sequence written before every frame and on teardown.
func ClearScreen() []byte {
	return []byte(clearScreen)
}

// Renderer formats frames. The zero value is not usable; call New.
type Renderer struct {
	clear  bool
	styles *theme.Styles
	now    func() time.Time
}

// Option customises a Renderer.
type Option func(*Renderer)

// WithoutClear omits the leading clear-screen sequence, for front ends that
// manage the screen themselves.
func WithoutClear() Option {
	return func(r *Renderer) { r.clear = false }
}

// WithStyles enables colour output using s.
func WithStyles(s *theme.Styles) Option {
	return func(r *Renderer) { r.styles = s }
}

// WithClock sets the reference time for relative timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		if now != nil {
			r.now = now
		}
	}
}

// New returns a plain-text renderer that clears the screen before each frame.
func New(opts ...Option) *Renderer {
	r := &Renderer{clear: true, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render formats f.
func (r *Renderer) Render(f nav.Frame) []byte {
	return []byte(r.RenderString(f))
}

// RenderString formats f as a string.
func (r *Renderer) RenderString(f nav.Frame) string {
	cols := f.Size.Cols
	lines := make([]string, 0, 32)
	for _, line := range headerLines {
		lines = append(lines, r.paint(headerStyle, fit(line, cols)))
	}
	switch f.View {
	case nav.TopList:
		lines = append(lines, r.listBody(f)...)
	case nav.About:
		lines = append(lines, r.staticBody(aboutPage, cols)...)
	case nav.Faq:
		lines = append(lines, r.staticBody(faqPage, cols)...)
	case nav.Detail:
		lines = append(lines, r.detailBody(f.Detail, cols)...)
	}
	for _, line := range footerLines {
		lines = append(lines, r.paint(footerStyle, fit(line, cols)))
	}

	var b strings.Builder
	if r.clear {
		b.WriteString(clearScreen)
	}
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString(lineEnd)
	}
	return b.String()
}

func (r *Renderer) listBody(f nav.Frame) []string {
	cols := f.Size.Cols
	if f.Total == 0 || len(f.Rows) == 0 {
		return []string{r.paint(infoStyle, fit(noStories, cols))}
	}
	lines := make([]string, 0, len(f.Rows)*2)
	for _, row := range f.Rows {
		mark := " "
		if row.Selected {
			mark = "*"
		}
		item := row.Item
		title := fit(fmt.Sprintf("%s%d. %s (%s)", mark, row.Index+1, content.SingleLine(item.Title), content.SingleLine(item.URL)), cols)
		meta := fit("    "+r.stats(item), cols)
		if row.Selected {
			title = r.paint(selectedStyle, title)
		} else {
			title = r.paint(itemStyle, title)
		}
		lines = append(lines, title, r.paint(metaStyle, meta))
	}
	return lines
}

func (r *Renderer) staticBody(page []string, cols int) []string {
	lines := make([]string, 0, len(page)+2)
	lines = append(lines, "")
	for _, line := range page {
		lines = append(lines, fit(line, cols))
	}
	return append(lines, "")
}

func (r *Renderer) detailBody(d *nav.DetailFrame, cols int) []string {
	if d == nil {
		d = &nav.DetailFrame{Story: content.Unavailable(0)}
	}
	story := d.Story
	lines := make([]string, 0, 16+len(d.Replies)*3)
	for _, line := range wrapLines(content.SingleLine(story.Title), cols) {
		lines = append(lines, r.paint(titleStyle, line))
	}
	lines = append(lines, wrapLines(content.SingleLine(story.URL), cols)...)
	lines = append(lines, r.paint(metaStyle, fit(r.stats(story), cols)))
	if story.Text != "" {
		lines = append(lines, wrapLines(story.Text, cols)...)
	}
	lines = append(lines, fit(rule, cols))
	for _, reply := range d.Replies {
		lines = append(lines, "")
		lines = append(lines, r.reply(reply, cols)...)
	}
	return append(lines, "")
}

func (r *Renderer) reply(item content.Item, cols int) []string {
	if !item.Available {
		return []string{fit("• "+replyMissing, cols)}
	}
	text := item.Text
	if text == "" {
		text = noReplyText
	}
	prefix := "• " + content.SingleLine(item.Author) + ": "
	wrapped := wrapLines(prefix+text, cols)
	if len(wrapped) > 0 && strings.HasPrefix(wrapped[0], prefix) {
		wrapped[0] = r.paint(replyAuthorStyle, prefix) + wrapped[0][len(prefix):]
	}
	return wrapped
}

func (r *Renderer) stats(item content.Item) string {
	if !item.Available {
		return unavailable
	}
	return fmt.Sprintf("%d points by %s %s | %d comments", item.Score, content.SingleLine(item.Author), r.ago(item.Posted), item.Comments)
}

func (r *Renderer) ago(posted time.Time) string {
	if posted.IsZero() {
		return unknownTime
	}
	return humanize.RelTime(posted, r.now(), "ago", "from now")
}

// fit truncates line to cols display cells; cols <= 0 means unlimited.
func fit(line string, cols int) string {
	if cols <= 0 || ansi.StringWidth(line) <= cols {
		return line
	}
	return ansi.Truncate(line, cols, ellipsis)
}

// wrapLines word-wraps text to cols, hard-wrapping words that are still too
// long, and splits the result into physical lines. Control characters other
// than newline are dropped first.
func wrapLines(text string, cols int) []string {
	text = content.Clean(text)
	if cols > 0 {
		text = wrap.String(wordwrap.String(text, cols), cols)
	}
	return strings.Split(text, "\n")
}

// paint applies the style chosen by pick, or returns text unchanged when
// colour is disabled.
func (r *Renderer) paint(pick func(*theme.Styles) *lipgloss.Style, text string) string {
	if r.styles == nil {
		return text
	}
	return r.styles.Render(pick(r.styles), text)
}

func headerStyle(s *theme.Styles) *lipgloss.Style      { return s.Header }
func footerStyle(s *theme.Styles) *lipgloss.Style      { return s.Footer }
func itemStyle(s *theme.Styles) *lipgloss.Style        { return s.Item }
func selectedStyle(s *theme.Styles) *lipgloss.Style    { return s.SelectedItem }
func metaStyle(s *theme.Styles) *lipgloss.Style        { return s.Meta }
func titleStyle(s *theme.Styles) *lipgloss.Style       { return s.Title }
func replyAuthorStyle(s *theme.Styles) *lipgloss.Style { return s.ReplyAuthor }
func infoStyle(s *theme.Styles) *lipgloss.Style        { return s.Info }
