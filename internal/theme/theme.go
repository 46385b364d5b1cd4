package theme

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles describes the Lip Gloss styles used when colour output is enabled.
type Styles struct {
	Header       *lipgloss.Style
	Footer       *lipgloss.Style
	Item         *lipgloss.Style
	SelectedItem *lipgloss.Style
	Meta         *lipgloss.Style
	Title        *lipgloss.Style
	ReplyAuthor  *lipgloss.Style
	Info         *lipgloss.Style
}

// New builds styles bound to r. A nil renderer gets one writing to nowhere
// with a 256 colour profile, which is what remote PTYs are assumed to support.
func New(r *lipgloss.Renderer) *Styles {
	if r == nil {
		r = lipgloss.NewRenderer(io.Discard)
		r.SetColorProfile(termenv.ANSI256)
	}
	return &Styles{
		Header: ptr(
			r.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
		),
		Footer: ptr(
			r.NewStyle().Foreground(lipgloss.Color("245")),
		),
		Item: ptr(
			r.NewStyle().Foreground(lipgloss.Color("250")),
		),
		SelectedItem: ptr(
			r.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Bold(true),
		),
		Meta: ptr(
			r.NewStyle().Foreground(lipgloss.Color("244")),
		),
		Title: ptr(
			r.NewStyle().Foreground(lipgloss.Color("255")).Bold(true),
		),
		ReplyAuthor: ptr(
			r.NewStyle().Foreground(lipgloss.Color("208")),
		),
		Info: ptr(
			r.NewStyle().Foreground(lipgloss.Color("33")).Italic(true),
		),
	}
}

// Render applies style to text, passing text through unchanged when either
// the style set or the style is missing.
func (s *Styles) Render(style *lipgloss.Style, text string) string {
	if s == nil || style == nil {
		return text
	}
	return style.Render(text)
}

func ptr(style lipgloss.Style) *lipgloss.Style {
	return &style
}
