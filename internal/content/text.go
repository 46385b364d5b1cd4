package content

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// PlainText converts the HTML fragment HN uses for story and comment bodies
// into plain text. Paragraph tags become blank lines, <br> a newline, and
// entities are decoded. Control characters decoded from entities are dropped.
func PlainText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(Clean(b.String()))
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "p":
				b.WriteString("\n\n")
			case "br":
				b.WriteString("\n")
			}
		}
	}
}

// Clean drops C0 and C1 control characters except newline. Tabs become a
// space.
func Clean(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			return r
		case r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
}

// SingleLine is Clean with line breaks folded into spaces, for fields shown
// on one row.
func SingleLine(s string) string {
	return Clean(lineBreaks.Replace(s))
}
