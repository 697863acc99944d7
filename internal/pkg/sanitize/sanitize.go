// Package sanitize cleans user supplied rich text before it is rendered.
package sanitize

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

type Sanitizer struct {
	ugc    *bluemonday.Policy
	strict *bluemonday.Policy
}

func New() *Sanitizer {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)

	return &Sanitizer{
		ugc:    p,
		strict: bluemonday.StrictPolicy(),
	}
}

// HTML keeps structural markup (paragraphs, lists, links, code) and drops scripts,
// event handlers and other active content.
func (s *Sanitizer) HTML(raw string) string {
	return strings.TrimSpace(s.ugc.Sanitize(raw))
}

// Text strips every tag and unescapes entities.
func (s *Sanitizer) Text(raw string) string {
	return strings.Join(strings.Fields(html.UnescapeString(s.strict.Sanitize(raw))), " ")
}

// Excerpt is Text cut to maxLen runes with a trailing ellipsis.
func (s *Sanitizer) Excerpt(raw string, maxLen int) string {
	text := s.Text(raw)
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}

	return string([]rune(text)[:maxLen]) + "..."
}
