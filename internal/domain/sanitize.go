package domain

import (
	"regexp"
	"strings"
)

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// StripHTML removes markup from upstream free-text fields and collapses
// whitespace. TV Maze summaries in particular arrive wrapped in HTML;
// downstream consumers never see raw markup.
func StripHTML(text string) string {
	if text == "" {
		return ""
	}
	clean := htmlTagPattern.ReplaceAllString(text, "")
	clean = whitespacePattern.ReplaceAllString(clean, " ")
	return strings.TrimSpace(clean)
}
