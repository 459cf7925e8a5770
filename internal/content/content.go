// Package content normalizes collected item text before scoring. RSS and
// news collectors frequently deliver summaries with embedded HTML; every
// scoring stage expects plain text.
package content

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// StripHTML removes markup from a snippet and collapses whitespace. Input
// that is already plain text passes through unchanged apart from
// whitespace normalization.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<>") {
		return normalizeWhitespace(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return normalizeWhitespace(s)
	}

	doc.Find("script, style, noscript").Remove()
	return normalizeWhitespace(doc.Text())
}

// Normalize returns a copy of the item text fields suitable for prompts
// and keyword matching: HTML stripped, whitespace collapsed.
func Normalize(title, summary string) (string, string) {
	return StripHTML(title), StripHTML(summary)
}

func normalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
