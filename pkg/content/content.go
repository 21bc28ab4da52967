// Package content turns HTML fragments and pages into plain text. Feed
// descriptions routinely embed markup (guest lists as <ul><li> items);
// the extractor wants the text, and episode pages serve as a description
// fallback when a feed item carries none.
package content

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// StripTags converts an HTML fragment to plain text. Block-ish elements
// are separated by spaces so list items do not run together. Input that
// fails to parse is returned trimmed as-is.
func StripTags(fragment string) string {
	trimmed := strings.TrimSpace(fragment)
	if trimmed == "" {
		return ""
	}
	if !strings.Contains(trimmed, "<") {
		return trimmed
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(trimmed))
	if err != nil {
		return trimmed
	}

	// <br> and list items would otherwise concatenate adjacent words.
	doc.Find("br, li, p, div").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml(" ")
	})

	return strings.Join(strings.Fields(doc.Text()), " ")
}

// ExtractPageText extracts the readable main text from a full HTML page.
func ExtractPageText(htmlContent string) (string, error) {
	article, err := readability.FromReader(strings.NewReader(htmlContent), nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}
	return strings.Join(strings.Fields(article.TextContent), " "), nil
}

// Truncate shortens text to at most max characters, counted in runes so a
// multi-byte character is never split.
func Truncate(text string, max int) string {
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
