// Package extract implements the Extractor interface.
// It reduces a full HTML page to the visible text of its body by:
//  1. Removing non-content nodes (head, scripts, styles, embeds, etc.)
//  2. Collapsing the remaining text into a single line
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// noiseSelectors are HTML elements removed before extraction.
// Nothing under them contributes to the recipe text, and scripts are never run.
var noiseSelectors = []string{
	"head", "script", "style", "link",
	"noscript", "iframe", "meta", "svg",
}

// HTMLExtractor strips non-content nodes from HTML and returns plain text.
type HTMLExtractor struct{}

// New creates an HTMLExtractor.
func New() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Extract returns the whitespace-collapsed text of the page body.
// Malformed markup degrades to best-effort text; an unreadable document
// yields the empty string.
func (e *HTMLExtractor) Extract(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	content := doc.Find("body").First()
	if content.Length() == 0 {
		content = doc.Selection
	}

	return strings.Join(strings.Fields(content.Text()), " ")
}
