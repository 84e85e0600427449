// Package slug derives URL-safe content identifiers from recipe titles.
package slug

import (
	"regexp"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Default is used when a title is blank or slugifies to nothing.
const Default = "untitled-recipe"

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// combiningMarks matches the Combining Diacritical Marks block (U+0300–U+036F).
var combiningMarks = runes.Predicate(func(r rune) bool {
	return r >= 0x0300 && r <= 0x036f
})

// Make lower-cases the title, strips diacritics after canonical
// decomposition, and joins the remaining [a-z0-9] runs with hyphens.
func Make(title string) string {
	if strings.TrimSpace(title) == "" {
		title = Default
	}

	s := slugify(title)
	if s == "" {
		return Default
	}
	return s
}

func slugify(s string) string {
	s = strings.ToLower(s)

	t := transform.Chain(norm.NFD, runes.Remove(combiningMarks))
	stripped, _, err := transform.String(t, s)
	if err == nil {
		s = stripped
	}

	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
