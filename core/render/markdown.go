// Package render provides output renderers for normalized recipes.
// This file implements the Markdown renderer: a YAML front-matter block in
// fixed field order followed by the recipe body.
package render

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/recipepipe/core"
)

// MarkdownRenderer renders a Recipe as a Markdown document with front matter.
// Output depends only on the Recipe, so rendering twice is byte-identical.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render returns the Markdown document for recipe.
func (r *MarkdownRenderer) Render(recipe core.Recipe) ([]byte, error) {
	var b strings.Builder

	b.WriteString("---\n")
	writeField(&b, "", "title", text(recipe.Title))
	writeField(&b, "", "description", text(recipe.Description))
	writeField(&b, "", "image", text(recipe.Image))
	writeField(&b, "", "category", text(recipe.Category))
	writeField(&b, "", "prepTime", scalar(recipe.PrepTime))
	writeField(&b, "", "cookTime", scalar(recipe.CookTime))
	writeField(&b, "", "totalTime", scalar(recipe.TotalTime))
	writeField(&b, "", "servings", scalar(recipe.Servings))

	if len(recipe.Ingredients) == 0 {
		b.WriteString("ingredients: []\n")
	} else {
		b.WriteString("ingredients:\n")
		for _, ing := range recipe.Ingredients {
			writeField(&b, "  - ", "quantity", scalar(ing.Quantity))
			writeField(&b, "    ", "unit", text(ing.Unit))
			writeField(&b, "    ", "name", text(ing.Name))
		}
	}
	b.WriteString("---\n\n")

	if body := strings.TrimSpace(recipe.Body); body != "" {
		b.WriteString(body)
		b.WriteString("\n")
	}

	return []byte(b.String()), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}

func writeField(b *strings.Builder, indent, key, value string) {
	b.WriteString(indent)
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}

// --- YAML scalars ---

var (
	yamlNumber = regexp.MustCompile(`^[-+]?(\d[\d_]*(\.\d*)?|\.\d+)([eE][-+]?\d+)?$|^0[xXoObB][0-9a-fA-F_]+$|^[-+]?\.(inf|Inf|INF)$|^\.(nan|NaN|NAN)$`)
	yamlDate   = regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}`)
	yamlWords  = map[string]bool{
		"true": true, "false": true, "yes": true, "no": true, "on": true, "off": true,
		"y": true, "n": true, "null": true, "~": true,
	}
)

const yamlIndicators = "-?:,[]{}#&*!|>'\"%@`"

// text renders a free-text field. Anything YAML would read back as something
// other than the same string is double-quoted.
func text(s string) string {
	if s == "" || yamlNumber.MatchString(s) || yamlDate.MatchString(s) || unsafePlain(s) {
		return quote(s)
	}
	return s
}

// scalar renders a numeric-looking field bare so it reads back as a number.
func scalar(s string) string {
	if s == "" || unsafePlain(s) {
		return quote(s)
	}
	return s
}

func unsafePlain(s string) bool {
	if s != strings.TrimSpace(s) {
		return true
	}
	if strings.ContainsAny(s, ":\n\r\t") || strings.Contains(s, " #") {
		return true
	}
	if strings.ContainsRune(yamlIndicators, []rune(s)[0]) {
		return true
	}
	return yamlWords[strings.ToLower(s)]
}

// quote returns s as a double-quoted scalar. JSON string escaping is a
// subset of YAML double-quoted escaping.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `""`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
