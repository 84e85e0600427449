// PDF renderer.
// Lays out a recipe card with gofpdf: title, timings, ingredient list, and
// the Markdown body (headings, paragraphs, code blocks, and lists).
// Images are not rendered.

package render

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/recipepipe/core"
	"github.com/jung-kurt/gofpdf"
)

var (
	numberedItem = regexp.MustCompile(`^\d+\.\s`)
	italicRun    = regexp.MustCompile(`(?:^|\s)\*([^*]+)\*(?:\s|$)`)
	inlineCode   = regexp.MustCompile("`([^`]+)`")
	inlineLink   = regexp.MustCompile(`\[([^\]]*)\]\([^)]+\)`)
)

// PDFRenderer renders a recipe card as a PDF document.
type PDFRenderer struct{}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render lays out recipe on A4 pages.
func (r *PDFRenderer) Render(recipe core.Recipe) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// Core fonts are cp1252; accented recipe text goes through the translator.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	title := recipe.Title
	if title == "" {
		title = "Untitled recipe"
	}
	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 8, tr(title), "", "L", false)
	pdf.Ln(2)

	if recipe.Category != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(100, 100, 100)
		pdf.MultiCell(0, 5, tr(strings.ToUpper(recipe.Category)), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(0, 5, tr(timingLine(recipe)), "", "L", false)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	if recipe.Description != "" {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.MultiCell(0, 5.5, tr(recipe.Description), "", "L", false)
		pdf.Ln(4)
	}

	renderHeading(pdf, tr, "Ingredients", 2)
	pdf.SetFont("Helvetica", "", 10)
	if len(recipe.Ingredients) == 0 {
		pdf.MultiCell(0, 5, "-", "", "L", false)
	}
	for _, ing := range recipe.Ingredients {
		pdf.MultiCell(0, 5, tr("• "+ingredientLine(ing)), "", "L", false)
	}
	pdf.Ln(4)

	if body := strings.TrimSpace(recipe.Body); body != "" {
		renderHeading(pdf, tr, "Method", 2)
		renderMarkdown(pdf, tr, body)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

func timingLine(recipe core.Recipe) string {
	return fmt.Sprintf("Prep %s min · Cook %s min · Total %s min · Serves %s",
		orDash(recipe.PrepTime), orDash(recipe.CookTime), orDash(recipe.TotalTime), orDash(recipe.Servings))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func ingredientLine(ing core.Ingredient) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{ing.Quantity, ing.Unit, ing.Name} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// renderMarkdown writes the body line by line.
func renderMarkdown(pdf *gofpdf.Fpdf, tr func(string) string, markdown string) {
	inCodeBlock := false

	for _, line := range strings.Split(markdown, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inCodeBlock = !inCodeBlock
			pdf.Ln(2)
			continue
		}

		if inCodeBlock {
			pdf.SetFont("Courier", "", 9)
			pdf.SetFillColor(245, 245, 245)
			pdf.MultiCell(0, 4.5, tr(line), "", "L", true)
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			pdf.Ln(3)
		case strings.HasPrefix(trimmed, "#"):
			level := len(trimmed) - len(strings.TrimLeft(trimmed, "#"))
			renderHeading(pdf, tr, strings.TrimSpace(strings.TrimLeft(trimmed, "# ")), level+1)
		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr("• "+cleanInlineMarkdown(trimmed[2:])), "", "L", false)
		case numberedItem.MatchString(trimmed):
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr(cleanInlineMarkdown(trimmed)), "", "L", false)
		default:
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr(cleanInlineMarkdown(line)), "", "L", false)
		}
	}
}

// renderHeading sets the font size based on heading level and writes text.
func renderHeading(pdf *gofpdf.Fpdf, tr func(string) string, text string, level int) {
	sizes := map[int]float64{1: 18, 2: 14, 3: 12, 4: 11, 5: 10, 6: 10}
	size, ok := sizes[level]
	if !ok {
		size = 10
	}
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", size)
	pdf.MultiCell(0, size*0.6, tr(cleanInlineMarkdown(text)), "", "L", false)
	pdf.Ln(2)
}

// cleanInlineMarkdown strips inline Markdown formatting for PDF rendering.
func cleanInlineMarkdown(text string) string {
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")
	// Italic markers only at word boundaries, so "don't" survives.
	text = italicRun.ReplaceAllString(text, " $1 ")
	text = inlineCode.ReplaceAllString(text, "$1")
	text = inlineLink.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}
