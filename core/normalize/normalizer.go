// Package normalize implements the Normalizer interface.
// It turns the loosely-typed object recovered from model output into a
// canonical core.Recipe: timings in minutes, servings as a count, and
// ingredient lines split into quantity, unit and name.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/gaurav-prasanna/recipepipe/core"
)

const (
	timeFallback     = "0"
	servingsFallback = "1"
)

// RecipeNormalizer normalizes raw recipes. Recipe bodies that arrive as HTML
// are converted to Markdown with html-to-markdown.
type RecipeNormalizer struct{}

// New creates a RecipeNormalizer.
func New() *RecipeNormalizer {
	return &RecipeNormalizer{}
}

// Normalize builds a new Recipe from raw. raw is never modified.
func (n *RecipeNormalizer) Normalize(raw core.RawRecipe) core.Recipe {
	return core.Recipe{
		Title:       Text(raw["title"]),
		Description: Text(raw["description"]),
		Image:       Text(raw["image"]),
		Category:    Text(raw["category"]),
		PrepTime:    NumberValue(Text(raw["prepTime"]), timeFallback),
		CookTime:    NumberValue(Text(raw["cookTime"]), timeFallback),
		TotalTime:   NumberValue(Text(raw["totalTime"]), timeFallback),
		Servings:    NumberValue(Text(raw["servings"]), servingsFallback),
		Ingredients: Ingredients(raw["ingredients"]),
		Body:        Body(raw["body"]),
	}
}

// Text stringifies a JSON value and collapses whitespace runs to one space.
// null and missing values become the empty string.
func Text(v any) string {
	return collapse(stringify(v))
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, el := range val {
			if s := Text(el); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(val)
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Body trims the recipe body, converting it to Markdown first when it
// contains HTML markup. Line breaks are preserved.
func Body(v any) string {
	body := strings.TrimSpace(stringify(v))
	if body == "" || !htmlTag.MatchString(body) {
		return body
	}
	md, err := htmltomarkdown.ConvertString(body)
	if err != nil {
		return body
	}
	return strings.TrimSpace(md)
}

var htmlTag = regexp.MustCompile(`(?i)</?(p|br|div|span|ul|ol|li|h[1-6]|strong|em|b|i|a|section|article)\b[^>]*>`)

// --- Durations and counts ---

var (
	rangePattern   = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)[\s\-–toà]+(\d+(?:[.,]\d+)?)`)
	hourPattern    = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*h`)
	minutePattern  = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*m`)
	trailingMinute = regexp.MustCompile(`(?i)^[a-z]*\s*(\d+(?:[.,]\d+)?)\s*(\pL*)`)
	numeral        = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
)

// NumberValue parses a free-text duration or count. Durations resolve to
// whole minutes ("1h30" → "90"), ranges keep their lower bound
// ("10-15 min" → "10"), and anything without a numeral yields fallback.
func NumberValue(raw, fallback string) string {
	text := collapse(raw)
	if text == "" {
		return fallback
	}

	// The first numeral pair wins, so "1h30-2h" reads as the range 30-2.
	if m := rangePattern.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	hour := hourPattern.FindStringSubmatchIndex(text)
	minute := minutePattern.FindStringSubmatch(text)
	if minute == nil && hour != nil {
		minute = minutesAfterHour(text[hour[1]:])
	}

	if hour != nil || minute != nil {
		var hours, minutes float64
		if hour != nil {
			hours = parseDecimal(text[hour[2]:hour[3]])
		}
		if minute != nil {
			minutes = parseDecimal(minute[1])
		}
		return formatRounded(hours*60+minutes, fallback)
	}

	n := numeral.FindString(text)
	if n == "" {
		return fallback
	}
	return formatRounded(parseDecimal(n), fallback)
}

// minutesAfterHour reads a bare numeral directly after the hour marker
// ("1h30", "1 heure 30") as minutes. A numeral followed by a word counts
// something else ("2h 4 personnes").
func minutesAfterHour(rest string) []string {
	m := trailingMinute.FindStringSubmatch(rest)
	if m == nil || m[2] != "" {
		return nil
	}
	return m
}

func parseDecimal(s string) float64 {
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func formatRounded(v float64, fallback string) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
}
