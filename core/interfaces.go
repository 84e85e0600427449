// Package core defines the recipe data model and the pipeline stage interfaces.
// Each stage of the ingestion pipeline is a small, testable interface.
package core

import "context"

// FetchResult holds the raw HTML and response metadata from a fetch.
type FetchResult struct {
	URL        string
	StatusCode int
	HTML       string
}

// Ingredient is one normalized ingredient line. Missing components are empty
// strings, never absent.
type Ingredient struct {
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
	Name     string `json:"name"`
}

// Recipe is the normalized recipe. Timings are minutes and Servings is a
// count, both as decimal-integer strings.
type Recipe struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Image       string       `json:"image"`
	Category    string       `json:"category"`
	PrepTime    string       `json:"prepTime"`
	CookTime    string       `json:"cookTime"`
	TotalTime   string       `json:"totalTime"`
	Servings    string       `json:"servings"`
	Ingredients []Ingredient `json:"ingredients"`
	Body        string       `json:"body"`
}

// RawRecipe is the untrusted object recovered from model output, keyed like
// Recipe. Values may be of any JSON type.
type RawRecipe map[string]any

// Fetcher retrieves raw HTML from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Extractor reduces a full HTML page to visible plain text.
type Extractor interface {
	Extract(html string) string
}

// Normalizer converts a raw recipe into its canonical form.
type Normalizer interface {
	Normalize(raw RawRecipe) Recipe
}

// Renderer converts a normalized recipe into a final output format.
type Renderer interface {
	Render(recipe Recipe) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".md", ".pdf").
	Extension() string
}
