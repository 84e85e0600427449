package output

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/gaurav-prasanna/recipepipe/core"
	"github.com/gaurav-prasanna/recipepipe/core/normalize"
)

// ErrNotFound is returned when no recipe file exists for a slug.
var ErrNotFound = errors.New("recipe not found")

// Entry is a persisted recipe.
type Entry struct {
	Slug   string      `json:"slug"`
	Path   string      `json:"path"`
	Recipe core.Recipe `json:"recipe"`
}

// ParseRecipe decodes a rendered Markdown document back into a Recipe.
// Front matter values pass through the normalizer, so numbers and missing
// keys come back in canonical form.
func ParseRecipe(source []byte) (core.Recipe, error) {
	meta := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return core.Recipe{}, fmt.Errorf("parse frontmatter: %w", err)
	}

	raw := core.RawRecipe(meta)
	raw["body"] = string(body)
	return normalize.New().Normalize(raw), nil
}

// Read loads the recipe stored under slug.
func (w *Writer) Read(slug string) (Entry, error) {
	path := w.PathFor(slug, ".md")
	source, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Entry{}, fmt.Errorf("%s: %w", slug, ErrNotFound)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("reading %s: %w", path, err)
	}

	recipe, err := ParseRecipe(source)
	if err != nil {
		return Entry{}, fmt.Errorf("%s: %w", path, err)
	}
	return Entry{Slug: slug, Path: path, Recipe: recipe}, nil
}

// List returns every Markdown recipe in the output directory, sorted by slug.
func (w *Writer) List() ([]Entry, error) {
	files, err := filepath.Glob(filepath.Join(w.OutputDir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", w.OutputDir, err)
	}

	entries := make([]Entry, 0, len(files))
	for _, path := range files {
		slug := strings.TrimSuffix(filepath.Base(path), ".md")
		entry, err := w.Read(slug)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Slug < entries[j].Slug })
	return entries, nil
}
