package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gaurav-prasanna/recipepipe/core"
	"github.com/gaurav-prasanna/recipepipe/core/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recipe(title string) core.Recipe {
	return core.Recipe{
		Title:       title,
		Description: "Recette: facile",
		Image:       "https://example.com/a.jpg",
		Category:    "Plat",
		PrepTime:    "15",
		CookTime:    "90",
		TotalTime:   "105",
		Servings:    "4",
		Ingredients: []core.Ingredient{
			{Quantity: "200", Unit: "g", Name: "farine"},
			{Quantity: "1/2", Unit: "l", Name: "lait"},
			{Quantity: "", Unit: "", Name: "sel"},
		},
		Body: "## Étapes\n\n1. Mélanger.\n2. Cuire.",
	}
}

func TestNewCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "apps", "web", "content")

	w, err := New(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, dir, w.OutputDir)
}

func TestWrite(t *testing.T) {
	w, err := New(t.TempDir())
	require.NoError(t, err)

	path, err := w.Write("tarte-tatin", []byte("first"), ".md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(w.OutputDir, "tarte-tatin.md"), path)

	// Re-ingestion overwrites in place.
	_, err = w.Write("tarte-tatin", []byte("second"), ".md")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestWriteFailure(t *testing.T) {
	w := &Writer{OutputDir: filepath.Join(t.TempDir(), "missing")}

	_, err := w.Write("x", []byte("data"), ".md")
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	w, err := New(t.TempDir())
	require.NoError(t, err)

	want := recipe("Pot-au-feu")
	data, err := render.NewMarkdownRenderer().Render(want)
	require.NoError(t, err)
	_, err = w.Write("pot-au-feu", data, ".md")
	require.NoError(t, err)

	entry, err := w.Read("pot-au-feu")
	require.NoError(t, err)
	assert.Equal(t, "pot-au-feu", entry.Slug)
	assert.Equal(t, want, entry.Recipe)
}

func TestParseRecipeEmptyIngredients(t *testing.T) {
	src := "---\ntitle: Soupe\nprepTime: 5\nservings: 2\ningredients: []\n---\n\nChauffer.\n"

	got, err := ParseRecipe([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, "Soupe", got.Title)
	assert.Equal(t, "5", got.PrepTime)
	assert.Equal(t, "0", got.CookTime)
	assert.Equal(t, "2", got.Servings)
	assert.NotNil(t, got.Ingredients)
	assert.Empty(t, got.Ingredients)
	assert.Equal(t, "Chauffer.", got.Body)
}

func TestReadNotFound(t *testing.T) {
	w, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = w.Read("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList(t *testing.T) {
	w, err := New(t.TempDir())
	require.NoError(t, err)

	r := render.NewMarkdownRenderer()
	for _, slug := range []string{"tarte-tatin", "flan", "quiche"} {
		data, err := r.Render(recipe(slug))
		require.NoError(t, err)
		_, err = w.Write(slug, data, ".md")
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(w.OutputDir, "notes.txt"), []byte("ignored"), 0o644))

	entries, err := w.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "flan", entries[0].Slug)
	assert.Equal(t, "quiche", entries[1].Slug)
	assert.Equal(t, "tarte-tatin", entries[2].Slug)
	assert.Equal(t, "flan", entries[0].Recipe.Title)
}
