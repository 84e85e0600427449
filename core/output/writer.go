// Package output handles file naming, writing, and reading back of rendered
// recipes. Files live flat in one content directory, named <slug><ext>.
package output

import (
	"fmt"
	"os"
	"path/filepath"
)

// Writer writes rendered output to disk.
type Writer struct {
	OutputDir string
}

// New creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
func New(outputDir string) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	// Ensure the output directory exists.
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{OutputDir: outputDir}, nil
}

// PathFor returns the file path for slug with the given extension.
func (w *Writer) PathFor(slug, ext string) string {
	return filepath.Join(w.OutputDir, slug+ext)
}

// Write writes data to <OutputDir>/<slug><ext>, replacing any existing file.
func (w *Writer) Write(slug string, data []byte, ext string) (string, error) {
	path := w.PathFor(slug, ext)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}
