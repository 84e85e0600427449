// Ingest command.
// This is the main command that runs the pipeline:
// fetch → extract → model → normalize → render → write → commit.
//
// It handles the commit flags and the single-page / --all modes.

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/gaurav-prasanna/recipepipe/core/config"
	"github.com/gaurav-prasanna/recipepipe/core/fetch"
	"github.com/gaurav-prasanna/recipepipe/core/pipeline"
	"github.com/gaurav-prasanna/recipepipe/crawl"
	"github.com/spf13/cobra"
)

// Flag variables.
var (
	flagCommit     bool
	flagNoCommit   bool
	flagIngestJSON bool
	flagAll        bool
	flagMatch      string
	flagLimit      int
	flagDepth      int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <url>",
	Short: "Extract a recipe from a URL into the content directory",
	Long: `Ingest fetches a recipe page, extracts a structured recipe with the configured
language model, and writes <slug>.md under the content directory of REPO_ROOT.

With --commit (or RECIPE_GIT_AUTO_COMMIT=true) the file is then staged,
committed and pushed. Only one commit runs at a time per repository.

With --all the URL is treated as an index page: recipe links are discovered
from the site's sitemap.xml or from the page itself, and each is ingested.

Examples:
  recipepipe ingest https://www.marmiton.org/recettes/recette_flan.aspx
  recipepipe ingest https://example.com/tarte --commit
  recipepipe ingest https://example.com/tarte --json --config ./prod.env
  recipepipe ingest https://example.com/desserts --all --match /recette/ --limit 20`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	// Commit flags.
	ingestCmd.Flags().BoolVar(&flagCommit, "commit", false, "Commit and push the written file")
	ingestCmd.Flags().BoolVar(&flagNoCommit, "no-commit", false, "Skip the commit step even when enabled in config")

	ingestCmd.Flags().BoolVar(&flagIngestJSON, "json", false, "Print the run result as JSON")

	// Discovery flags.
	ingestCmd.Flags().BoolVar(&flagAll, "all", false, "Treat the URL as an index page and ingest every recipe it links to")
	ingestCmd.Flags().StringVar(&flagMatch, "match", "", "Only ingest discovered URLs whose path contains this string")
	ingestCmd.Flags().IntVar(&flagLimit, "limit", crawl.DefaultLimit, "Maximum number of discovered recipes")
	ingestCmd.Flags().IntVar(&flagDepth, "depth", crawl.DefaultDepth, "Link depth followed from the index page")
}

func runIngest(cmd *cobra.Command, args []string) error {
	if flagCommit && flagNoCommit {
		return fmt.Errorf("--commit and --no-commit are mutually exclusive")
	}

	cfg := loadConfig()
	switch {
	case flagCommit:
		cfg.Git.AutoCommit = true
	case flagNoCommit:
		cfg.Git.AutoCommit = false
	}

	p := pipeline.New(pipeline.WithLogger(logger))
	if flagAll {
		return ingestAll(cmd.Context(), p, args[0], cfg)
	}
	return ingestOne(cmd.Context(), p, args[0], cfg)
}

// ingestOne runs a single URL through the pipeline.
func ingestOne(ctx context.Context, p *pipeline.Pipeline, rawURL string, cfg config.Config) error {
	res, err := p.Run(ctx, rawURL, cfg)
	if res == nil {
		return err
	}

	if flagIngestJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(res); encErr != nil {
			return encErr
		}
		return err
	}

	fmt.Fprintf(os.Stdout, "✓ Written: %s\n", res.FilePath)
	if err == nil {
		fmt.Fprintf(os.Stdout, "✓ Commit: %s\n", res.Commit)
	}
	return err
}

// ingestAll discovers recipe pages from an index URL and ingests each one.
// A failed page does not stop the batch.
func ingestAll(ctx context.Context, p *pipeline.Pipeline, indexURL string, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Discovering recipes from %s...\n", indexURL)
	urls, err := crawl.Discover(ctx, indexURL, fetch.New(), crawl.Options{
		Match: flagMatch,
		Limit: flagLimit,
		Depth: flagDepth,
	})
	if err != nil {
		return fmt.Errorf("discovering recipes: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Found %d recipes to ingest\n", len(urls))

	var results []*pipeline.Result
	var errCount int
	for i, pageURL := range urls {
		fmt.Fprintf(os.Stdout, "[%d/%d] Ingesting %s\n", i+1, len(urls), pageURL)

		res, err := p.Run(ctx, pageURL, cfg)
		if res != nil {
			results = append(results, res)
			fmt.Fprintf(os.Stdout, "  ✓ Written: %s\n", res.FilePath)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "  ✗ Error: %v\n", err)
			errCount++
		}
	}

	if flagIngestJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	}
	if errCount > 0 {
		return fmt.Errorf("%d/%d recipes failed", errCount, len(urls))
	}
	return nil
}
