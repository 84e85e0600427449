package cmd

import (
	"fmt"
	"os"

	"github.com/gaurav-prasanna/recipepipe/core/output"
	"github.com/gaurav-prasanna/recipepipe/core/render"
	"github.com/spf13/cobra"
)

var flagOutputDir string

var cardCmd = &cobra.Command{
	Use:   "card <slug>",
	Short: "Render a stored recipe as a printable PDF card",
	Long: `Card reads <slug>.md from the content directory and renders it as a one-page
PDF recipe card.

Examples:
  recipepipe card tarte-tatin
  recipepipe card tarte-tatin --output_dir ./cards`,
	Args: cobra.ExactArgs(1),
	RunE: runCard,
}

func init() {
	rootCmd.AddCommand(cardCmd)

	cardCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Output directory (default: current directory)")
}

func runCard(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	reader := &output.Writer{OutputDir: cfg.ContentRoot()}

	entry, err := reader.Read(args[0])
	if err != nil {
		return err
	}

	renderer := render.NewPDFRenderer()
	data, err := renderer.Render(entry.Recipe)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	writer, err := output.New(flagOutputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}
	path, err := writer.Write(entry.Slug, data, renderer.Extension())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Written: %s\n", path)
	return nil
}
