package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/gaurav-prasanna/recipepipe/core/output"
	"github.com/spf13/cobra"
)

var flagListJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recipes stored in the content directory",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&flagListJSON, "json", false, "Print recipes as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	reader := &output.Writer{OutputDir: cfg.ContentRoot()}

	entries, err := reader.List()
	if err != nil {
		return err
	}

	if flagListJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintf(os.Stdout, "No recipes in %s\n", reader.OutputDir)
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLUG\tTITLE\tCATEGORY\tTOTAL (MIN)")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Slug, e.Recipe.Title, e.Recipe.Category, e.Recipe.TotalTime)
	}
	return tw.Flush()
}
