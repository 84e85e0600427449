// Package cmd implements the CLI commands for RecipePipe using Cobra.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/gaurav-prasanna/recipepipe/core/config"
	"github.com/gaurav-prasanna/recipepipe/core/telemetry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const serviceName = "recipepipe"

// Global flag variables.
var (
	flagConfig  string
	flagVerbose bool
)

// Shared state set up before every command.
var (
	logger            *slog.Logger
	settings          *viper.Viper
	shutdownTelemetry telemetry.ShutdownFunc
)

var rootCmd = &cobra.Command{
	Use:   "recipepipe",
	Short: "RecipePipe — turn recipe pages into Markdown content files",
	Long: `RecipePipe fetches a recipe web page, asks a language model to extract a
structured recipe, and writes it as a Markdown file with YAML front matter
into a content repository. It can optionally commit and push the new file.

Usage:
  recipepipe ingest <url> [flags]
  recipepipe serve [flags]
  recipepipe list [flags]
  recipepipe card <slug> [flags]`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if shutdownTelemetry == nil {
			return nil
		}
		return shutdownTelemetry(context.Background())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: ./.env when present)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	configFile := flagConfig
	if configFile == "" {
		if _, err := os.Stat(".env"); err == nil {
			configFile = ".env"
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("checking .env: %w", err)
		}
	}

	v, err := config.NewViper(configFile)
	if err != nil {
		return err
	}
	settings = v
	if configFile != "" {
		logger.Debug("config loaded", "file", configFile)
	}

	shutdown, err := telemetry.Init(serviceName, settings.GetBool("RECIPE_OTEL_STDOUT"))
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	shutdownTelemetry = shutdown
	return nil
}

// loadConfig reads the current configuration. Validation is left to the
// pipeline so each run checks what it needs.
func loadConfig() config.Config {
	return config.Load(settings)
}
