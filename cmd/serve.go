package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gaurav-prasanna/recipepipe/core/pipeline"
	"github.com/gaurav-prasanna/recipepipe/server"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the recipe ingestion endpoint over HTTP",
	Long: `Serve starts an HTTP server with a single ingestion endpoint:

  POST /recipes   {"url": "<recipe page>", "code": "<POST_SECRET>"}
  GET  /healthz

Requests whose code does not match POST_SECRET are rejected with 401.
Configuration is re-read for every request.

Examples:
  recipepipe serve
  recipepipe serve --addr :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default: :$PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	addr := flagAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	if cfg.Server.PostSecret == "" {
		logger.Warn("POST_SECRET is not set; every request will be rejected")
	}

	if !flagVerbose {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(pipeline.WithLogger(logger))
	srv := server.New(p, loadConfig, cfg.Server.AllowedOrigins, logger)
	return srv.ListenAndServe(ctx, addr)
}
