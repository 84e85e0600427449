// Package server exposes the ingestion pipeline over HTTP.
//
// A single endpoint accepts a recipe URL together with a shared secret:
//
//	POST /recipes {"url": "https://…", "code": "…"}
//
// Configuration is reloaded for every request so a changed secret or
// credential takes effect without a restart.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gaurav-prasanna/recipepipe/core"
	"github.com/gaurav-prasanna/recipepipe/core/config"
	"github.com/gaurav-prasanna/recipepipe/core/pipeline"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const unauthorizedMessage = "C'est pas le bon code 😎"

// Runner runs the pipeline for one URL.
type Runner interface {
	Run(ctx context.Context, rawURL string, cfg config.Config) (*pipeline.Result, error)
}

// Loader returns the configuration for a request.
type Loader func() config.Config

// Server is the HTTP boundary in front of a Runner.
type Server struct {
	router *gin.Engine
	runner Runner
	load   Loader
	logger *slog.Logger
}

type createRecipeRequest struct {
	URL  string `json:"url"`
	Code string `json:"code"`
}

// New builds the gin engine. origins lists the browser origins allowed to
// call the API with credentials.
func New(runner Runner, load Loader, origins []string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		router: gin.New(),
		runner: runner,
		load:   load,
		logger: logger,
	}

	s.router.Use(gin.Recovery(), s.requestLogger())
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(origins),
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s.router.GET("/healthz", s.health)
	s.router.POST("/recipes", s.createRecipe)
	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (s *Server) createRecipe(c *gin.Context) {
	var req createRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	cfg := s.load()
	if !secretMatches(cfg.Server.PostSecret, req.Code) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": unauthorizedMessage})
		return
	}

	res, err := s.runner.Run(c.Request.Context(), req.URL, cfg)
	if err != nil {
		status := http.StatusInternalServerError
		if core.IsCallerFault(err) {
			status = http.StatusBadRequest
		}
		body := gin.H{"success": false, "error": err.Error(), "kind": core.KindOf(err)}
		if res != nil {
			body["data"] = res
		}
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": res})
}

// secretMatches compares in constant time. An unconfigured secret never
// matches.
func secretMatches(secret, code string) bool {
	if secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(code)) == 1
}

func allowedOrigins(origins []string) []string {
	var out []string
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if strings.HasPrefix(o, "http://") || strings.HasPrefix(o, "https://") {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		out = []string{config.DefaultAllowedOrigin}
	}
	return out
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
