// Package pipeline sequences the ingestion stages for one recipe URL:
// fetch → extract → invoke model → normalize → render → write → commit.
// Every failure comes back as a classified *core.Error.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/gaurav-prasanna/recipepipe/core"
	"github.com/gaurav-prasanna/recipepipe/core/config"
	"github.com/gaurav-prasanna/recipepipe/core/extract"
	"github.com/gaurav-prasanna/recipepipe/core/fetch"
	"github.com/gaurav-prasanna/recipepipe/core/llm"
	"github.com/gaurav-prasanna/recipepipe/core/normalize"
	"github.com/gaurav-prasanna/recipepipe/core/output"
	"github.com/gaurav-prasanna/recipepipe/core/render"
	"github.com/gaurav-prasanna/recipepipe/core/slug"
	"github.com/gaurav-prasanna/recipepipe/core/telemetry"
	"github.com/gaurav-prasanna/recipepipe/core/vcs"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/gaurav-prasanna/recipepipe/pipeline"

// Result describes a pipeline run. FilePath is set as soon as the Markdown
// file is written, even when the commit step then fails.
type Result struct {
	Success  bool        `json:"success"`
	Slug     string      `json:"slug"`
	FilePath string      `json:"filePath"`
	Recipe   core.Recipe `json:"recipe"`
	Commit   vcs.Outcome `json:"commit"`
}

// ModelFactory builds the extraction model for a run.
type ModelFactory func(cfg config.LLM) (llm.Model, error)

// VCSFactory builds the version-control client for a repository.
type VCSFactory func(repoRoot string, cfg config.Git) vcs.Client

// Pipeline holds the stage implementations. It has no per-run state and
// is safe for concurrent use.
type Pipeline struct {
	fetcher    core.Fetcher
	extractor  core.Extractor
	normalizer core.Normalizer
	renderer   core.Renderer
	newModel   ModelFactory
	newVCS     VCSFactory
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithFetcher replaces the HTTP fetcher.
func WithFetcher(f core.Fetcher) Option { return func(p *Pipeline) { p.fetcher = f } }

// WithModelFactory replaces the model constructor.
func WithModelFactory(f ModelFactory) Option { return func(p *Pipeline) { p.newModel = f } }

// WithVCSFactory replaces the git client constructor.
func WithVCSFactory(f VCSFactory) Option { return func(p *Pipeline) { p.newVCS = f } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(p *Pipeline) { p.logger = l } }

// New creates a Pipeline with the default stages.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		fetcher:    fetch.New(),
		extractor:  extract.New(),
		normalizer: normalize.New(),
		renderer:   render.NewMarkdownRenderer(),
		newModel:   llm.New,
		newVCS: func(root string, cfg config.Git) vcs.Client {
			return vcs.NewGit(root, cfg)
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var runMetrics struct {
	runs metric.Int64Counter
}

var runMetricsOnce sync.Once

func initRunMetrics() {
	m := telemetry.Meter(tracerName)
	runMetrics.runs, _ = m.Int64Counter("recipepipe.pipeline.runs",
		metric.WithDescription("Pipeline runs by outcome"),
		metric.WithUnit("{run}"),
	)
}

// Run ingests rawURL with cfg. cfg is validated before any network call.
// On a commit failure the returned Result still reports the written file.
func (p *Pipeline) Run(ctx context.Context, rawURL string, cfg config.Config) (*Result, error) {
	runMetricsOnce.Do(initRunMetrics)

	ctx, span := telemetry.Tracer(tracerName).Start(ctx, "pipeline.run")
	defer span.End()
	span.SetAttributes(attribute.String("recipepipe.url", rawURL))

	res, err := p.run(ctx, span, rawURL, cfg)

	outcome := "success"
	if err != nil {
		outcome = string(core.KindOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.Error("pipeline failed", "url", rawURL, "kind", outcome, "error", err)
	}
	if runMetrics.runs != nil {
		runMetrics.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
	return res, err
}

func (p *Pipeline) run(ctx context.Context, span trace.Span, rawURL string, cfg config.Config) (*Result, error) {
	// 0. Validate input and configuration
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, core.NewValidationError("url is required")
	}
	if parsed, err := url.Parse(rawURL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, core.NewValidationError(fmt.Sprintf("invalid URL: %s (must include scheme, e.g. https://example.com)", rawURL))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	model, err := p.newModel(cfg.LLM)
	if err != nil {
		return nil, classify(err, core.KindConfig)
	}

	// 1. Fetch
	page, err := p.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, core.NewFetchError(err)
	}
	p.logger.Debug("fetched", "url", rawURL, "status", page.StatusCode, "bytes", len(page.HTML))
	span.AddEvent("fetched")

	// 2. Extract visible text
	text := p.extractor.Extract(page.HTML)
	p.logger.Debug("extracted", "chars", len(text))

	// 3. Ask the model for a raw recipe
	invoker := llm.NewInvoker(model, llm.Options{Temperature: cfg.LLM.Temperature, MaxTokens: cfg.LLM.MaxTokens}, p.logger)
	raw, err := invoker.Extract(ctx, text)
	if err != nil {
		return nil, err
	}
	span.AddEvent("extracted")

	// 4. Normalize and render
	recipe := p.normalizer.Normalize(raw)
	id := slug.Make(recipe.Title)
	data, err := p.renderer.Render(recipe)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	// 5. Write, unconditionally
	writer, err := output.New(cfg.ContentRoot())
	if err != nil {
		return nil, core.NewPersistenceError(err)
	}
	path, err := writer.Write(id, data, p.renderer.Extension())
	if err != nil {
		return nil, core.NewPersistenceError(err)
	}
	p.logger.Info("recipe written", "path", path, "slug", id)
	span.AddEvent("written", trace.WithAttributes(attribute.String("recipepipe.path", path)))

	res := &Result{Success: true, Slug: id, FilePath: path, Recipe: recipe, Commit: vcs.OutcomeDisabled}

	// 6. Optional guarded commit
	if !cfg.Git.AutoCommit {
		return res, nil
	}
	committer, err := vcs.NewCommitter(p.newVCS(cfg.RepoRoot, cfg.Git), cfg.RepoRoot, cfg.Git, p.logger)
	if err != nil {
		res.Success = false
		return res, err
	}
	outcome, err := committer.Commit(ctx, path, recipe.Title)
	if err != nil {
		res.Success = false
		return res, err
	}
	res.Commit = outcome
	p.logger.Info("commit step finished", "outcome", outcome)
	return res, nil
}

// classify keeps an already classified error and files anything else
// under kind.
func classify(err error, kind core.Kind) error {
	var e *core.Error
	if errors.As(err, &e) {
		return err
	}
	return &core.Error{Kind: kind, Err: err}
}
