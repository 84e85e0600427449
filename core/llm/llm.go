// Package llm implements the extraction invoker: it prompts a language model
// with page text and recovers a raw recipe object from the reply.
package llm

import (
	"context"
	"fmt"

	"github.com/gaurav-prasanna/recipepipe/core"
	"github.com/gaurav-prasanna/recipepipe/core/config"
)

// Options bounds a single generation.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// Model is a text-generation backend. Generate returns the provider's output
// as-is: a string, a slice of string fragments, or any other JSON value.
type Model interface {
	Name() string
	Generate(ctx context.Context, prompt string, opts Options) (any, error)
}

// New builds the Model selected by cfg. A missing credential fails here,
// before any network call.
func New(cfg config.LLM) (Model, error) {
	switch cfg.Provider {
	case config.ProviderReplicate, "":
		return NewReplicate(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case config.ProviderAnthropic:
		return NewAnthropic(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case config.ProviderGemini:
		return NewGemini(cfg.APIKey, cfg.Model, cfg.BaseURL)
	default:
		return nil, core.NewConfigError(fmt.Sprintf("unknown model provider %q", cfg.Provider))
	}
}
