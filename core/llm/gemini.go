package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/recipepipe/core"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini calls the Google Generative Language API.
type Gemini struct {
	APIKey   string
	Model    string
	Endpoint string
}

// NewGemini returns a Gemini model. An empty key is a config error.
func NewGemini(apiKey, model, endpoint string) (*Gemini, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, core.NewConfigError("Gemini configuration missing")
	}
	return &Gemini{
		APIKey:   apiKey,
		Model:    strings.TrimSpace(model),
		Endpoint: strings.TrimSpace(endpoint),
	}, nil
}

func (g *Gemini) Name() string { return "gemini:" + g.Model }

// Generate returns the text parts of the first candidate in order.
func (g *Gemini) Generate(ctx context.Context, prompt string, opts Options) (any, error) {
	clientOpts := []option.ClientOption{option.WithAPIKey(g.APIKey)}
	if g.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(g.Endpoint))
	}

	cl, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(g.Model)
	temperature := float32(opts.Temperature)
	maxTokens := int32(opts.MaxTokens)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  &maxTokens,
		ResponseMIMEType: "application/json",
	}

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}

	var parts []string
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				parts = append(parts, string(t))
			}
		}
		break
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("gemini: empty response")
	}
	return parts, nil
}
