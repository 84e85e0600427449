package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/gaurav-prasanna/recipepipe/core"
)

// Anthropic calls the Claude Messages API.
type Anthropic struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewAnthropic returns an Anthropic model. An empty key is a config error.
// Extra request options are appended after the key and base URL.
func NewAnthropic(apiKey, model, baseURL string, opts ...option.RequestOption) (*Anthropic, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, core.NewConfigError("Anthropic configuration missing")
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	reqOpts = append(reqOpts, opts...)

	return &Anthropic{
		client: anthropic.NewClient(reqOpts...),
		model:  anthropic.Model(strings.TrimSpace(model)),
	}, nil
}

func (a *Anthropic) Name() string { return "anthropic:" + string(a.model) }

// Generate returns the text blocks of the reply in order.
func (a *Anthropic) Generate(ctx context.Context, prompt string, opts Options) (any, error) {
	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       a.model,
		MaxTokens:   int64(opts.MaxTokens),
		Temperature: anthropic.Float(opts.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	var parts []string
	for _, block := range message.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("anthropic: no text blocks in response")
	}
	return parts, nil
}
