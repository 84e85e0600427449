package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gaurav-prasanna/recipepipe/core"
)

const (
	replicateBaseURL      = "https://api.replicate.com"
	replicatePollInterval = time.Second
)

// Replicate runs predictions on replicate.com. Official models are addressed
// as "owner/name"; pinned versions as "owner/name:version".
type Replicate struct {
	Token        string
	Model        string
	BaseURL      string
	PollInterval time.Duration
	httpc        *http.Client
}

// NewReplicate returns a Replicate model. An empty token is a config error.
func NewReplicate(token, model, baseURL string) (*Replicate, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, core.NewConfigError("Replicate configuration missing")
	}
	if baseURL == "" {
		baseURL = replicateBaseURL
	}
	return &Replicate{
		Token:        token,
		Model:        strings.TrimSpace(model),
		BaseURL:      strings.TrimRight(baseURL, "/"),
		PollInterval: replicatePollInterval,
		httpc:        &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (r *Replicate) Name() string { return "replicate:" + r.Model }

type replicatePrediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  any             `json:"error"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

func (p *replicatePrediction) terminal() bool {
	switch p.Status {
	case "succeeded", "failed", "canceled":
		return true
	}
	return false
}

// Generate creates a prediction, waiting synchronously when the API allows
// it and polling otherwise.
func (r *Replicate) Generate(ctx context.Context, prompt string, opts Options) (any, error) {
	input := map[string]any{
		"prompt":      prompt,
		"temperature": opts.Temperature,
		"max_tokens":  opts.MaxTokens,
	}

	endpoint := r.BaseURL + "/v1/models/" + r.Model + "/predictions"
	body := map[string]any{"input": input}
	if _, version, ok := strings.Cut(r.Model, ":"); ok {
		endpoint = r.BaseURL + "/v1/predictions"
		body["version"] = version
	}

	pred, err := r.do(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}

	for !pred.terminal() {
		if pred.URLs.Get == "" {
			return nil, fmt.Errorf("replicate: prediction %s is %s and has no poll URL", pred.ID, pred.Status)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.PollInterval):
		}
		if pred, err = r.do(ctx, http.MethodGet, pred.URLs.Get, nil); err != nil {
			return nil, err
		}
	}

	if pred.Status != "succeeded" {
		return nil, fmt.Errorf("replicate: prediction %s %s: %v", pred.ID, pred.Status, pred.Error)
	}

	var out any
	if len(pred.Output) > 0 {
		if err := json.Unmarshal(pred.Output, &out); err != nil {
			return nil, fmt.Errorf("replicate: decoding output: %w", err)
		}
	}
	return out, nil
}

func (r *Replicate) do(ctx context.Context, method, url string, payload any) (*replicatePrediction, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("replicate: encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("replicate: creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.Token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "wait")
	}

	resp, err := r.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("replicate: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("replicate: reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("replicate: status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var pred replicatePrediction
	if err := json.Unmarshal(data, &pred); err != nil {
		return nil, fmt.Errorf("replicate: decoding response: %w", err)
	}
	return &pred, nil
}
