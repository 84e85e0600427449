package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/gaurav-prasanna/recipepipe/core"
	"github.com/gaurav-prasanna/recipepipe/core/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	out    any
	err    error
	calls  int
	prompt string
	opts   Options
}

func (f *fakeModel) Name() string { return "fake" }

func (f *fakeModel) Generate(_ context.Context, prompt string, opts Options) (any, error) {
	f.calls++
	f.prompt = prompt
	f.opts = opts
	return f.out, f.err
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", `{"title":"a"}`, `{"title":"a"}`},
		{"string fragments", []string{`{"ti`, `tle":`, `"a"}`}, `{"title":"a"}`},
		{"any fragments", []any{`{"ti`, `tle":`, `"a"}`}, `{"title":"a"}`},
		{"object", map[string]any{"title": "a"}, `{"title":"a"}`},
		{"number", float64(3), "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Coerce(tt.in))
		})
	}
}

func TestRecoverJSON(t *testing.T) {
	t.Run("surrounding prose", func(t *testing.T) {
		raw, err := RecoverJSON("Here you go:\n```json\n{\"title\": \"Tarte\", \"servings\": 4}\n```\nEnjoy!")
		require.NoError(t, err)
		assert.Equal(t, core.RawRecipe{"title": "Tarte", "servings": float64(4)}, raw)
	})

	t.Run("nested braces", func(t *testing.T) {
		raw, err := RecoverJSON(`{"ingredients": [{"name": "sel"}], "body": "x"}`)
		require.NoError(t, err)
		assert.Len(t, raw["ingredients"], 1)
	})

	for _, in := range []string{"", "no json here", "only { open", "only } close"} {
		t.Run("no json: "+in, func(t *testing.T) {
			_, err := RecoverJSON(in)
			require.Error(t, err)
			assert.Equal(t, core.KindExtraction, core.KindOf(err))
			assert.Equal(t, "no JSON detected", err.Error())
		})
	}

	t.Run("invalid json", func(t *testing.T) {
		_, err := RecoverJSON(`{"title": "Tarte",}`)
		require.Error(t, err)
		assert.Equal(t, core.KindExtraction, core.KindOf(err))
		assert.Contains(t, err.Error(), "invalid JSON: ")
	})

	t.Run("closing brace before opening", func(t *testing.T) {
		_, err := RecoverJSON("} then {")
		require.Error(t, err)
		assert.Equal(t, "invalid JSON: unexpected end of JSON input", err.Error())
	})
}

func TestBuildPrompt(t *testing.T) {
	p, err := BuildPrompt("Tarte aux pommes 200 g farine")
	require.NoError(t, err)

	assert.Contains(t, p, "Return ONLY valid JSON")
	assert.Contains(t, p, "Never hallucinate.")
	assert.Contains(t, p, "TEXT TO PARSE:\nTarte aux pommes 200 g farine\n")

	again, err := BuildPrompt("Tarte aux pommes 200 g farine")
	require.NoError(t, err)
	assert.Equal(t, p, again)
}

func TestInvokerExtract(t *testing.T) {
	model := &fakeModel{out: []any{"Sure! {\"title\": \"Crème", " brûlée\", \"ingredients\": []}"}}
	inv := NewInvoker(model, Options{Temperature: 0.2, MaxTokens: 1500}, nil)

	raw, err := inv.Extract(context.Background(), "page text")
	require.NoError(t, err)

	assert.Equal(t, "Crème brûlée", raw["title"])
	assert.Equal(t, 1, model.calls)
	assert.Contains(t, model.prompt, "page text")
	assert.Equal(t, Options{Temperature: 0.2, MaxTokens: 1500}, model.opts)
}

func TestInvokerNoJSONIsSingleCall(t *testing.T) {
	model := &fakeModel{out: "I could not find a recipe."}
	inv := NewInvoker(model, Options{}, nil)

	_, err := inv.Extract(context.Background(), "text")
	require.Error(t, err)
	assert.Equal(t, core.KindExtraction, core.KindOf(err))
	assert.Equal(t, 1, model.calls)
}

func TestInvokerModelError(t *testing.T) {
	boom := errors.New("boom")
	inv := NewInvoker(&fakeModel{err: boom}, Options{}, nil)

	_, err := inv.Extract(context.Background(), "text")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, core.KindInternal, core.KindOf(err))
}

func TestNewFailsFastWithoutCredential(t *testing.T) {
	for _, provider := range []string{config.ProviderReplicate, config.ProviderAnthropic, config.ProviderGemini} {
		t.Run(provider, func(t *testing.T) {
			_, err := New(config.LLM{Provider: provider, Model: "m", APIKey: "  "})
			require.Error(t, err)
			assert.Equal(t, core.KindConfig, core.KindOf(err))
		})
	}

	_, err := New(config.LLM{Provider: "ollama", APIKey: "k"})
	require.Error(t, err)
	assert.Equal(t, core.KindConfig, core.KindOf(err))
}

func TestNewSelectsProvider(t *testing.T) {
	m, err := New(config.LLM{Provider: config.ProviderReplicate, APIKey: "k", Model: "openai/gpt-5-mini"})
	require.NoError(t, err)
	assert.Equal(t, "replicate:openai/gpt-5-mini", m.Name())

	m, err = New(config.LLM{Provider: config.ProviderAnthropic, APIKey: "k", Model: "claude-3-5-haiku-latest"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic:claude-3-5-haiku-latest", m.Name())

	m, err = New(config.LLM{Provider: config.ProviderGemini, APIKey: "k", Model: "gemini-2.5-flash"})
	require.NoError(t, err)
	assert.Equal(t, "gemini:gemini-2.5-flash", m.Name())
}

func TestReplicateSynchronous(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/models/openai/gpt-5-mini/predictions", r.URL.Path)
		assert.Equal(t, "Bearer r8_test", r.Header.Get("Authorization"))
		assert.Equal(t, "wait", r.Header.Get("Prefer"))

		data, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(data, &body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"p1","status":"succeeded","output":["{\"title\":", "\"Tarte\"}"]}`))
	}))
	defer server.Close()

	r, err := NewReplicate("r8_test", "openai/gpt-5-mini", server.URL)
	require.NoError(t, err)

	out, err := r.Generate(context.Background(), "hello", Options{Temperature: 0.2, MaxTokens: 1500})
	require.NoError(t, err)

	assert.Equal(t, `{"title":"Tarte"}`, Coerce(out))
	input := body["input"].(map[string]any)
	assert.Equal(t, "hello", input["prompt"])
	assert.InDelta(t, 0.2, input["temperature"], 1e-9)
	assert.Equal(t, float64(1500), input["max_tokens"])
}

func TestReplicatePolls(t *testing.T) {
	var polls atomic.Int32
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"id":"p2","status":"starting","urls":{"get":"` + server.URL + `/v1/predictions/p2"}}`))
			return
		}
		assert.Equal(t, "/v1/predictions/p2", r.URL.Path)
		if polls.Add(1) < 2 {
			_, _ = w.Write([]byte(`{"id":"p2","status":"processing","urls":{"get":"` + server.URL + `/v1/predictions/p2"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"p2","status":"succeeded","output":"{\"title\":\"Flan\"}"}`))
	}))
	defer server.Close()

	r, err := NewReplicate("r8_test", "openai/gpt-5-mini", server.URL)
	require.NoError(t, err)
	r.PollInterval = time.Millisecond

	out, err := r.Generate(context.Background(), "hello", Options{})
	require.NoError(t, err)
	assert.Equal(t, `{"title":"Flan"}`, out)
	assert.Equal(t, int32(2), polls.Load())
}

func TestReplicateFailedPrediction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"p3","status":"failed","error":"out of memory"}`))
	}))
	defer server.Close()

	r, err := NewReplicate("r8_test", "owner/model:abc123", server.URL)
	require.NoError(t, err)

	_, err = r.Generate(context.Background(), "hello", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of memory")
}

func TestReplicateHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Unauthenticated"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	r, err := NewReplicate("bad", "openai/gpt-5-mini", server.URL)
	require.NoError(t, err)

	_, err = r.Generate(context.Background(), "hello", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestAnthropicGenerate(t *testing.T) {
	var req map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &req)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    "msg_test123",
			"type":  "message",
			"role":  "assistant",
			"model": "claude-3-5-haiku-latest",
			"content": []map[string]any{
				{"type": "text", "text": `{"title": `},
				{"type": "text", "text": `"Quiche"}`},
			},
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 10, "output_tokens": 5},
		})
	}))
	defer server.Close()

	a, err := NewAnthropic("test-key", "claude-3-5-haiku-latest", server.URL, option.WithMaxRetries(0))
	require.NoError(t, err)

	out, err := a.Generate(context.Background(), "hello", Options{Temperature: 0.2, MaxTokens: 1500})
	require.NoError(t, err)

	assert.Equal(t, []string{`{"title": `, `"Quiche"}`}, out)
	assert.Equal(t, "claude-3-5-haiku-latest", req["model"])
	assert.Equal(t, float64(1500), req["max_tokens"])
	assert.InDelta(t, 0.2, req["temperature"], 1e-9)
}
