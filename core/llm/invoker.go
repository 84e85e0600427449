package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/gaurav-prasanna/recipepipe/core"
	"github.com/gaurav-prasanna/recipepipe/core/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

const promptTemplate = `You are a recipe extraction assistant.

From the following webpage text, extract a clean structured recipe.
Return ONLY valid JSON in this format:

{
  "title": "",
  "description": "",
  "image": "",
  "category": "",
  "prepTime": "",
  "cookTime": "",
  "totalTime": "",
  "servings": "",
  "ingredients": [
    {
      "quantity": "",
      "unit": "",
      "name": ""
    }
  ],
  "body": ""
}

If information is missing, leave the fields empty. Never hallucinate.

TEXT TO PARSE:
{{.Text}}
`

var prompt = template.Must(template.New("extract").Parse(promptTemplate))

var invokerMetrics struct {
	duration metric.Float64Histogram
}

var invokerMetricsOnce sync.Once

func initInvokerMetrics() {
	m := telemetry.Meter("github.com/gaurav-prasanna/recipepipe/llm")
	invokerMetrics.duration, _ = m.Float64Histogram("recipepipe.llm.request.duration",
		metric.WithDescription("Model request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
}

// Invoker turns page text into a raw recipe with a single model call.
type Invoker struct {
	model  Model
	opts   Options
	logger *slog.Logger
}

// NewInvoker creates an Invoker. A nil logger means slog.Default().
func NewInvoker(model Model, opts Options, logger *slog.Logger) *Invoker {
	if logger == nil {
		logger = slog.Default()
	}
	invokerMetricsOnce.Do(initInvokerMetrics)
	return &Invoker{model: model, opts: opts, logger: logger}
}

// BuildPrompt embeds text in the extraction instructions.
func BuildPrompt(text string) (string, error) {
	var buf bytes.Buffer
	if err := prompt.Execute(&buf, struct{ Text string }{text}); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return buf.String(), nil
}

// Extract prompts the model once and recovers the JSON object from its
// reply. No retry is attempted.
func (i *Invoker) Extract(ctx context.Context, text string) (core.RawRecipe, error) {
	p, err := BuildPrompt(text)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.Tracer("github.com/gaurav-prasanna/recipepipe/llm").Start(ctx, "llm.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("recipepipe.llm.model", i.model.Name()),
		attribute.Int("recipepipe.llm.prompt_length", len(p)),
	)

	t0 := time.Now()
	out, err := i.model.Generate(ctx, p, i.opts)
	ms := float64(time.Since(t0).Milliseconds())
	if invokerMetrics.duration != nil {
		invokerMetrics.duration.Record(ctx, ms, metric.WithAttributes(attribute.String("recipepipe.llm.model", i.model.Name())))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("model %s: %w", i.model.Name(), err)
	}

	raw := Coerce(out)
	i.logger.Debug("model replied", "model", i.model.Name(), "duration_ms", ms, "output_length", len(raw))

	recipe, err := RecoverJSON(raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return recipe, nil
}

// Coerce reduces a model output to one string: strings pass through,
// fragments are concatenated in order, and other values are JSON-encoded.
func Coerce(out any) string {
	switch v := out.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, "")
	case []any:
		var b strings.Builder
		for _, el := range v {
			if s, ok := el.(string); ok {
				b.WriteString(s)
				continue
			}
			b.WriteString(Coerce(el))
		}
		return b.String()
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}

// RecoverJSON parses the span between the first '{' and the last '}' of s.
func RecoverJSON(s string) (core.RawRecipe, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 {
		return nil, core.NewExtractionError("no JSON detected")
	}

	var span string
	if end >= start {
		span = s[start : end+1]
	}

	var raw core.RawRecipe
	if err := json.Unmarshal([]byte(span), &raw); err != nil {
		return nil, core.NewExtractionError("invalid JSON: %s", err.Error())
	}
	if raw == nil {
		raw = core.RawRecipe{}
	}
	return raw, nil
}
