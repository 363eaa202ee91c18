package engine

import (
	"encoding/json"

	"github.com/bote-dev/bote/pkg/api"
	"github.com/bote-dev/bote/pkg/provider"
)

// defaultParametersSchema is attached to tools that declare no input
// schema; the upstream requires a parameters object on every tool.
var defaultParametersSchema = json.RawMessage(`{"type":"object","properties":{},"required":[]}`)

// buildRequest assembles the outbound streaming request from translated
// messages, the model's limits, and the caller's options. The requested
// completion budget is capped by the model and the temperature clamped
// to the range the upstream accepts.
func buildRequest(model api.Model, messages []provider.ChatMessage, opts api.RequestOptions) *provider.ChatCompletionRequest {
	maxTokens := DefaultMaxOutputTokens
	if opts.ModelOptions.MaxOutputTokens != nil {
		maxTokens = *opts.ModelOptions.MaxOutputTokens
	}
	if maxTokens > model.MaxOutputTokens {
		maxTokens = model.MaxOutputTokens
	}

	temperature := clamp(valueOr(opts.ModelOptions.Temperature, DefaultTemperature), 0, 2)

	req := &provider.ChatCompletionRequest{
		Model:       model.ID,
		Messages:    messages,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
		Stream:      true,
	}

	// Tools are attached only when the model can use them and the
	// caller supplied some; an empty tools list upsets some backends.
	if model.Capabilities.ToolCalling && len(opts.Tools) > 0 {
		req.Tools = make([]provider.ChatTool, 0, len(opts.Tools))
		for _, t := range opts.Tools {
			schema := t.InputSchema
			if len(schema) == 0 {
				schema = defaultParametersSchema
			}
			req.Tools = append(req.Tools, provider.ChatTool{
				Type: "function",
				Function: provider.ChatFunctionDef{
					Name:        t.Name,
					Description: t.Description,
					Parameters:  schema,
				},
			})
		}
		if opts.ToolMode == api.ToolModeRequired {
			req.ToolChoice = "required"
		} else {
			req.ToolChoice = "auto"
		}
	}

	return req
}

func valueOr(v *float64, fallback float64) float64 {
	if v != nil {
		return *v
	}
	return fallback
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
