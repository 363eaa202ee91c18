package engine

import (
	"encoding/json"
	"testing"

	"github.com/bote-dev/bote/pkg/api"
	"github.com/bote-dev/bote/pkg/provider"
)

func testModel() api.Model {
	return api.Model{
		ID:              "v0-1.5-md",
		MaxOutputTokens: 64000,
		Capabilities:    api.ModelCapabilities{ToolCalling: true, Vision: true},
	}
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }

func messages() []provider.ChatMessage {
	return []provider.ChatMessage{{Role: "user", Content: "hi"}}
}

func TestBuildRequest_Defaults(t *testing.T) {
	req := buildRequest(testModel(), messages(), api.RequestOptions{})

	if req.Model != "v0-1.5-md" {
		t.Errorf("expected model %q, got %q", "v0-1.5-md", req.Model)
	}
	if !req.Stream {
		t.Error("expected stream to be true")
	}
	if req.MaxTokens == nil || *req.MaxTokens != DefaultMaxOutputTokens {
		t.Errorf("expected max_tokens %d, got %v", DefaultMaxOutputTokens, req.MaxTokens)
	}
	if req.Temperature == nil || *req.Temperature != DefaultTemperature {
		t.Errorf("expected temperature %v, got %v", DefaultTemperature, req.Temperature)
	}
	if req.Tools != nil {
		t.Errorf("expected no tools, got %d", len(req.Tools))
	}
	if req.ToolChoice != "" {
		t.Errorf("expected no tool_choice, got %q", req.ToolChoice)
	}
}

func TestBuildRequest_MaxTokensCappedByModel(t *testing.T) {
	opts := api.RequestOptions{
		ModelOptions: api.ModelOptions{MaxOutputTokens: intPtr(999999)},
	}

	req := buildRequest(testModel(), messages(), opts)

	if *req.MaxTokens != 64000 {
		t.Errorf("expected max_tokens capped to 64000, got %d", *req.MaxTokens)
	}
}

func TestBuildRequest_MaxTokensBelowCap(t *testing.T) {
	opts := api.RequestOptions{
		ModelOptions: api.ModelOptions{MaxOutputTokens: intPtr(1500)},
	}

	req := buildRequest(testModel(), messages(), opts)

	if *req.MaxTokens != 1500 {
		t.Errorf("expected max_tokens 1500, got %d", *req.MaxTokens)
	}
}

func TestBuildRequest_TemperatureClamped(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"above range", 5, 2},
		{"below range", -1, 0},
		{"in range", 1.3, 1.3},
		{"upper bound", 2, 2},
		{"lower bound", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := api.RequestOptions{
				ModelOptions: api.ModelOptions{Temperature: floatPtr(tt.in)},
			}
			req := buildRequest(testModel(), messages(), opts)
			if *req.Temperature != tt.want {
				t.Errorf("expected temperature %v, got %v", tt.want, *req.Temperature)
			}
		})
	}
}

func TestBuildRequest_Tools(t *testing.T) {
	schema := json.RawMessage(`{"type":"object","properties":{"city":{"type":"string"}}}`)
	opts := api.RequestOptions{
		Tools: []api.ToolDefinition{
			{Name: "get_weather", Description: "Get weather for a city", InputSchema: schema},
		},
	}

	req := buildRequest(testModel(), messages(), opts)

	if len(req.Tools) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(req.Tools))
	}
	tool := req.Tools[0]
	if tool.Type != "function" {
		t.Errorf("expected tool type %q, got %q", "function", tool.Type)
	}
	if tool.Function.Name != "get_weather" {
		t.Errorf("expected function name %q, got %q", "get_weather", tool.Function.Name)
	}
	if string(tool.Function.Parameters) != string(schema) {
		t.Errorf("expected schema passed through, got %s", tool.Function.Parameters)
	}
	if req.ToolChoice != "auto" {
		t.Errorf("expected tool_choice %q, got %q", "auto", req.ToolChoice)
	}
}

func TestBuildRequest_ToolWithoutSchemaGetsDefault(t *testing.T) {
	opts := api.RequestOptions{
		Tools: []api.ToolDefinition{{Name: "list_files"}},
	}

	req := buildRequest(testModel(), messages(), opts)

	if len(req.Tools) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(req.Tools))
	}
	var schema struct {
		Type       string         `json:"type"`
		Properties map[string]any `json:"properties"`
		Required   []string       `json:"required"`
	}
	if err := json.Unmarshal(req.Tools[0].Function.Parameters, &schema); err != nil {
		t.Fatalf("default schema is not valid JSON: %v", err)
	}
	if schema.Type != "object" {
		t.Errorf("expected schema type %q, got %q", "object", schema.Type)
	}
	if len(schema.Properties) != 0 {
		t.Errorf("expected no properties, got %v", schema.Properties)
	}
	if len(schema.Required) != 0 {
		t.Errorf("expected no required fields, got %v", schema.Required)
	}
}

func TestBuildRequest_ToolModeRequired(t *testing.T) {
	opts := api.RequestOptions{
		Tools:    []api.ToolDefinition{{Name: "get_weather"}},
		ToolMode: api.ToolModeRequired,
	}

	req := buildRequest(testModel(), messages(), opts)

	if req.ToolChoice != "required" {
		t.Errorf("expected tool_choice %q, got %q", "required", req.ToolChoice)
	}
}

func TestBuildRequest_ToolsOmittedWithoutCapability(t *testing.T) {
	model := testModel()
	model.Capabilities.ToolCalling = false
	opts := api.RequestOptions{
		Tools:    []api.ToolDefinition{{Name: "get_weather"}},
		ToolMode: api.ToolModeRequired,
	}

	req := buildRequest(model, messages(), opts)

	if req.Tools != nil {
		t.Errorf("expected no tools for non-tool-calling model, got %d", len(req.Tools))
	}
	if req.ToolChoice != "" {
		t.Errorf("expected no tool_choice, got %q", req.ToolChoice)
	}
}

func TestBuildRequest_ToolsOmittedWhenCatalogEmpty(t *testing.T) {
	req := buildRequest(testModel(), messages(), api.RequestOptions{
		ToolMode: api.ToolModeRequired,
	})

	if req.Tools != nil {
		t.Errorf("expected no tools, got %d", len(req.Tools))
	}
	if req.ToolChoice != "" {
		t.Errorf("expected no tool_choice, got %q", req.ToolChoice)
	}
}

func TestBuildRequest_SerializedShape(t *testing.T) {
	opts := api.RequestOptions{
		ModelOptions: api.ModelOptions{
			Temperature:     floatPtr(0.5),
			MaxOutputTokens: intPtr(100),
		},
	}

	data, err := json.Marshal(buildRequest(testModel(), messages(), opts))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var wire map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if wire["stream"] != true {
		t.Error("expected stream field in wire request")
	}
	if wire["max_tokens"] != float64(100) {
		t.Errorf("expected max_tokens 100, got %v", wire["max_tokens"])
	}
	if wire["temperature"] != 0.5 {
		t.Errorf("expected temperature 0.5, got %v", wire["temperature"])
	}
	if _, ok := wire["tools"]; ok {
		t.Error("expected tools absent from wire request")
	}
	if _, ok := wire["tool_choice"]; ok {
		t.Error("expected tool_choice absent from wire request")
	}
}
