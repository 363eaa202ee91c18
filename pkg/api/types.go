package api

import (
	"encoding/json"
	"fmt"
)

// ---------------------------------------------------------------------------
// Messages and content parts
// ---------------------------------------------------------------------------

// Role represents the sender of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ChatMessage is one message of an exchange. Content holds either plain
// text or an ordered list of content parts. Messages are treated as
// immutable input.
type ChatMessage struct {
	Role    Role           `json:"role"`
	Content MessageContent `json:"content"`
}

// MessageContent is the content of a ChatMessage: either a plain text
// string or an ordered part list. The part form is in effect when Parts is
// non-nil, so an empty part list ([] on the wire) stays distinct from
// empty text.
type MessageContent struct {
	Text  string
	Parts []ContentPart
}

// TextContent returns a MessageContent holding plain text.
func TextContent(text string) MessageContent {
	return MessageContent{Text: text}
}

// PartsContent returns a MessageContent holding the given parts.
func PartsContent(parts ...ContentPart) MessageContent {
	if parts == nil {
		parts = []ContentPart{}
	}
	return MessageContent{Parts: parts}
}

// IsParts reports whether the content is a part list rather than plain text.
func (c MessageContent) IsParts() bool {
	return c.Parts != nil
}

// MarshalJSON serializes the content as a JSON string or a part array,
// matching the form it was built with.
func (c MessageContent) MarshalJSON() ([]byte, error) {
	if c.Parts != nil {
		return json.Marshal(c.Parts)
	}
	return json.Marshal(c.Text)
}

// UnmarshalJSON deserializes content from either a JSON string or a JSON
// array of parts. A JSON null becomes empty text.
func (c *MessageContent) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = MessageContent{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Text = s
		c.Parts = nil
		return nil
	}

	var parts []ContentPart
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("content must be a string or an array of parts: %w", err)
	}
	if parts == nil {
		parts = []ContentPart{}
	}
	c.Text = ""
	c.Parts = parts
	return nil
}

// PartType discriminates the variants of a ContentPart.
type PartType string

const (
	PartTypeText       PartType = "text"
	PartTypeToolCall   PartType = "tool_call"
	PartTypeToolResult PartType = "tool_result"
)

// ContentPart is a tagged union over the content variants. Type is the
// explicit discriminant; which payload fields are meaningful follows from
// it alone.
type ContentPart struct {
	Type PartType `json:"type"`

	// Value carries the text for PartTypeText.
	Value string `json:"value,omitempty"`

	// CallID links a tool call to its result. Set for PartTypeToolCall
	// and PartTypeToolResult.
	CallID string `json:"call_id,omitempty"`

	// Name and Parameters describe the invocation for PartTypeToolCall.
	Name       string          `json:"name,omitempty"`
	Parameters json.RawMessage `json:"parameters,omitempty"`

	// Content carries the result payload for PartTypeToolResult: an array
	// of value-bearing items, a scalar, or arbitrary JSON.
	Content json.RawMessage `json:"content,omitempty"`
}

// TextPart builds a text content part.
func TextPart(value string) ContentPart {
	return ContentPart{Type: PartTypeText, Value: value}
}

// ToolCallPart builds a tool-call content part.
func ToolCallPart(callID, name string, parameters json.RawMessage) ContentPart {
	return ContentPart{
		Type:       PartTypeToolCall,
		CallID:     callID,
		Name:       name,
		Parameters: parameters,
	}
}

// ToolResultPart builds a tool-result content part.
func ToolResultPart(callID string, content json.RawMessage) ContentPart {
	return ContentPart{
		Type:    PartTypeToolResult,
		CallID:  callID,
		Content: content,
	}
}

// ---------------------------------------------------------------------------
// Chat request
// ---------------------------------------------------------------------------

// ChatRequest represents the request body for one streamed chat exchange.
type ChatRequest struct {
	Model    string         `json:"model"`
	Messages []ChatMessage  `json:"messages"`
	Options  RequestOptions `json:"options"`
}

// RequestOptions carries the caller's sampling options, tool catalog, and
// tool-selection mode.
type RequestOptions struct {
	ModelOptions ModelOptions     `json:"model_options"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
	ToolMode     ToolMode         `json:"tool_mode,omitempty"`
}

// ModelOptions tunes sampling for one exchange. Unset fields fall back to
// the engine defaults.
type ModelOptions struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens *int     `json:"max_output_tokens,omitempty"`
}

// ToolMode selects how the model should treat the supplied tools.
type ToolMode string

const (
	// ToolModeAuto lets the model decide whether to call a tool.
	ToolModeAuto ToolMode = "auto"
	// ToolModeRequired forces the model to call a tool.
	ToolModeRequired ToolMode = "required"
)

// ToolDefinition declares one tool the model may call. InputSchema is a
// JSON Schema object describing the call parameters.
type ToolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema,omitempty"`
}

// ---------------------------------------------------------------------------
// Model catalog
// ---------------------------------------------------------------------------

// Model describes one entry of the model catalog.
type Model struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	Family          string            `json:"family"`
	Version         string            `json:"version"`
	MaxInputTokens  int               `json:"max_input_tokens"`
	MaxOutputTokens int               `json:"max_output_tokens"`
	Capabilities    ModelCapabilities `json:"capabilities"`
}

// ModelCapabilities flags what a model supports.
type ModelCapabilities struct {
	ToolCalling bool `json:"tool_calling"`
	Vision      bool `json:"vision"`
}

// ModelList is the response body of the model catalog query.
type ModelList struct {
	Object string  `json:"object"`
	Data   []Model `json:"data"`
}

// ---------------------------------------------------------------------------
// Token counting
// ---------------------------------------------------------------------------

// TokenCountRequest asks for the token count of plain text or of one
// message's flattened text content. Exactly one of Text and Message must
// be set.
type TokenCountRequest struct {
	Model   string       `json:"model"`
	Text    *string      `json:"text,omitempty"`
	Message *ChatMessage `json:"message,omitempty"`
}

// TokenCountResponse carries the computed token count.
type TokenCountResponse struct {
	Model string `json:"model"`
	Count int    `json:"count"`
}
