package engine

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/bote-dev/bote/pkg/api"
	"github.com/bote-dev/bote/pkg/provider"
)

// translateMessages converts host messages into the outbound wire
// format. It never fails: messages with nothing to send contribute
// zero outbound messages, so the result can be shorter than the input.
func translateMessages(messages []api.ChatMessage) []provider.ChatMessage {
	var out []provider.ChatMessage
	for _, msg := range messages {
		out = append(out, translateMessage(msg)...)
	}
	return out
}

// translateMessage converts one host message into zero or more outbound
// messages.
func translateMessage(msg api.ChatMessage) []provider.ChatMessage {
	if !msg.Content.IsParts() {
		return translateText(msg.Role, msg.Content.Text)
	}

	var text strings.Builder
	var toolCalls []provider.ChatToolCall
	var toolResults []api.ContentPart

	for _, part := range msg.Content.Parts {
		switch part.Type {
		case api.PartTypeText:
			text.WriteString(part.Value)
		case api.PartTypeToolCall:
			toolCalls = append(toolCalls, provider.ChatToolCall{
				ID:   part.CallID,
				Type: "function",
				Function: provider.ChatFunctionCall{
					Name:      part.Name,
					Arguments: serializeParameters(part.Parameters),
				},
			})
		case api.PartTypeToolResult:
			toolResults = append(toolResults, part)
		}
	}

	// Tool calls win over tool results when a message carries both:
	// the message describes what the assistant invoked, and any result
	// parts riding along are a caller mistake.
	if len(toolCalls) > 0 {
		return []provider.ChatMessage{{
			Role:      "assistant",
			Content:   text.String(),
			ToolCalls: toolCalls,
		}}
	}

	if len(toolResults) > 0 {
		out := make([]provider.ChatMessage, 0, len(toolResults))
		for _, part := range toolResults {
			out = append(out, provider.ChatMessage{
				Role:       "tool",
				ToolCallID: part.CallID,
				Content:    resolveToolResultText(part.Content),
			})
		}
		return out
	}

	return translateText(msg.Role, text.String())
}

// translateText emits one outbound message for plain text content.
// Whitespace-only text produces no message.
func translateText(role api.Role, text string) []provider.ChatMessage {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return []provider.ChatMessage{{Role: mapRole(role), Content: text}}
}

// mapRole maps host roles onto wire roles. Anything that is not the
// assistant degrades to user so the content still reaches the model.
func mapRole(role api.Role) string {
	if role == api.RoleAssistant {
		return "assistant"
	}
	return "user"
}

// serializeParameters renders tool-call parameters as the JSON string
// the wire format expects. Absent parameters become an empty object.
func serializeParameters(params json.RawMessage) string {
	if len(params) == 0 {
		return "{}"
	}
	return compactJSON(params)
}

// resolveToolResultText renders a tool result's content as plain text:
// value-bearing items of a sequence joined by newline, a single scalar
// stringified, anything else serialized whole.
func resolveToolResultText(content json.RawMessage) string {
	if len(content) == 0 {
		return ""
	}

	var v any
	if err := json.Unmarshal(content, &v); err != nil {
		return string(content)
	}

	switch val := v.(type) {
	case []any:
		var lines []string
		for _, item := range val {
			switch it := item.(type) {
			case string:
				lines = append(lines, it)
			case map[string]any:
				if s, ok := it["value"].(string); ok && s != "" {
					lines = append(lines, s)
				}
			}
		}
		if len(lines) > 0 {
			return strings.Join(lines, "\n")
		}
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	}

	return compactJSON(content)
}

// compactJSON re-serializes raw JSON without insignificant whitespace,
// returning the input unchanged if it does not compact.
func compactJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
