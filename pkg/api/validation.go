package api

import "fmt"

// ValidationConfig holds configurable limits for request validation.
type ValidationConfig struct {
	MaxMessages int
	MaxTools    int
}

// DefaultValidationConfig returns a ValidationConfig with sensible defaults.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		MaxMessages: 1000,
		MaxTools:    128,
	}
}

// ValidateChatRequest checks a ChatRequest envelope for validity. It returns
// an *APIError describing the first validation failure, or nil if the
// request is valid.
//
// Only the envelope is validated here. An empty message list is legal: the
// exchange starts and reports "nothing to send" as a terminal text part.
// Out-of-range sampling values are clamped during request building rather
// than rejected, and unknown message roles map to "user".
func ValidateChatRequest(req *ChatRequest, cfg ValidationConfig) *APIError {
	if req.Model == "" {
		return NewInvalidRequestError("model", "model is required")
	}

	if cfg.MaxMessages > 0 && len(req.Messages) > cfg.MaxMessages {
		return NewInvalidRequestError("messages",
			fmt.Sprintf("messages exceeds maximum of %d", cfg.MaxMessages))
	}

	if cfg.MaxTools > 0 && len(req.Options.Tools) > cfg.MaxTools {
		return NewInvalidRequestError("tools",
			fmt.Sprintf("tools exceeds maximum of %d", cfg.MaxTools))
	}

	for i, tool := range req.Options.Tools {
		if tool.Name == "" {
			return NewInvalidRequestError("tools",
				fmt.Sprintf("tools[%d]: name is required", i))
		}
	}

	switch req.Options.ToolMode {
	case "", ToolModeAuto, ToolModeRequired:
	default:
		return NewInvalidRequestError("tool_mode",
			fmt.Sprintf("tool_mode must be %q or %q", ToolModeAuto, ToolModeRequired))
	}

	if v := req.Options.ModelOptions.MaxOutputTokens; v != nil && *v <= 0 {
		return NewInvalidRequestError("max_output_tokens", "max_output_tokens must be positive")
	}

	return nil
}

// ValidateTokenCountRequest checks a TokenCountRequest for validity.
func ValidateTokenCountRequest(req *TokenCountRequest) *APIError {
	if req.Model == "" {
		return NewInvalidRequestError("model", "model is required")
	}

	if req.Text == nil && req.Message == nil {
		return NewInvalidRequestError("text", "one of text or message is required")
	}
	if req.Text != nil && req.Message != nil {
		return NewInvalidRequestError("text", "text and message are mutually exclusive")
	}

	return nil
}
