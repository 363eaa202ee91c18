package engine

import "github.com/bote-dev/bote/pkg/api"

// Defaults applied when the request leaves sampling options unset.
const (
	// DefaultMaxOutputTokens is the completion budget requested when the
	// caller does not set one. The model's own cap still applies.
	DefaultMaxOutputTokens = 4000

	// DefaultTemperature is the sampling temperature used when the
	// caller does not set one.
	DefaultTemperature = 0.7
)

// Config holds configuration for the chat engine.
type Config struct {
	// DefaultModel is used when the request omits the model field.
	// Empty string means a model is always required in the request.
	DefaultModel string

	// Validation limits applied to incoming requests. Zero values fall
	// back to api.DefaultValidationConfig.
	Validation api.ValidationConfig
}
