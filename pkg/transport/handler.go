package transport

import (
	"context"

	"github.com/bote-dev/bote/pkg/api"
)

// ChatStreamer handles the core streaming chat operation. The
// implementation receives a request and writes exchange events to the
// EventWriter until the exchange reaches a terminal state. A non-nil
// error signals an envelope failure detected before the first event was
// written; once streaming has started, failures are reported inside the
// stream instead.
type ChatStreamer interface {
	StreamChat(ctx context.Context, req *api.ChatRequest, w EventWriter) error
}

// ChatStreamerFunc is an adapter that allows using an ordinary function
// as a ChatStreamer.
type ChatStreamerFunc func(ctx context.Context, req *api.ChatRequest, w EventWriter) error

// StreamChat calls f(ctx, req, w).
func (f ChatStreamerFunc) StreamChat(ctx context.Context, req *api.ChatRequest, w EventWriter) error {
	return f(ctx, req, w)
}

// ModelLister serves the fixed model catalog.
type ModelLister interface {
	ListModels(ctx context.Context) api.ModelList
}

// TokenCounter answers token-count queries for budget estimation.
type TokenCounter interface {
	CountTokens(ctx context.Context, req *api.TokenCountRequest) (*api.TokenCountResponse, error)
}

// EventWriter abstracts the streaming output channel for one exchange.
// The transport layer creates an EventWriter per request and hands it to
// the handler.
//
// WriteEvent returns an error when called after a terminal event
// (exchange.completed or exchange.cancelled) and when the event would
// violate the exchange lifecycle.
type EventWriter interface {
	// WriteEvent sends a single exchange event.
	WriteEvent(ctx context.Context, event api.StreamEvent) error

	// Flush ensures buffered data is sent to the client. Returns an
	// error if the client has disconnected.
	Flush() error
}
