// Package transport defines the handler interfaces and middleware chain for
// the bote HTTP/SSE transport layer.
//
// The transport layer bridges external clients and bote's streaming engine.
// It deserializes incoming requests into the protocol types defined in
// pkg/api, dispatches them for processing, and serializes exchange events
// back to the client over SSE.
//
// # Handler Interfaces
//
// Three handler interfaces define the contract between the transport layer
// and the engine:
//
//   - ChatStreamer handles the core streaming chat operation.
//   - ModelLister serves the fixed model catalog.
//   - TokenCounter answers token-count queries.
//
// The EventWriter interface abstracts the streaming output channel, allowing
// the engine to emit exchange events without knowing the underlying transport
// protocol.
//
// # Middleware
//
// The middleware chain wraps ChatStreamer with cross-cutting concerns.
// Built-in middleware provides panic recovery, request ID assignment
// (X-Request-ID), and structured logging via log/slog. HTTP-level metrics
// live in pkg/observability and wrap the full mux.
//
// # Cancellation
//
// The InFlightRegistry maps exchange IDs to cancel functions so a DELETE
// request can stop a stream that is still in progress. The HTTP adapter
// registers each exchange when its created event passes through and removes
// it when the stream ends.
package transport
