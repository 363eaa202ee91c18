package provider

import "encoding/json"

// StreamEventType classifies a reassembled streaming event.
type StreamEventType int

const (
	StreamEventText     StreamEventType = iota // Incremental text content
	StreamEventToolCall                        // A fully reassembled tool call
	StreamEventDone                            // Stream finished
	StreamEventError                           // Stream failed mid-flight
)

// String returns the event type name for logs.
func (t StreamEventType) String() string {
	switch t {
	case StreamEventText:
		return "text"
	case StreamEventToolCall:
		return "tool_call"
	case StreamEventDone:
		return "done"
	case StreamEventError:
		return "error"
	default:
		return "unknown"
	}
}

// StreamEvent is a single event produced by the stream reassembler.
// Text deltas all carry index 0; tool-call events and their text
// fallbacks carry the index the backend declared for the call.
type StreamEvent struct {
	// Type indicates what kind of event this is.
	Type StreamEventType

	// Index is the content index the event belongs to.
	Index int

	// Delta contains incremental text for text events.
	Delta string

	// ToolCall is populated on tool-call events.
	ToolCall *CompletedToolCall

	// FinishReason is populated on done events.
	FinishReason string

	// Err is populated on error events.
	Err error
}

// CompletedToolCall is a tool invocation whose identifier, name, and
// arguments all arrived and whose arguments parsed as JSON.
type CompletedToolCall struct {
	CallID     string
	Name       string
	Parameters json.RawMessage
}
