// Package provider implements the upstream side of the bridge: the
// OpenAI-compatible chat completions client and the SSE stream
// reassembler. Text deltas are surfaced as they arrive; tool-call
// fragments are buffered per declared index and emitted as completed
// calls only when the stream finishes with a tool_calls reason. The
// engine consumes the resulting StreamEvent channel and never sees
// wire-level chunk details.
package provider
