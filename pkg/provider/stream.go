package provider

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/bote-dev/bote/pkg/debug"
	"github.com/bote-dev/bote/pkg/observability"
)

// PendingToolCall accumulates tool-call fragments for one declared
// index until the finish chunk drains them. ID and Name keep the last
// non-empty value seen; Args grows by appending every fragment.
type PendingToolCall struct {
	ID   string
	Name string
	Args strings.Builder
}

// parseSSEStream reads Server-Sent Events from body and sends
// StreamEvents to ch. The caller owns ch and closes it after this
// returns. Cancellation is checked at every chunk boundary, and nothing
// is consumed after the finish chunk, so buffered tool calls from an
// abandoned stream are never emitted.
func parseSSEStream(ctx context.Context, body io.Reader, ch chan<- StreamEvent) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	pending := make(map[int]*PendingToolCall)

	for scanner.Scan() {
		if ctx.Err() != nil {
			abandonToolCalls(pending, "cancelled")
			return
		}

		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			// Skip empty lines, comments, and other SSE fields.
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")

		if payload == "[DONE]" {
			return
		}

		var chunk ChatCompletionChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			slog.Warn("skipping malformed SSE chunk",
				"error", err,
				"data", debug.Truncate(payload, 200))
			continue
		}

		if finished := handleChunk(&chunk, pending, ch); finished {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			abandonToolCalls(pending, "cancelled")
			return
		}
		ch <- StreamEvent{
			Type: StreamEventError,
			Err:  fmt.Errorf("connection lost while reading stream: %w", err),
		}
	}
}

// handleChunk translates one parsed chunk into stream events. It
// returns true once a finish reason has been seen.
func handleChunk(chunk *ChatCompletionChunk, pending map[int]*PendingToolCall, ch chan<- StreamEvent) bool {
	if len(chunk.Choices) == 0 {
		// Some backends send a trailing chunk carrying only usage.
		if chunk.Usage != nil {
			logUsage(chunk.Usage)
		}
		return false
	}

	choice := chunk.Choices[0]

	// Buffer tool-call fragments before anything else so fragments
	// riding on the finish chunk itself are not lost.
	for _, tc := range choice.Delta.ToolCalls {
		buf, ok := pending[tc.Index]
		if !ok {
			buf = &PendingToolCall{}
			pending[tc.Index] = buf
		}
		if tc.ID != "" {
			buf.ID = tc.ID
		}
		if tc.Function.Name != "" {
			buf.Name = tc.Function.Name
		}
		buf.Args.WriteString(tc.Function.Arguments)
	}

	if choice.Delta.Content != nil && *choice.Delta.Content != "" {
		ch <- StreamEvent{Type: StreamEventText, Index: 0, Delta: *choice.Delta.Content}
	}

	if choice.FinishReason != nil {
		reason := *choice.FinishReason
		if reason == "tool_calls" {
			flushToolCalls(pending, ch)
		} else {
			abandonToolCalls(pending, reason)
		}
		if chunk.Usage != nil {
			logUsage(chunk.Usage)
		}
		ch <- StreamEvent{Type: StreamEventDone, FinishReason: reason}
		return true
	}

	return false
}

// flushToolCalls drains buffered tool calls in ascending index order.
// A call needs an id, a name, and a non-empty argument buffer to be
// emitted; anything less is dropped. Arguments that fail to parse as
// JSON fall back to a text rendering so the content is not lost.
func flushToolCalls(pending map[int]*PendingToolCall, ch chan<- StreamEvent) {
	indexes := make([]int, 0, len(pending))
	for idx := range pending {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	for _, idx := range indexes {
		buf := pending[idx]
		delete(pending, idx)

		args := buf.Args.String()
		if buf.ID == "" || buf.Name == "" || args == "" {
			slog.Warn("dropping incomplete tool call",
				"index", idx,
				"id", buf.ID,
				"name", buf.Name,
				"buffered_bytes", len(args))
			observability.ToolCallsTotal.WithLabelValues("dropped").Inc()
			continue
		}

		if !json.Valid([]byte(args)) {
			slog.Warn("tool call arguments are not valid JSON, falling back to text",
				"index", idx,
				"name", buf.Name,
				"arguments", debug.Truncate(args, 200))
			observability.ToolCallsTotal.WithLabelValues("fallback_text").Inc()
			ch <- StreamEvent{
				Type:  StreamEventText,
				Index: idx,
				Delta: fmt.Sprintf("%s(%s)", buf.Name, args),
			}
			continue
		}

		observability.ToolCallsTotal.WithLabelValues("completed").Inc()
		ch <- StreamEvent{
			Type:  StreamEventToolCall,
			Index: idx,
			ToolCall: &CompletedToolCall{
				CallID:     buf.ID,
				Name:       buf.Name,
				Parameters: json.RawMessage(args),
			},
		}
	}
}

// abandonToolCalls logs and discards buffered tool calls that will
// never complete because the stream ended for the given reason.
func abandonToolCalls(pending map[int]*PendingToolCall, reason string) {
	if len(pending) == 0 {
		return
	}
	slog.Warn("abandoning buffered tool calls",
		"count", len(pending),
		"reason", reason)
	observability.ToolCallsTotal.WithLabelValues("abandoned").Add(float64(len(pending)))
	clear(pending)
}

func logUsage(usage *ChatUsage) {
	debug.Log("provider", "usage reported by backend",
		"prompt_tokens", usage.PromptTokens,
		"completion_tokens", usage.CompletionTokens,
		"total_tokens", usage.TotalTokens)
}
