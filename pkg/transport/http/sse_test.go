package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bote-dev/bote/pkg/api"
)

// createdEvent builds an exchange.created event for the given ID.
func createdEvent(id string) api.StreamEvent {
	return api.StreamEvent{
		Type:     api.EventExchangeCreated,
		Exchange: &api.Exchange{ID: id, Model: "v0-1.5-md", Status: api.ExchangeStatusStreaming},
	}
}

// partEvent builds an exchange.part event with a text part.
func partEvent(index int, text string) api.StreamEvent {
	part := api.TextPart(text)
	return api.StreamEvent{Type: api.EventExchangePart, Index: &index, Part: &part}
}

// terminalEvent builds a terminal lifecycle event.
func terminalEvent(typ api.StreamEventType, id string) api.StreamEvent {
	return api.StreamEvent{
		Type:     typ,
		Exchange: &api.Exchange{ID: id, Model: "v0-1.5-md", Status: typ.Status()},
	}
}

func TestWriteEventSSEFormat(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newSSEEventWriter(rec, nil)

	if err := rw.WriteEvent(context.Background(), createdEvent("exch_test1")); err != nil {
		t.Fatalf("WriteEvent(created) error: %v", err)
	}
	if err := rw.WriteEvent(context.Background(), partEvent(0, "Hello")); err != nil {
		t.Fatalf("WriteEvent(part) error: %v", err)
	}

	body := rec.Body.String()

	// Check SSE format: event: {type}\ndata: {json}\n\n
	if !strings.Contains(body, "event: exchange.created\n") {
		t.Errorf("missing created event line in:\n%s", body)
	}
	if !strings.Contains(body, "event: exchange.part\n") {
		t.Errorf("missing part event line in:\n%s", body)
	}

	// Extract and parse the part event JSON.
	var found bool
	for _, line := range strings.Split(body, "\n") {
		jsonStr, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		var got api.StreamEvent
		if err := json.Unmarshal([]byte(jsonStr), &got); err != nil {
			t.Fatalf("failed to parse event JSON: %v", err)
		}
		if got.Type != api.EventExchangePart {
			continue
		}
		found = true
		if got.Part == nil || got.Part.Value != "Hello" {
			t.Errorf("part = %+v, want text %q", got.Part, "Hello")
		}
		if got.Index == nil || *got.Index != 0 {
			t.Errorf("index = %v, want 0", got.Index)
		}
	}
	if !found {
		t.Errorf("no part event data line in:\n%s", body)
	}
}

func TestWriteEventSSEHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newSSEEventWriter(rec, nil)

	rw.WriteEvent(context.Background(), createdEvent("exch_test1"))

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want %q", ct, "text/event-stream")
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("Cache-Control = %q, want %q", cc, "no-cache")
	}
	if conn := rec.Header().Get("Connection"); conn != "keep-alive" {
		t.Errorf("Connection = %q, want %q", conn, "keep-alive")
	}
}

func TestWriteEventTerminalSendsDone(t *testing.T) {
	tests := []struct {
		name      string
		eventType api.StreamEventType
	}{
		{"completed", api.EventExchangeCompleted},
		{"cancelled", api.EventExchangeCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			rw := newSSEEventWriter(rec, nil)

			if err := rw.WriteEvent(context.Background(), createdEvent("exch_test1")); err != nil {
				t.Fatalf("WriteEvent(created) error: %v", err)
			}
			if err := rw.WriteEvent(context.Background(), terminalEvent(tt.eventType, "exch_test1")); err != nil {
				t.Fatalf("WriteEvent(terminal) error: %v", err)
			}

			body := rec.Body.String()
			if !strings.Contains(body, "data: [DONE]\n") {
				t.Errorf("missing [DONE] sentinel in:\n%s", body)
			}
		})
	}
}

func TestWriteEventAfterTerminalReturnsError(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newSSEEventWriter(rec, nil)

	rw.WriteEvent(context.Background(), createdEvent("exch_test1"))
	rw.WriteEvent(context.Background(), terminalEvent(api.EventExchangeCompleted, "exch_test1"))

	// Attempt another write.
	err := rw.WriteEvent(context.Background(), partEvent(0, "should fail"))
	if err == nil {
		t.Error("expected error after terminal event, got nil")
	}
}

func TestWriteEventPartBeforeCreatedReturnsError(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newSSEEventWriter(rec, nil)

	err := rw.WriteEvent(context.Background(), partEvent(0, "too early"))
	if err == nil {
		t.Error("expected error for part event before exchange.created, got nil")
	}
	if rec.Body.Len() != 0 {
		t.Errorf("nothing should have been written, got:\n%s", rec.Body.String())
	}
}

func TestWriteEventTerminalBeforeCreatedReturnsError(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newSSEEventWriter(rec, nil)

	err := rw.WriteEvent(context.Background(), terminalEvent(api.EventExchangeCompleted, "exch_test1"))
	if err == nil {
		t.Error("expected error for terminal event before exchange.created, got nil")
	}
}

func TestWriteEventSecondCreatedReturnsError(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newSSEEventWriter(rec, nil)

	if err := rw.WriteEvent(context.Background(), createdEvent("exch_first")); err != nil {
		t.Fatalf("WriteEvent(created) error: %v", err)
	}

	err := rw.WriteEvent(context.Background(), createdEvent("exch_second"))
	if err == nil {
		t.Error("expected error for duplicate exchange.created, got nil")
	}
}

func TestOnExchangeCreatedCallback(t *testing.T) {
	rec := httptest.NewRecorder()
	var capturedID string

	rw := newSSEEventWriter(rec, func(id string) {
		capturedID = id
	})

	rw.WriteEvent(context.Background(), createdEvent("exch_test123"))

	if capturedID != "exch_test123" {
		t.Errorf("captured ID = %q, want %q", capturedID, "exch_test123")
	}
}
