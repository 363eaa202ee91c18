package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/bote-dev/bote/pkg/api"
	"github.com/bote-dev/bote/pkg/transport"
)

// writerState tracks the state of an SSE event writer.
type writerState int

const (
	writerIdle      writerState = iota // Initial state, no writes yet
	writerStreaming                    // WriteEvent has been called at least once
	writerCompleted                    // Terminal event sent
)

// sseEventWriter implements transport.EventWriter for HTTP/SSE streams.
// It enforces the exchange lifecycle: the first event must be
// exchange.created, part events may only follow while streaming, and a
// terminal event closes the stream with a [DONE] marker.
type sseEventWriter struct {
	w  http.ResponseWriter
	rc *http.ResponseController

	mu     sync.Mutex
	state  writerState
	status api.ExchangeStatus

	// onExchangeCreated is called when the exchange.created event is
	// written, providing the exchange ID for in-flight registration.
	onExchangeCreated func(id string)
}

var _ transport.EventWriter = (*sseEventWriter)(nil)

// newSSEEventWriter creates an EventWriter wrapping an http.ResponseWriter.
// The onCreated callback is called with the exchange ID when the
// exchange.created event is written (may be nil if not needed).
func newSSEEventWriter(w http.ResponseWriter, onCreated func(id string)) *sseEventWriter {
	return &sseEventWriter{
		w:                 w,
		rc:                http.NewResponseController(w),
		onExchangeCreated: onCreated,
	}
}

// WriteEvent sends a single SSE event. The event is formatted as:
//
//	event: {type}\n
//	data: {json}\n
//	\n
//
// After a terminal event, it also sends:
//
//	data: [DONE]\n
//	\n
//
// WriteEvent deliberately does not check ctx: a cancelled exchange still
// needs its exchange.cancelled event delivered to the client.
func (s *sseEventWriter) WriteEvent(_ context.Context, event api.StreamEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == writerCompleted {
		return errors.New("cannot write event: stream is completed")
	}

	// Enforce the lifecycle. Lifecycle events must follow a valid status
	// transition; part events are only allowed while streaming.
	if next := event.Type.Status(); next != "" {
		if err := api.ValidateExchangeTransition(s.status, next); err != nil {
			return err
		}
		s.status = next
	} else if s.status != api.ExchangeStatusStreaming {
		return errors.New("cannot write part event before exchange.created")
	}

	// First event: set SSE headers.
	if s.state == writerIdle {
		s.w.Header().Set("Content-Type", "text/event-stream")
		s.w.Header().Set("Cache-Control", "no-cache")
		s.w.Header().Set("Connection", "keep-alive")
		s.state = writerStreaming
	}

	// Intercept exchange.created to extract the exchange ID.
	if event.Type == api.EventExchangeCreated && event.Exchange != nil && s.onExchangeCreated != nil {
		s.onExchangeCreated(event.Exchange.ID)
		s.onExchangeCreated = nil // Only call once.
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event.Type, data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	// Flush immediately.
	if err := s.rc.Flush(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}

	// If this was a terminal event, send [DONE] and mark completed.
	if s.status.IsTerminal() {
		if _, err := fmt.Fprint(s.w, "data: [DONE]\n\n"); err != nil {
			return fmt.Errorf("failed to write [DONE]: %w", err)
		}
		if err := s.rc.Flush(); err != nil {
			return fmt.Errorf("failed to flush [DONE]: %w", err)
		}
		s.state = writerCompleted
	}

	return nil
}

// Flush ensures buffered data is sent to the client.
func (s *sseEventWriter) Flush() error {
	return s.rc.Flush()
}

// hasStartedStreaming returns true if at least one SSE event has been written.
func (s *sseEventWriter) hasStartedStreaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != writerIdle
}
