package integration

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/bote-dev/bote/pkg/api"
)

func TestInvalidJSON(t *testing.T) {
	body := bytes.NewReader([]byte(`{invalid json`))
	resp, err := http.Post(
		testEnv.BaseURL()+"/v1/chat",
		"application/json",
		body,
	)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		body := readBody(t, resp)
		t.Errorf("expected 400, got %d: %s", resp.StatusCode, body)
	}

	var errResp api.ErrorResponse
	decodeJSON(t, resp, &errResp)

	if errResp.Error == nil {
		t.Fatal("error object is nil")
	}
	if errResp.Error.Type != api.ErrorTypeInvalidRequest {
		t.Errorf("error.type = %q, want %q", errResp.Error.Type, api.ErrorTypeInvalidRequest)
	}
}

func TestUnknownModel(t *testing.T) {
	// Model lookup happens before the exchange is created, so the
	// client gets a plain JSON error instead of an SSE stream.
	reqBody := map[string]any{
		"model": "v0-9.9-xl",
		"messages": []map[string]any{
			{"role": "user", "content": "Hello"},
		},
	}

	resp := postJSON(t, testEnv.BaseURL()+"/v1/chat", reqBody)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		body := readBody(t, resp)
		t.Fatalf("expected 404, got %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var errResp api.ErrorResponse
	decodeJSON(t, resp, &errResp)

	if errResp.Error == nil {
		t.Fatal("error object is nil")
	}
	if errResp.Error.Type != api.ErrorTypeNotFound {
		t.Errorf("error.type = %q, want %q", errResp.Error.Type, api.ErrorTypeNotFound)
	}
	if !strings.Contains(errResp.Error.Message, "v0-9.9-xl") {
		t.Errorf("error.message = %q, want it to name the model", errResp.Error.Message)
	}
}

func TestEmptyMessagesReportedInStream(t *testing.T) {
	// An empty message list is a legal envelope: the exchange starts and
	// the "nothing to send" report arrives as a terminal text part.
	reqBody := map[string]any{
		"model":    "v0-1.5-md",
		"messages": []map[string]any{},
	}

	resp := postJSON(t, testEnv.BaseURL()+"/v1/chat", reqBody)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := readBody(t, resp)
		t.Fatalf("expected 200 SSE response, got %d: %s", resp.StatusCode, body)
	}

	events := parseSSEEvents(t, resp)
	if len(events) == 0 {
		t.Fatal("no SSE events received")
	}
	if events[0].Type != api.EventExchangeCreated {
		t.Errorf("first event = %q, want %q", events[0].Type, api.EventExchangeCreated)
	}

	text := accumulateText(events)
	if !strings.Contains(text, "nothing to send") {
		t.Errorf("report text %q does not explain the empty conversation", text)
	}

	if last := events[len(events)-1]; last.Type != api.EventExchangeCompleted {
		t.Errorf("terminal event = %q, want %q", last.Type, api.EventExchangeCompleted)
	}
}

func TestCancelInvalidExchangeID(t *testing.T) {
	resp := deleteURL(t, testEnv.BaseURL()+"/v1/chat/not-a-valid-id")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		body := readBody(t, resp)
		t.Errorf("expected 400, got %d: %s", resp.StatusCode, body)
	}
}

func TestCancelUnknownExchange(t *testing.T) {
	// Valid format but no such exchange in flight.
	resp := deleteURL(t, testEnv.BaseURL()+"/v1/chat/exch_aaaaaaaaaaaaaaaaaaaaaaaa")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		body := readBody(t, resp)
		t.Errorf("expected 404, got %d: %s", resp.StatusCode, body)
	}

	var errResp api.ErrorResponse
	decodeJSON(t, resp, &errResp)

	if errResp.Error == nil {
		t.Fatal("error object is nil")
	}
	if errResp.Error.Type != api.ErrorTypeNotFound {
		t.Errorf("error.type = %q, want %q", errResp.Error.Type, api.ErrorTypeNotFound)
	}
}

func TestUnsupportedContentType(t *testing.T) {
	body := bytes.NewReader([]byte(`model=test`))
	resp, err := http.Post(
		testEnv.BaseURL()+"/v1/chat",
		"application/x-www-form-urlencoded",
		body,
	)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnsupportedMediaType {
		body := readBody(t, resp)
		t.Errorf("expected 415, got %d: %s", resp.StatusCode, body)
	}
}

func TestUpstreamFailuresReportedInStream(t *testing.T) {
	// Upstream failures surface after the exchange is created, so they
	// arrive as explanatory text inside a normally completed stream.
	tests := []struct {
		name    string
		trigger string
		want    string
	}{
		{"auth rejected", "fail with 401", "rejected the configured credential"},
		{"rate limited", "fail with 429", "rate limiting requests"},
		{"server error", "fail with 500", "server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, testEnv.BaseURL()+"/v1/chat", chatRequest(tt.trigger))
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				body := readBody(t, resp)
				t.Fatalf("expected 200 SSE response, got %d: %s", resp.StatusCode, body)
			}

			events := parseSSEEvents(t, resp)
			if len(events) < 3 {
				t.Fatalf("expected created, part, completed; got %d events", len(events))
			}

			if events[0].Type != api.EventExchangeCreated {
				t.Errorf("first event = %q, want %q", events[0].Type, api.EventExchangeCreated)
			}

			text := accumulateText(events)
			if !strings.Contains(text, tt.want) {
				t.Errorf("report text %q does not contain %q", text, tt.want)
			}

			last := events[len(events)-1]
			if last.Type != api.EventExchangeCompleted {
				t.Errorf("terminal event = %q, want %q", last.Type, api.EventExchangeCompleted)
			}
			if last.Exchange == nil || last.Exchange.Status != api.ExchangeStatusCompleted {
				t.Errorf("terminal exchange = %+v, want status %q", last.Exchange, api.ExchangeStatusCompleted)
			}
		})
	}
}

func TestErrorResponseFormat(t *testing.T) {
	// Any error response should follow the ErrorResponse schema.
	resp := deleteURL(t, testEnv.BaseURL()+"/v1/chat/not-valid")
	defer resp.Body.Close()

	var raw map[string]any
	decodeJSON(t, resp, &raw)

	errObj, ok := raw["error"]
	if !ok {
		t.Fatal("response missing 'error' key")
	}

	errMap, ok := errObj.(map[string]any)
	if !ok {
		t.Fatal("'error' is not an object")
	}

	if _, ok := errMap["type"]; !ok {
		t.Error("error object missing 'type'")
	}
	if _, ok := errMap["message"]; !ok {
		t.Error("error object missing 'message'")
	}
}
