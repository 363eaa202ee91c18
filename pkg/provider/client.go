package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bote-dev/bote/pkg/debug"
)

// DefaultTimeout bounds non-streaming upstream calls.
const DefaultTimeout = 120 * time.Second

// Client talks to an OpenAI-compatible chat completions endpoint over
// HTTPS with bearer authentication.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a client for the given base URL, which already
// includes any version prefix (e.g. https://api.v0.dev/v1).
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// Stream issues a streaming chat completion call. The returned channel
// carries reassembled events and is closed when the stream ends, fails,
// or ctx is cancelled. A non-nil error means the call never produced a
// stream.
func (c *Client) Stream(ctx context.Context, req *ChatCompletionRequest) (<-chan StreamEvent, error) {
	reqCopy := *req
	reqCopy.Stream = true

	body, err := json.Marshal(&reqCopy)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	debug.Log("provider", "issuing upstream request",
		"url", httpReq.URL.String(),
		"model", req.Model,
		"messages", len(req.Messages),
		"tools", len(req.Tools))
	if debug.TraceIsEnabled("provider") {
		debug.Raw("provider", string(body))
	}

	// The configured timeout would cut long streams short; the request
	// context governs the stream's lifetime instead.
	streamClient := &http.Client{Transport: c.httpClient.Transport}
	resp, err := streamClient.Do(httpReq)
	if err != nil {
		return nil, mapNetworkError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, mapHTTPError(resp)
	}

	ch := make(chan StreamEvent, 16)
	go func() {
		defer close(ch)
		defer resp.Body.Close()
		parseSSEStream(ctx, resp.Body, ch)
	}()

	return ch, nil
}

// Close releases idle connections held by the client. In-flight
// streams are unaffected.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
