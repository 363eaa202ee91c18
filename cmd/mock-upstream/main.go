// Command mock-upstream runs a deterministic v0 chat completions server
// for conformance testing. Responses are selected by inspecting the last
// user message, so test drivers can trigger text streams, fragmented
// tool calls, upstream failures, and truncated streams on demand.
//
// Scenario triggers in the last user message:
//
//	"count from 1 to 5"  - numbered text stream
//	"fail with 401"      - invalid key error before streaming
//	"fail with 429"      - rate limit error before streaming
//	"fail with 500"      - server error before streaming
//	"truncate"           - stream ends without finish chunk or [DONE]
//	"slow"               - 100ms pause between chunks
//
// Declaring tools switches the stream to fragmented tool-call chunks;
// mentioning "both" with two or more tools declared emits two calls.
//
// Configuration:
//
//	MOCK_PORT    - Listen port (default: 9090)
//	MOCK_API_KEY - When set, requests must carry this bearer key
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

func main() {
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "9090"
	}

	srv := &http.Server{Addr: ":" + port, Handler: newMux(os.Getenv("MOCK_API_KEY"))}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock upstream starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("mock upstream failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock upstream shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

func newMux(apiKey string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat/completions", requireKey(apiKey, handleChatCompletions))
	mux.HandleFunc("GET /v1/models", handleModels)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	return mux
}

func requireKey(apiKey string, next http.HandlerFunc) http.HandlerFunc {
	if apiKey == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+apiKey {
			writeError(w, http.StatusUnauthorized, "invalid_request_error", "invalid_api_key", "Invalid API key provided")
			return
		}
		next(w, r)
	}
}

// --- Request types ---

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Tools    []chatTool    `json:"tools,omitempty"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatTool struct {
	Type     string `json:"type"`
	Function struct {
		Name string `json:"name"`
	} `json:"function"`
}

// --- Handler ---

func handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_error", nil, "invalid request body")
		return
	}
	if !req.Stream {
		writeError(w, http.StatusBadRequest, "invalid_request_error", nil, "this mock only supports stream=true")
		return
	}

	model := req.Model
	if model == "" {
		model = "v0-1.5-md"
	}
	prompt := strings.ToLower(lastUserMessage(&req))

	switch {
	case strings.Contains(prompt, "fail with 401"):
		writeError(w, http.StatusUnauthorized, "invalid_request_error", "invalid_api_key", "Invalid API key provided")
	case strings.Contains(prompt, "fail with 429"):
		writeError(w, http.StatusTooManyRequests, "rate_limit_error", "rate_limit_exceeded", "Rate limit reached for requests")
	case strings.Contains(prompt, "fail with 500"):
		writeError(w, http.StatusInternalServerError, "server_error", nil, "The server had an error processing your request")
	case len(req.Tools) > 0:
		streamToolCalls(w, model, &req, prompt)
	default:
		streamText(w, model, prompt)
	}
}

func writeError(w http.ResponseWriter, status int, errType string, code any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": message,
			"type":    errType,
			"code":    code,
		},
	})
}

// --- Streaming ---

type streamer struct {
	w       http.ResponseWriter
	flusher http.Flusher
	model   string
	delay   time.Duration
}

func newStreamer(w http.ResponseWriter, model string, slow bool) (*streamer, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return nil, false
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s := &streamer{w: w, flusher: flusher, model: model}
	if slow {
		s.delay = 100 * time.Millisecond
	}
	return s, true
}

func (s *streamer) chunk(choice map[string]any, usage map[string]any) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	payload := map[string]any{
		"id":      "chatcmpl-mock",
		"object":  "chat.completion.chunk",
		"model":   s.model,
		"choices": []any{choice},
	}
	if usage != nil {
		payload["usage"] = usage
	}
	data, _ := json.Marshal(payload)
	fmt.Fprintf(s.w, "data: %s\n\n", data)
	s.flusher.Flush()
}

func (s *streamer) delta(delta map[string]any) {
	s.chunk(map[string]any{"index": 0, "delta": delta, "finish_reason": nil}, nil)
}

func (s *streamer) finish(reason string, completionTokens int) {
	s.chunk(
		map[string]any{"index": 0, "delta": map[string]any{}, "finish_reason": reason},
		map[string]any{
			"prompt_tokens":     10,
			"completion_tokens": completionTokens,
			"total_tokens":      10 + completionTokens,
		},
	)
	fmt.Fprintf(s.w, "data: [DONE]\n\n")
	s.flusher.Flush()
}

func streamText(w http.ResponseWriter, model, prompt string) {
	s, ok := newStreamer(w, model, strings.Contains(prompt, "slow"))
	if !ok {
		return
	}

	tokens := []string{"Hello", ", ", "nice", " ", "day", "!"}
	if strings.Contains(prompt, "count from 1 to 5") {
		tokens = []string{"1", ", ", "2", ", ", "3", ", ", "4", ", ", "5"}
	}

	s.delta(map[string]any{"role": "assistant"})

	// A truncated stream stops after two content chunks with no finish
	// chunk and no [DONE], like a dropped upstream connection.
	truncate := strings.Contains(prompt, "truncate")
	for i, token := range tokens {
		if truncate && i == 2 {
			return
		}
		s.delta(map[string]any{"content": token})
	}

	s.finish("stop", len(tokens))
}

// streamToolCalls emits tool invocations the way v0 fragments them: the
// first fragment of each call carries the ID and function name, the
// argument string arrives split across later fragments.
func streamToolCalls(w http.ResponseWriter, model string, req *chatRequest, prompt string) {
	s, ok := newStreamer(w, model, strings.Contains(prompt, "slow"))
	if !ok {
		return
	}

	calls := 1
	if len(req.Tools) > 1 && strings.Contains(prompt, "both") {
		calls = 2
	}

	s.delta(map[string]any{"role": "assistant"})

	for i := 0; i < calls; i++ {
		name := req.Tools[i].Function.Name
		args := fmt.Sprintf(`{"location":"San Francisco","call":%d}`, i)

		s.delta(map[string]any{"tool_calls": []any{map[string]any{
			"index": i,
			"id":    fmt.Sprintf("call_mock_%d", i),
			"type":  "function",
			"function": map[string]any{
				"name":      name,
				"arguments": "",
			},
		}}})

		// Arguments fragmented into three pieces.
		third := len(args) / 3
		for _, frag := range []string{args[:third], args[third : 2*third], args[2*third:]} {
			s.delta(map[string]any{"tool_calls": []any{map[string]any{
				"index":    i,
				"function": map[string]any{"arguments": frag},
			}}})
		}
	}

	s.finish("tool_calls", 15)
}

// --- Models endpoint ---

func handleModels(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"object": "list",
		"data": []map[string]any{
			{"id": "v0-1.5-md", "object": "model", "owned_by": "vercel"},
			{"id": "v0-1.5-lg", "object": "model", "owned_by": "vercel"},
			{"id": "v0-1.0-md", "object": "model", "owned_by": "vercel"},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// --- Helpers ---

func lastUserMessage(req *chatRequest) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			return req.Messages[i].Content
		}
	}
	return ""
}
