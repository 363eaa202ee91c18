package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bote-dev/bote/pkg/api"
	"github.com/bote-dev/bote/pkg/transport"
)

// Adapter serves the bote chat API over HTTP.
// It routes requests to the appropriate handler and serializes responses.
type Adapter struct {
	streamer transport.ChatStreamer
	models   transport.ModelLister
	tokens   transport.TokenCounter
	inflight *transport.InFlightRegistry
	mux      *http.ServeMux
	config   Config
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	Addr            string
	MaxBodySize     int64
	ShutdownTimeout int // seconds
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		MaxBodySize:     10 << 20, // 10 MB
		ShutdownTimeout: 30,
	}
}

// NewAdapter creates an HTTP adapter around the engine handlers.
// Middleware is applied to the ChatStreamer in the given order.
func NewAdapter(streamer transport.ChatStreamer, models transport.ModelLister, tokens transport.TokenCounter, cfg Config, middlewares ...transport.Middleware) *Adapter {
	// Apply middleware chain to the streamer.
	if len(middlewares) > 0 {
		streamer = transport.Chain(middlewares...)(streamer)
	}

	a := &Adapter{
		streamer: streamer,
		models:   models,
		tokens:   tokens,
		inflight: transport.NewInFlightRegistry(),
		mux:      http.NewServeMux(),
		config:   cfg,
	}

	a.mux.HandleFunc("POST /v1/chat", a.handleChat)
	a.mux.HandleFunc("DELETE /v1/chat/{id}", a.handleCancelChat)
	a.mux.HandleFunc("GET /v1/models", a.handleListModels)
	a.mux.HandleFunc("POST /v1/tokens", a.handleCountTokens)

	return a
}

// Handler returns the http.Handler for this adapter. Use this to integrate
// with an http.Server or test with httptest. The returned handler includes
// HTTP-level middleware for request ID propagation.
func (a *Adapter) Handler() http.Handler {
	return httpRequestIDMiddleware(a.mux)
}

// httpRequestIDMiddleware is HTTP-level middleware that propagates the
// X-Request-ID header. If present in the request, it is forwarded to
// the response. After the handler runs, it checks the context for a
// request ID (set by the transport-level RequestID middleware) and adds
// it to the response headers if not already set.
func httpRequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// If client sent X-Request-ID, propagate it into context.
		if id := r.Header.Get("X-Request-ID"); id != "" {
			ctx := transport.ContextWithRequestID(r.Context(), id)
			r = r.WithContext(ctx)
		}
		// Use a response writer wrapper to capture and set the request ID
		// header before the first write.
		rw := &requestIDResponseWriter{ResponseWriter: w, r: r}
		next.ServeHTTP(rw, r)
	})
}

// requestIDResponseWriter wraps http.ResponseWriter to inject the
// X-Request-ID header before the first write.
type requestIDResponseWriter struct {
	http.ResponseWriter
	r           *http.Request
	headersSent bool
}

func (w *requestIDResponseWriter) WriteHeader(statusCode int) {
	w.ensureRequestIDHeader()
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *requestIDResponseWriter) Write(b []byte) (int, error) {
	w.ensureRequestIDHeader()
	return w.ResponseWriter.Write(b)
}

func (w *requestIDResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap returns the underlying ResponseWriter for http.NewResponseController.
func (w *requestIDResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *requestIDResponseWriter) ensureRequestIDHeader() {
	if w.headersSent {
		return
	}
	w.headersSent = true
	if id := transport.RequestIDFromContext(w.r.Context()); id != "" {
		w.ResponseWriter.Header().Set("X-Request-ID", id)
	}
}

// handleChat handles POST /v1/chat. The response is always an SSE stream.
func (a *Adapter) handleChat(w http.ResponseWriter, r *http.Request) {
	// Validate Content-Type.
	ct := r.Header.Get("Content-Type")
	if ct != "" && ct != "application/json" {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("content_type", "Content-Type must be application/json"),
			http.StatusUnsupportedMediaType,
		)
		return
	}

	// Limit body size.
	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	// Decode request.
	var req api.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			transport.WriteErrorResponse(w,
				api.NewInvalidRequestError("body", fmt.Sprintf("request body too large (max %d bytes)", a.config.MaxBodySize)),
				http.StatusRequestEntityTooLarge,
			)
			return
		}
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()),
			http.StatusBadRequest,
		)
		return
	}

	// The exchange context is cancellable both by client disconnect (via
	// the request context) and by DELETE through the in-flight registry.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var registeredID string
	rw := newSSEEventWriter(w, func(id string) {
		registeredID = id
		a.inflight.Register(id, cancel)
	})

	err := a.streamer.StreamChat(ctx, &req, rw)

	// Clean up in-flight registry after completion.
	if registeredID != "" {
		a.inflight.Remove(registeredID)
	}

	if err != nil {
		a.writeHandlerError(w, rw, err)
	}
}

// handleCancelChat handles DELETE /v1/chat/{id}. It cancels an in-flight
// exchange; unknown or already-finished exchanges return 404.
func (a *Adapter) handleCancelChat(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !api.ValidateExchangeID(id) {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("id", "malformed exchange ID"),
			http.StatusBadRequest,
		)
		return
	}

	if a.inflight.Cancel(id) {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	transport.WriteAPIError(w, api.NewNotFoundError("exchange "+id+" not found"))
}

// handleListModels handles GET /v1/models.
func (a *Adapter) handleListModels(w http.ResponseWriter, r *http.Request) {
	list := a.models.ListModels(r.Context())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// handleCountTokens handles POST /v1/tokens.
func (a *Adapter) handleCountTokens(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if ct != "" && ct != "application/json" {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("content_type", "Content-Type must be application/json"),
			http.StatusUnsupportedMediaType,
		)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	var req api.TokenCountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			transport.WriteErrorResponse(w,
				api.NewInvalidRequestError("body", fmt.Sprintf("request body too large (max %d bytes)", a.config.MaxBodySize)),
				http.StatusRequestEntityTooLarge,
			)
			return
		}
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()),
			http.StatusBadRequest,
		)
		return
	}

	resp, err := a.tokens.CountTokens(r.Context(), &req)
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			transport.WriteAPIError(w, apiErr)
		} else {
			transport.WriteAPIError(w, api.NewServerError(err.Error()))
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// writeHandlerError writes an error response from the handler. Errors
// before the first event become a standard JSON error response. Once
// streaming has started the engine reports failures inside the stream, so
// an error surfacing here means the client connection itself broke and
// there is nothing left to write.
func (a *Adapter) writeHandlerError(w http.ResponseWriter, rw *sseEventWriter, err error) {
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		apiErr = api.NewServerError(err.Error())
	}

	if rw.hasStartedStreaming() {
		slog.Warn("stream aborted after start", "error", err)
		return
	}

	transport.WriteAPIError(w, apiErr)
}
