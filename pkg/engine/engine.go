package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bote-dev/bote/pkg/api"
	"github.com/bote-dev/bote/pkg/debug"
	"github.com/bote-dev/bote/pkg/observability"
	"github.com/bote-dev/bote/pkg/provider"
	"github.com/bote-dev/bote/pkg/tokenizer"
	"github.com/bote-dev/bote/pkg/transport"
)

// CredentialSource yields the upstream credential at call time. It is
// consulted once per exchange so credential changes take effect on the
// next exchange without restarting.
type CredentialSource interface {
	Credential() (string, error)
}

// Engine orchestrates a single chat exchange: it translates the host
// conversation into the upstream wire format, streams the response back
// and reports failures as in-stream text. It holds no per-exchange state
// between calls.
type Engine struct {
	cache       *provider.Cache
	credentials CredentialSource
	cfg         Config
}

var _ transport.ChatStreamer = (*Engine)(nil)
var _ transport.ModelLister = (*Engine)(nil)
var _ transport.TokenCounter = (*Engine)(nil)

func New(cache *provider.Cache, credentials CredentialSource, cfg Config) (*Engine, error) {
	if cache == nil {
		return nil, fmt.Errorf("provider cache is required")
	}
	if credentials == nil {
		return nil, fmt.Errorf("credential source is required")
	}
	if cfg.Validation == (api.ValidationConfig{}) {
		cfg.Validation = api.DefaultValidationConfig()
	}
	return &Engine{
		cache:       cache,
		credentials: credentials,
		cfg:         cfg,
	}, nil
}

// StreamChat runs one exchange against the upstream API. Validation
// failures before the exchange is created are returned to the caller;
// once the created event is written, every failure is reported as a text
// part and the exchange still reaches a terminal event.
func (e *Engine) StreamChat(ctx context.Context, req *api.ChatRequest, w transport.EventWriter) error {
	if req.Model == "" {
		req.Model = e.cfg.DefaultModel
	}
	if apiErr := api.ValidateChatRequest(req, e.cfg.Validation); apiErr != nil {
		return apiErr
	}
	model, ok := LookupModel(req.Model)
	if !ok {
		return api.NewNotFoundError(fmt.Sprintf("model %q not found", req.Model))
	}

	exchange := &api.Exchange{
		ID:     api.NewExchangeID(),
		Model:  model.ID,
		Status: api.ExchangeStatusStreaming,
	}
	if err := w.WriteEvent(ctx, api.StreamEvent{Type: api.EventExchangeCreated, Exchange: exchange}); err != nil {
		return err
	}

	credential, err := e.credentials.Credential()
	if err != nil {
		slog.Warn("no upstream credential available", "exchange_id", exchange.ID, "error", err)
		return e.reportTextAndComplete(ctx, exchange, missingCredentialReport, w)
	}

	messages := translateMessages(req.Messages)
	if len(messages) == 0 {
		return e.reportTextAndComplete(ctx, exchange, nothingToSendReport, w)
	}

	outReq := buildRequest(model, messages, req.Options)
	debug.Log("engine", "starting exchange",
		"exchange_id", exchange.ID,
		"model", model.ID,
		"outbound_messages", len(messages),
		"tools", len(outReq.Tools))

	client := e.cache.For(credential)

	start := time.Now()
	events, err := client.Stream(ctx, outReq)
	if err != nil {
		observability.UpstreamRequestsTotal.WithLabelValues(model.ID, "error").Inc()
		if ctx.Err() != nil {
			return e.finish(ctx, exchange, api.EventExchangeCancelled, "cancelled", w)
		}
		return e.reportAndComplete(ctx, exchange, err, w)
	}

	err = e.forwardEvents(ctx, exchange, events, w)
	observability.UpstreamLatency.WithLabelValues(model.ID).Observe(time.Since(start).Seconds())
	return err
}

// ListModels returns the fixed model catalog.
func (e *Engine) ListModels(ctx context.Context) api.ModelList {
	return api.ModelList{Object: "list", Data: Models()}
}

// CountTokens counts tokens for a text or a whole message using the
// local tokenizer, falling back to character estimation when the
// encoding is unavailable.
func (e *Engine) CountTokens(ctx context.Context, req *api.TokenCountRequest) (*api.TokenCountResponse, error) {
	if apiErr := api.ValidateTokenCountRequest(req); apiErr != nil {
		return nil, apiErr
	}
	if _, ok := LookupModel(req.Model); !ok {
		return nil, api.NewNotFoundError(fmt.Sprintf("model %q not found", req.Model))
	}

	var text string
	if req.Text != nil {
		text = *req.Text
	} else {
		text = flattenMessageText(*req.Message)
	}

	count := tokenizer.Count(text)
	debug.Log("tokens", "counted tokens", "model", req.Model, "count", count)
	return &api.TokenCountResponse{Model: req.Model, Count: count}, nil
}

// flattenMessageText concatenates the textual content of a message for
// counting. Tool calls contribute their name and serialized parameters,
// tool results their resolved text.
func flattenMessageText(msg api.ChatMessage) string {
	if !msg.Content.IsParts() {
		return msg.Content.Text
	}

	var b strings.Builder
	for _, part := range msg.Content.Parts {
		switch part.Type {
		case api.PartTypeText:
			b.WriteString(part.Value)
		case api.PartTypeToolCall:
			b.WriteString(part.Name)
			b.WriteString(serializeParameters(part.Parameters))
		case api.PartTypeToolResult:
			b.WriteString(resolveToolResultText(part.Content))
		}
	}
	return b.String()
}
