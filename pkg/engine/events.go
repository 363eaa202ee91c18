package engine

import (
	"context"
	"log/slog"

	"github.com/bote-dev/bote/pkg/api"
	"github.com/bote-dev/bote/pkg/debug"
	"github.com/bote-dev/bote/pkg/observability"
	"github.com/bote-dev/bote/pkg/provider"
	"github.com/bote-dev/bote/pkg/transport"
)

// forwardEvents relays upstream stream events to the client until the
// stream finishes, fails or the exchange is cancelled. Cancellation is
// checked before each event so nothing is emitted past it.
func (e *Engine) forwardEvents(ctx context.Context, exchange *api.Exchange, events <-chan provider.StreamEvent, w transport.EventWriter) error {
	for ev := range events {
		if ctx.Err() != nil {
			observability.UpstreamRequestsTotal.WithLabelValues(exchange.Model, "cancelled").Inc()
			return e.finish(ctx, exchange, api.EventExchangeCancelled, "cancelled", w)
		}

		observability.StreamEventsTotal.WithLabelValues(ev.Type.String()).Inc()

		switch ev.Type {
		case provider.StreamEventText:
			if err := e.writePart(ctx, ev.Index, api.TextPart(ev.Delta), w); err != nil {
				return err
			}
		case provider.StreamEventToolCall:
			part := api.ToolCallPart(ev.ToolCall.CallID, ev.ToolCall.Name, ev.ToolCall.Parameters)
			if err := e.writePart(ctx, ev.Index, part, w); err != nil {
				return err
			}
		case provider.StreamEventDone:
			debug.Log("engine", "stream finished",
				"exchange_id", exchange.ID, "finish_reason", ev.FinishReason)
			observability.UpstreamRequestsTotal.WithLabelValues(exchange.Model, "success").Inc()
			return e.finish(ctx, exchange, api.EventExchangeCompleted, "completed", w)
		case provider.StreamEventError:
			observability.UpstreamRequestsTotal.WithLabelValues(exchange.Model, "error").Inc()
			return e.reportAndComplete(ctx, exchange, ev.Err, w)
		}
	}

	// Channel closed without a done event: the stream ended on a bare
	// [DONE] sentinel or on cancellation inside the parser.
	if ctx.Err() != nil {
		observability.UpstreamRequestsTotal.WithLabelValues(exchange.Model, "cancelled").Inc()
		return e.finish(ctx, exchange, api.EventExchangeCancelled, "cancelled", w)
	}
	observability.UpstreamRequestsTotal.WithLabelValues(exchange.Model, "success").Inc()
	return e.finish(ctx, exchange, api.EventExchangeCompleted, "completed", w)
}

func (e *Engine) writePart(ctx context.Context, index int, part api.ContentPart, w transport.EventWriter) error {
	return w.WriteEvent(ctx, api.StreamEvent{
		Type:  api.EventExchangePart,
		Index: &index,
		Part:  &part,
	})
}

// finish writes the terminal event and records the exchange outcome.
func (e *Engine) finish(ctx context.Context, exchange *api.Exchange, typ api.StreamEventType, outcome string, w transport.EventWriter) error {
	exchange.Status = typ.Status()
	observability.ExchangesTotal.WithLabelValues(exchange.Model, outcome).Inc()
	return w.WriteEvent(ctx, api.StreamEvent{Type: typ, Exchange: exchange})
}

// reportAndComplete turns a failure into a text part followed by a
// completed terminal event. The client sees guidance, never an error.
func (e *Engine) reportAndComplete(ctx context.Context, exchange *api.Exchange, err error, w transport.EventWriter) error {
	slog.Warn("exchange failed, reporting to client", "exchange_id", exchange.ID, "error", err)
	return e.reportTextAndComplete(ctx, exchange, reportText(err), w)
}

func (e *Engine) reportTextAndComplete(ctx context.Context, exchange *api.Exchange, text string, w transport.EventWriter) error {
	if err := e.writePart(ctx, 0, api.TextPart(text), w); err != nil {
		return err
	}
	return e.finish(ctx, exchange, api.EventExchangeCompleted, "reported_error", w)
}
