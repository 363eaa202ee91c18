package transport

import (
	"context"
	"log/slog"
	"time"

	"github.com/bote-dev/bote/pkg/api"
)

// Logging returns middleware that emits structured log entries for each
// exchange. The log entry includes the model, message count, duration,
// request ID (from context), and whether the exchange succeeded or failed.
//
// Note: The HTTP method and path are not available at the ChatStreamer
// level. For full HTTP-level logging (including status codes), use
// HTTP-level middleware in the adapter.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next ChatStreamer) ChatStreamer {
		return ChatStreamerFunc(func(ctx context.Context, req *api.ChatRequest, w EventWriter) error {
			start := time.Now()
			requestID := RequestIDFromContext(ctx)

			err := next.StreamChat(ctx, req, w)

			attrs := []slog.Attr{
				slog.String("request_id", requestID),
				slog.String("model", req.Model),
				slog.Int("messages", len(req.Messages)),
				slog.Duration("duration", time.Since(start)),
			}

			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				logger.LogAttrs(ctx, slog.LevelError, "exchange failed", attrs...)
			} else {
				logger.LogAttrs(ctx, slog.LevelInfo, "exchange completed", attrs...)
			}

			return err
		})
	}
}
