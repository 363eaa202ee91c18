package api

// StreamEventType identifies the type of a streaming exchange event.
type StreamEventType string

// Lifecycle events track the state of an exchange; part events convey the
// response content itself.
const (
	EventExchangeCreated   StreamEventType = "exchange.created"
	EventExchangePart      StreamEventType = "exchange.part"
	EventExchangeCompleted StreamEventType = "exchange.completed"
	EventExchangeCancelled StreamEventType = "exchange.cancelled"
)

// Exchange identifies one chat exchange and its lifecycle status.
type Exchange struct {
	ID     string         `json:"id"`
	Model  string         `json:"model"`
	Status ExchangeStatus `json:"status"`
}

// StreamEvent represents a single server-sent event in an exchange stream.
// Lifecycle events carry Exchange; part events carry Index and Part, where
// Part is a ContentPart of type text or tool_call. Index is a pointer so
// that index 0 is not dropped from the wire.
type StreamEvent struct {
	Type     StreamEventType `json:"type"`
	Exchange *Exchange       `json:"exchange,omitempty"`
	Index    *int            `json:"index,omitempty"`
	Part     *ContentPart    `json:"part,omitempty"`
}

// Status returns the exchange status a lifecycle event implies, or "" for
// part events.
func (t StreamEventType) Status() ExchangeStatus {
	switch t {
	case EventExchangeCreated:
		return ExchangeStatusStreaming
	case EventExchangeCompleted:
		return ExchangeStatusCompleted
	case EventExchangeCancelled:
		return ExchangeStatusCancelled
	}
	return ""
}
