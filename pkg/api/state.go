package api

import "fmt"

// ExchangeStatus represents the lifecycle state of a chat exchange.
type ExchangeStatus string

const (
	ExchangeStatusStreaming ExchangeStatus = "streaming"
	ExchangeStatusCompleted ExchangeStatus = "completed"
	ExchangeStatusCancelled ExchangeStatus = "cancelled"
)

// IsTerminal reports whether no further status may follow.
func (s ExchangeStatus) IsTerminal() bool {
	return s == ExchangeStatusCompleted || s == ExchangeStatusCancelled
}

// ValidateExchangeTransition checks whether an exchange status transition is
// valid. An empty "from" status represents the initial state before any
// status has been set. Terminal states do not allow outgoing transitions.
func ValidateExchangeTransition(from, to ExchangeStatus) *APIError {
	valid := map[ExchangeStatus][]ExchangeStatus{
		"":                      {ExchangeStatusStreaming},
		ExchangeStatusStreaming: {ExchangeStatusCompleted, ExchangeStatusCancelled},
	}

	allowed, exists := valid[from]
	if !exists {
		return NewInvalidRequestError("status",
			fmt.Sprintf("invalid transition from %s to %s", from, to))
	}

	for _, s := range allowed {
		if s == to {
			return nil
		}
	}

	return NewInvalidRequestError("status",
		fmt.Sprintf("invalid transition from %s to %s", from, to))
}
