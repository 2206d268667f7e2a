package sse

// SSE event names written by Stream. Elements of the feed itself are sent
// without an event line, so browsers deliver them as "message".
const (
	// EventTypeConnected is the first event of every connection.
	EventTypeConnected = "connected"

	// EventTypeError is sent when the feed ends with an error.
	EventTypeError = "error"

	// EventTypeEnd is sent when the feed ends normally.
	EventTypeEnd = "end"
)

// ConnectedEvent is the payload of the connected event.
type ConnectedEvent struct {
	ClientID string `json:"client_id"`
}

// ErrorEvent is the payload of the error event.
type ErrorEvent struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}
