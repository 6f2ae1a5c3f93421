package chat

import (
	"encoding/json"
	"fmt"
)

// Inbound event names (client -> server).
const (
	EventJoinRoom    = "join-room"
	EventSendMessage = "send-message"
	EventPing        = "ping"
)

// Outbound event names (server -> client).
const (
	EventReceiveMessage = "receive-message"
	EventMessageStatus  = "message-status"
	EventError          = "error"
	EventPong           = "pong"
)

// Error codes carried by error events.
const (
	CodeInvalidRoom      = "INVALID_ROOM"
	CodeEmptyMessage     = "EMPTY_MESSAGE"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeBadRequest       = "BAD_REQUEST"
)

// clientEvent is the flat JSON envelope read off the socket.
type clientEvent struct {
	Event    string `json:"event"`
	RoomID   string `json:"roomId,omitempty"`
	SenderID string `json:"senderId,omitempty"`
	Message  string `json:"message,omitempty"`
}

// serverEvent wraps an outbound payload with its event name.
type serverEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusPayload reports the fate of a message the session sent.
type statusPayload struct {
	MessageID int64  `json:"messageId"`
	Status    string `json:"status"`
}

func marshalEvent(event string, data any) ([]byte, error) {
	payload, err := json.Marshal(serverEvent{Event: event, Data: data})
	if err != nil {
		return nil, fmt.Errorf("marshal %s event: %w", event, err)
	}
	return payload, nil
}

// errorEvent builds an error event payload. The inputs are known
// marshalable shapes, so encoding cannot fail.
func errorEvent(code, message string) []byte {
	payload, _ := marshalEvent(EventError, errorPayload{Code: code, Message: message})
	return payload
}
