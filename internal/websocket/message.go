package websocket

import (
	"encoding/json"
	"time"
)

// Frame types
const (
	TypeHello        = "hello"
	TypeShutdown     = "shutdown"
	TypeError        = "error"
	TypePing         = "ping"
	TypePong         = "pong"
	TypeNotification = "notification"

	// Sent by clients
	TypeMarkRead    = "mark_read"
	TypeMarkAllRead = "mark_all_read"
)

// Frame is what the server writes. For notification frames ID is the
// notification id so clients can upsert.
type Frame struct {
	Type      string      `json:"type"`
	ID        string      `json:"id,omitempty"`
	ReplyTo   string      `json:"reply_to,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewFrame stamps a frame with the current time
func NewFrame(frameType string, payload interface{}) *Frame {
	return &Frame{Type: frameType, Payload: payload, Timestamp: time.Now().UTC()}
}

// Inbound is what clients send. Payload is decoded by the handler for Type.
type Inbound struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Decode unmarshals the payload into target. A missing payload leaves target untouched.
func (m *Inbound) Decode(target interface{}) error {
	if len(m.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(m.Payload, target)
}

// HelloPayload opens every stream
type HelloPayload struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	UnreadCount *int64 `json:"unread_count,omitempty"`
	ServerTime  int64  `json:"server_time"`
}

// ErrorPayload explains a rejected inbound frame
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PingPayload carries the client's clock in Unix milliseconds
type PingPayload struct {
	ClientTime int64 `json:"client_time"`
}

// PongPayload answers a ping
type PongPayload struct {
	ClientTime int64 `json:"client_time"`
	ServerTime int64 `json:"server_time"`
}

// MarkReadPayload names the notification to mark read
type MarkReadPayload struct {
	ID string `json:"id"`
}
