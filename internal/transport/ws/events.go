package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/skillbarter/internal/domain"
)

// Event types - Client → Server
const (
	EventTypeJoinRoom    = "joinRoom"
	EventTypeSendMessage = "sendMessage"
	EventTypePing        = "ping"
)

// Event types - Server → Client
const (
	EventTypeJoined         = "joined"
	EventTypeMessage        = "message"
	EventTypeMessageEdited  = "messageEdited"
	EventTypeMessageDeleted = "messageDeleted"
	EventTypePong           = "pong"
	EventTypeError          = "error"
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

// JoinRoomPayload names the room to join. An empty UserID means the
// socket's own room, which is the only room a socket may join.
type JoinRoomPayload struct {
	UserID string `json:"user_id"`
}

type SendMessagePayload struct {
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
}

// --- Server → Client payloads ---

type JoinedPayload struct {
	UserID uuid.UUID `json:"user_id"`
}

type MessagePayload struct {
	domain.Message
}

type MessageDeletedPayload struct {
	ID uuid.UUID `json:"id"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, payload any) (*Event, error) {
	var data json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		data = b
	}
	return &Event{
		Type:      eventType,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
