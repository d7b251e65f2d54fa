package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/skillbarter/internal/domain"
	"github.com/vedran77/skillbarter/internal/service"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait      = 10 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 4096
	sendBufSize    = 256
	replyBufSize   = 16
)

// MessageSender persists a chat message on behalf of the socket's user.
type MessageSender interface {
	Send(ctx context.Context, senderID, recipientID uuid.UUID, content string) (*domain.Message, error)
}

// Client represents a single WebSocket connection. Its identity is fixed by
// the token presented at upgrade time.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	userID   uuid.UUID
	messages MessageSender
	logger   *slog.Logger

	joined atomic.Bool

	// send is closed by the hub; reply carries direct answers to this
	// client's own events and is never closed.
	send  chan []byte
	reply chan []byte
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, messages MessageSender, logger *slog.Logger) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		userID:   userID,
		messages: messages,
		logger:   logger.With("user_id", userID),
		send:     make(chan []byte, sendBufSize),
		reply:    make(chan []byte, replyBufSize),
	}
}

// Joined reports whether the client has joined its room and should receive
// room events.
func (c *Client) Joined() bool {
	return c.joined.Load()
}

// ReadPump reads events from the WebSocket until it fails or ctx ends.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	for {
		var event Event
		err := wsjson.Read(ctx, c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 || errors.Is(err, context.Canceled) {
				c.logger.Debug("ws: client disconnected")
			} else {
				c.logger.Warn("ws: read error", "error", err)
			}
			return
		}

		c.handleEvent(ctx, &event)
	}
}

// WritePump writes queued events to the WebSocket and keeps it alive.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var message []byte
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			message = msg

		case msg := <-c.reply:
			message = msg

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				c.logger.Debug("ws: ping failed", "error", err)
				return
			}
			continue

		case <-ctx.Done():
			return
		}

		writeCtx, cancel := context.WithTimeout(ctx, writeWait)
		err := c.conn.Write(writeCtx, websocket.MessageText, message)
		cancel()
		if err != nil {
			c.logger.Debug("ws: write failed", "error", err)
			return
		}
	}
}

// handleEvent routes an incoming client event.
func (c *Client) handleEvent(ctx context.Context, event *Event) {
	switch event.Type {
	case EventTypeJoinRoom:
		var p JoinRoomPayload
		if len(event.Payload) > 0 {
			if err := json.Unmarshal(event.Payload, &p); err != nil {
				c.sendError("INVALID_PAYLOAD", "invalid joinRoom payload")
				return
			}
		}
		if p.UserID != "" && p.UserID != c.userID.String() {
			c.sendError("FORBIDDEN", "you can only join your own room")
			return
		}
		c.joined.Store(true)
		c.queueReply(encodeEvent(EventTypeJoined, JoinedPayload{UserID: c.userID}))

	case EventTypeSendMessage:
		c.handleSendMessage(ctx, event)

	case EventTypePing:
		c.queueReply(encodeEvent(EventTypePong, nil))

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

func (c *Client) handleSendMessage(ctx context.Context, event *Event) {
	var p SendMessagePayload
	if err := json.Unmarshal(event.Payload, &p); err != nil {
		c.sendError("INVALID_PAYLOAD", "invalid sendMessage payload")
		return
	}
	if p.SenderID != "" && p.SenderID != c.userID.String() {
		c.sendError("FORBIDDEN", "sender does not match the authenticated user")
		return
	}
	receiverID, err := uuid.Parse(p.ReceiverID)
	if err != nil {
		c.sendError("INVALID_PAYLOAD", "receiver_id must be a valid id")
		return
	}

	// Delivery to both rooms happens through the service's notifier.
	_, err = c.messages.Send(ctx, c.userID, receiverID, p.Content)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrRecipientNotFound):
		c.sendError("NOT_FOUND", "Recipient not found")
	case errors.Is(err, service.ErrNotConnected):
		c.sendError("FORBIDDEN", "You are not connected with this user")
	case errors.Is(err, service.ErrEmptyContent):
		c.sendError("INVALID_PAYLOAD", "Content is required")
	default:
		c.logger.Error("ws: send message", "error", err)
		c.sendError("INTERNAL", "Server error")
	}
}

func (c *Client) sendError(code, message string) {
	c.queueReply(encodeEvent(EventTypeError, ErrorPayload{Code: code, Message: message}))
}

func (c *Client) queueReply(data []byte) {
	if data == nil {
		return
	}
	select {
	case c.reply <- data:
	default:
	}
}

func encodeEvent(eventType string, payload any) []byte {
	evt, err := NewEvent(eventType, payload)
	if err != nil {
		return nil
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return nil
	}
	return data
}
