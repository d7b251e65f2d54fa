package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
)

// Hub tracks live sockets by user room and delivers events to them. All
// room state is owned by the Run goroutine.
type Hub struct {
	// rooms maps userID → that user's sockets.
	rooms map[uuid.UUID]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan *roomMsg
	done       chan struct{}

	logger *slog.Logger
}

type roomMsg struct {
	userIDs []uuid.UUID
	data    []byte
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *roomMsg, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run processes registrations and deliveries until ctx is cancelled, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, room := range h.rooms {
				for client := range room {
					h.drop(client)
				}
			}
			return nil

		case client := <-h.register:
			room, ok := h.rooms[client.userID]
			if !ok {
				room = make(map[*Client]struct{})
				h.rooms[client.userID] = room
			}
			room[client] = struct{}{}
			h.logger.Debug("ws client connected", "user_id", client.userID, "sockets", len(room))

		case client := <-h.unregister:
			if _, ok := h.rooms[client.userID][client]; ok {
				h.drop(client)
				h.logger.Debug("ws client disconnected", "user_id", client.userID)
			}

		case msg := <-h.broadcast:
			seen := make(map[uuid.UUID]struct{}, len(msg.userIDs))
			for _, userID := range msg.userIDs {
				if _, dup := seen[userID]; dup {
					continue
				}
				seen[userID] = struct{}{}

				for client := range h.rooms[userID] {
					if !client.Joined() {
						continue
					}
					select {
					case client.send <- msg.data:
					default:
						// Client buffer full - disconnect
						h.drop(client)
						h.logger.Warn("ws client dropped, send buffer full", "user_id", client.userID)
					}
				}
			}
		}
	}
}

// SendToUsers delivers event to every joined socket in each user's room.
func (h *Hub) SendToUsers(event *Event, userIDs ...uuid.UUID) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("ws hub: marshal event", "type", event.Type, "error", err)
		return
	}
	select {
	case h.broadcast <- &roomMsg{userIDs: userIDs, data: data}:
	case <-h.done:
	}
}

// Register adds client to its user's room. It reports false once the hub
// has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) drop(client *Client) {
	room := h.rooms[client.userID]
	delete(room, client)
	if len(room) == 0 {
		delete(h.rooms, client.userID)
	}
	close(client.send)
}
