package ws

import (
	"log/slog"

	"github.com/vedran77/skillbarter/internal/domain"
)

// HubNotifier implements service.Notifier using the WebSocket Hub. Every
// event goes to both the sender's and the receiver's rooms.
type HubNotifier struct {
	hub    *Hub
	logger *slog.Logger
}

func NewHubNotifier(hub *Hub, logger *slog.Logger) *HubNotifier {
	return &HubNotifier{hub: hub, logger: logger}
}

func (n *HubNotifier) NotifyNewMessage(msg *domain.Message) {
	n.emit(EventTypeMessage, MessagePayload{Message: *msg}, msg)
}

func (n *HubNotifier) NotifyEditedMessage(msg *domain.Message) {
	n.emit(EventTypeMessageEdited, MessagePayload{Message: *msg}, msg)
}

func (n *HubNotifier) NotifyDeletedMessage(msg *domain.Message) {
	n.emit(EventTypeMessageDeleted, MessageDeletedPayload{ID: msg.ID}, msg)
}

func (n *HubNotifier) emit(eventType string, payload any, msg *domain.Message) {
	evt, err := NewEvent(eventType, payload)
	if err != nil {
		n.logger.Error("ws notifier: marshal error", "type", eventType, "error", err)
		return
	}
	n.hub.SendToUsers(evt, msg.SenderID, msg.ReceiverID)
}
