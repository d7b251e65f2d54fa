package domain

import (
	"time"

	"github.com/google/uuid"
)

const MessageStatusSent = "sent"

type Message struct {
	ID         uuid.UUID `json:"id"`
	SenderID   uuid.UUID `json:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
	Content    string    `json:"content"`
	Status     string    `json:"status"`
	Edited     bool      `json:"edited"`
	Date       time.Time `json:"date"`
	// Joined fields
	Sender   *UserSummary `json:"sender,omitempty"`
	Receiver *UserSummary `json:"receiver,omitempty"`
}

func (m *Message) PartyID(role Role) (uuid.UUID, bool) {
	switch role {
	case RoleOwner:
		return m.SenderID, true
	case RoleParticipant:
		return m.ReceiverID, true
	}
	return uuid.Nil, false
}
