package domain

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
	StatusRejected RequestStatus = "rejected"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

type Connection struct {
	ID          uuid.UUID     `json:"id"`
	RequesterID uuid.UUID     `json:"requester_id"`
	RecipientID uuid.UUID     `json:"recipient_id"`
	Status      RequestStatus `json:"status"`
	Date        time.Time     `json:"date"`
	// Joined fields
	Requester *UserSummary `json:"requester,omitempty"`
	Recipient *UserSummary `json:"recipient,omitempty"`
}

func (c *Connection) PartyID(role Role) (uuid.UUID, bool) {
	switch role {
	case RoleRequester:
		return c.RequesterID, true
	case RoleRecipient:
		return c.RecipientID, true
	}
	return uuid.Nil, false
}

// Counterpart returns the other side of the connection relative to userID.
func (c *Connection) Counterpart(userID uuid.UUID) uuid.UUID {
	if c.RequesterID == userID {
		return c.RecipientID
	}
	return c.RequesterID
}
