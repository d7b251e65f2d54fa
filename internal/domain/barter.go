package domain

import (
	"time"

	"github.com/google/uuid"
)

// BarterRequest asks the responder to trade RequestedSkill for the
// requester's OfferedSkill.
type BarterRequest struct {
	ID             uuid.UUID     `json:"id"`
	RequesterID    uuid.UUID     `json:"requester_id"`
	ResponderID    uuid.UUID     `json:"responder_id"`
	RequestedSkill string        `json:"requested_skill"`
	OfferedSkill   string        `json:"offered_skill"`
	Status         RequestStatus `json:"status"`
	Date           time.Time     `json:"date"`
	// Joined fields
	Requester *UserSummary `json:"requester,omitempty"`
	Responder *UserSummary `json:"responder,omitempty"`
}

func (b *BarterRequest) PartyID(role Role) (uuid.UUID, bool) {
	switch role {
	case RoleRequester:
		return b.RequesterID, true
	case RoleResponder:
		return b.ResponderID, true
	}
	return uuid.Nil, false
}
