package domain

import "github.com/google/uuid"

type Role int

const (
	RoleRequester Role = iota + 1
	RoleRecipient
	RoleResponder
	// RoleOwner is the author of a post or the sender of a message.
	RoleOwner
	// RoleParticipant is the receiver of a message or the author of a comment.
	RoleParticipant
	// RoleAnyone admits every authenticated identity.
	RoleAnyone
)

// Party is a record whose mutations are gated on who the caller is.
type Party interface {
	PartyID(role Role) (uuid.UUID, bool)
}

// Authorize reports whether actingID holds one of the allowed roles on record.
// A nil actor never passes, not even for RoleAnyone.
func Authorize(record Party, actingID uuid.UUID, allowed ...Role) bool {
	if record == nil || actingID == uuid.Nil {
		return false
	}
	for _, role := range allowed {
		if role == RoleAnyone {
			return true
		}
		id, ok := record.PartyID(role)
		if ok && id == actingID {
			return true
		}
	}
	return false
}
