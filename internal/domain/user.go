package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Address        string    `json:"address,omitempty"`
	Country        string    `json:"country,omitempty"`
	State          string    `json:"state,omitempty"`
	City           string    `json:"city,omitempty"`
	Zipcode        string    `json:"zipcode,omitempty"`
	Category       string    `json:"category,omitempty"`
	Skill          string    `json:"skill,omitempty"`
	ProfilePicture *string   `json:"profile_picture,omitempty"`
	CreatedAt      time.Time `json:"created_at"`

	// Mirror collections. Derived from the connection and barter ledgers.
	SentConnectionRequests     []uuid.UUID `json:"sent_connection_requests"`
	ReceivedConnectionRequests []uuid.UUID `json:"received_connection_requests"`
	Connections                []uuid.UUID `json:"connections"`
	SentBarterRequests         []uuid.UUID `json:"sent_barter_requests"`
	ReceivedBarterRequests     []uuid.UUID `json:"received_barter_requests"`
}

// UserSummary is the public subset of a user joined into ledger, feed and
// message responses.
type UserSummary struct {
	ID             uuid.UUID `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email,omitempty"`
	ProfilePicture *string   `json:"profile_picture,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:             u.ID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
	}
}

// PublicProfile is what other users see: no credential, no pending mirrors.
type PublicProfile struct {
	ID             uuid.UUID   `json:"id"`
	FirstName      string      `json:"first_name"`
	LastName       string      `json:"last_name"`
	Email          string      `json:"email"`
	Address        string      `json:"address,omitempty"`
	Country        string      `json:"country,omitempty"`
	State          string      `json:"state,omitempty"`
	City           string      `json:"city,omitempty"`
	Zipcode        string      `json:"zipcode,omitempty"`
	Category       string      `json:"category,omitempty"`
	Skill          string      `json:"skill,omitempty"`
	ProfilePicture *string     `json:"profile_picture,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	Connections    []uuid.UUID `json:"connections"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:             u.ID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Email:          u.Email,
		Address:        u.Address,
		Country:        u.Country,
		State:          u.State,
		City:           u.City,
		Zipcode:        u.Zipcode,
		Category:       u.Category,
		Skill:          u.Skill,
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      u.CreatedAt,
		Connections:    u.Connections,
	}
}

// Mirror names one denormalized collection on a user record.
type Mirror string

const (
	MirrorSentConnectionRequests     Mirror = "sent_connection_requests"
	MirrorReceivedConnectionRequests Mirror = "received_connection_requests"
	MirrorConnections                Mirror = "connections"
	MirrorSentBarterRequests         Mirror = "sent_barter_requests"
	MirrorReceivedBarterRequests     Mirror = "received_barter_requests"
)

func (m Mirror) Valid() bool {
	switch m {
	case MirrorSentConnectionRequests, MirrorReceivedConnectionRequests, MirrorConnections,
		MirrorSentBarterRequests, MirrorReceivedBarterRequests:
		return true
	}
	return false
}

// Collection returns a pointer to the slice backing the mirror.
func (u *User) Collection(m Mirror) *[]uuid.UUID {
	switch m {
	case MirrorSentConnectionRequests:
		return &u.SentConnectionRequests
	case MirrorReceivedConnectionRequests:
		return &u.ReceivedConnectionRequests
	case MirrorConnections:
		return &u.Connections
	case MirrorSentBarterRequests:
		return &u.SentBarterRequests
	case MirrorReceivedBarterRequests:
		return &u.ReceivedBarterRequests
	}
	return nil
}

// IsConnectedTo reports whether other is in the user's accepted connections.
func (u *User) IsConnectedTo(other uuid.UUID) bool {
	return containsID(u.Connections, other)
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
