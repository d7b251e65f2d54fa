package domain

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID        uuid.UUID     `json:"id"`
	UserID    uuid.UUID     `json:"user_id"`
	Content   string        `json:"content"`
	Likes     []UserSummary `json:"likes"`
	Comments  []Comment     `json:"comments"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	// Joined fields
	Author *UserSummary `json:"user,omitempty"`
}

func (p *Post) PartyID(role Role) (uuid.UUID, bool) {
	if role == RoleOwner {
		return p.UserID, true
	}
	return uuid.Nil, false
}

func (p *Post) LikedBy(userID uuid.UUID) bool {
	for _, l := range p.Likes {
		if l.ID == userID {
			return true
		}
	}
	return false
}

func (p *Post) Comment(id uuid.UUID) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return &p.Comments[i]
		}
	}
	return nil
}

type Comment struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	UserID    uuid.UUID `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// Joined fields
	Author *UserSummary `json:"user,omitempty"`
}

// CommentOnPost pairs a comment with its post so both the post owner and
// the comment author can be authorized.
type CommentOnPost struct {
	Post    *Post
	Comment *Comment
}

func (c CommentOnPost) PartyID(role Role) (uuid.UUID, bool) {
	switch role {
	case RoleOwner:
		return c.Post.UserID, true
	case RoleParticipant:
		return c.Comment.UserID, true
	}
	return uuid.Nil, false
}

type FeedPage struct {
	Posts       []Post `json:"posts"`
	TotalPages  int    `json:"total_pages"`
	CurrentPage int    `json:"current_page"`
	HasNextPage bool   `json:"has_next_page"`
}
