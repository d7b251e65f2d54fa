package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/vedran77/skillbarter/internal/domain"
)

var (
	// ErrNotFound is returned by mutations that matched no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a uniqueness constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
)

// Transactor runs fn so that every repository call made with the context it
// receives commits or rolls back as one unit. Nested calls join the outer
// transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListSummaries(ctx context.Context, ids []uuid.UUID) ([]domain.UserSummary, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	// LockUsers holds row locks on the given users, taken in id order, until
	// the surrounding transaction ends. Outside a transaction it does nothing.
	LockUsers(ctx context.Context, ids ...uuid.UUID) error
	// PushMirror adds ref to the user's mirror unless it is already there.
	PushMirror(ctx context.Context, userID uuid.UUID, mirror domain.Mirror, ref uuid.UUID) error
	// PullMirror removes every occurrence of ref from the user's mirror.
	PullMirror(ctx context.Context, userID uuid.UUID, mirror domain.Mirror, ref uuid.UUID) error
	// PurgeReferences removes userID from every user's connection mirrors and
	// barterIDs from every user's barter mirrors.
	PurgeReferences(ctx context.Context, userID uuid.UUID, barterIDs []uuid.UUID) error
}

type ConnectionRepository interface {
	Create(ctx context.Context, conn *domain.Connection) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Connection, error)
	// FindBetween returns a connection between a and b in either direction.
	FindBetween(ctx context.Context, a, b uuid.UUID) (*domain.Connection, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Connection, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RequestStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

type BarterRepository interface {
	Create(ctx context.Context, req *domain.BarterRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.BarterRequest, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.BarterRequest, error)
	Update(ctx context.Context, req *domain.BarterRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteByUser removes every request the user is party to and returns
	// their ids.
	DeleteByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type FeedRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	// GetByID returns the post with its likes and comments.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	ListByAuthors(ctx context.Context, authorIDs []uuid.UUID, limit, offset int) ([]domain.Post, error)
	CountByAuthors(ctx context.Context, authorIDs []uuid.UUID) (int, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content string) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddLike(ctx context.Context, postID, userID uuid.UUID) error
	RemoveLike(ctx context.Context, postID, userID uuid.UUID) error
	AddComment(ctx context.Context, comment *domain.Comment) error
	DeleteComment(ctx context.Context, postID, commentID uuid.UUID) error
	// DeleteByUser removes the user's posts, likes and comments.
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Message, error)
	Update(ctx context.Context, msg *domain.Message) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}
