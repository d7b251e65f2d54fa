package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/vedran77/skillbarter/internal/domain"
	"github.com/vedran77/skillbarter/internal/repository"
)

type UserRepo struct {
	s *Store
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	defer r.s.lock(ctx)()
	st := r.s.data

	for _, u := range st.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	if _, ok := st.users[user.ID]; ok {
		return repository.ErrDuplicate
	}
	st.users[user.ID] = copyUser(user)
	st.track(user.ID)
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	defer r.s.lock(ctx)()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, nil
	}
	return copyUser(u), nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	defer r.s.lock(ctx)()
	for _, u := range r.s.data.users {
		if strings.EqualFold(u.Email, email) {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (r *UserRepo) ListSummaries(ctx context.Context, ids []uuid.UUID) ([]domain.UserSummary, error) {
	defer r.s.lock(ctx)()
	var out []domain.UserSummary
	for _, id := range ids {
		if u, ok := r.s.data.users[id]; ok {
			out = append(out, u.Summary())
		}
	}
	return out, nil
}

func (r *UserRepo) Update(ctx context.Context, user *domain.User) error {
	defer r.s.lock(ctx)()
	cur, ok := r.s.data.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	// Mirrors are only written through Push/Pull.
	next := copyUser(user)
	next.Email = cur.Email
	next.CreatedAt = cur.CreatedAt
	next.SentConnectionRequests = cur.SentConnectionRequests
	next.ReceivedConnectionRequests = cur.ReceivedConnectionRequests
	next.Connections = cur.Connections
	next.SentBarterRequests = cur.SentBarterRequests
	next.ReceivedBarterRequests = cur.ReceivedBarterRequests
	r.s.data.users[user.ID] = next
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.data.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.data.users, id)
	delete(r.s.data.order, id)
	return nil
}

// LockUsers is a no-op: every store call already runs under the store mutex.
func (r *UserRepo) LockUsers(ctx context.Context, ids ...uuid.UUID) error {
	return nil
}

func (r *UserRepo) PushMirror(ctx context.Context, userID uuid.UUID, mirror domain.Mirror, ref uuid.UUID) error {
	defer r.s.lock(ctx)()
	col, err := r.collection(userID, mirror)
	if err != nil {
		return err
	}
	if !slices.Contains(*col, ref) {
		*col = append(*col, ref)
	}
	return nil
}

func (r *UserRepo) PullMirror(ctx context.Context, userID uuid.UUID, mirror domain.Mirror, ref uuid.UUID) error {
	defer r.s.lock(ctx)()
	col, err := r.collection(userID, mirror)
	if err != nil {
		return err
	}
	*col = slices.DeleteFunc(*col, func(id uuid.UUID) bool { return id == ref })
	return nil
}

func (r *UserRepo) PurgeReferences(ctx context.Context, userID uuid.UUID, barterIDs []uuid.UUID) error {
	defer r.s.lock(ctx)()
	isUser := func(id uuid.UUID) bool { return id == userID }
	isBarter := func(id uuid.UUID) bool { return slices.Contains(barterIDs, id) }

	for _, u := range r.s.data.users {
		u.SentConnectionRequests = slices.DeleteFunc(u.SentConnectionRequests, isUser)
		u.ReceivedConnectionRequests = slices.DeleteFunc(u.ReceivedConnectionRequests, isUser)
		u.Connections = slices.DeleteFunc(u.Connections, isUser)
		u.SentBarterRequests = slices.DeleteFunc(u.SentBarterRequests, isBarter)
		u.ReceivedBarterRequests = slices.DeleteFunc(u.ReceivedBarterRequests, isBarter)
	}
	return nil
}

func (r *UserRepo) collection(userID uuid.UUID, mirror domain.Mirror) (*[]uuid.UUID, error) {
	if !mirror.Valid() {
		return nil, fmt.Errorf("unknown mirror %q", mirror)
	}
	u, ok := r.s.data.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u.Collection(mirror), nil
}
