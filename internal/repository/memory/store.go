// Package memory is a process-local implementation of the repository
// interfaces. Transactions are serialized and roll back to a snapshot on
// error, so it honours the same atomicity contract as the Postgres store.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/skillbarter/internal/domain"
)

type txKey struct{}

type Store struct {
	mu   sync.Mutex
	data *state
}

type state struct {
	seq         uint64
	order       map[uuid.UUID]uint64
	users       map[uuid.UUID]*domain.User
	connections map[uuid.UUID]*domain.Connection
	barters     map[uuid.UUID]*domain.BarterRequest
	posts       map[uuid.UUID]*domain.Post
	messages    map[uuid.UUID]*domain.Message
}

func NewStore() *Store {
	return &Store{data: &state{
		order:       make(map[uuid.UUID]uint64),
		users:       make(map[uuid.UUID]*domain.User),
		connections: make(map[uuid.UUID]*domain.Connection),
		barters:     make(map[uuid.UUID]*domain.BarterRequest),
		posts:       make(map[uuid.UUID]*domain.Post),
		messages:    make(map[uuid.UUID]*domain.Message),
	}}
}

func (s *Store) Users() *UserRepo             { return &UserRepo{s: s} }
func (s *Store) Connections() *ConnectionRepo { return &ConnectionRepo{s: s} }
func (s *Store) Barters() *BarterRepo         { return &BarterRepo{s: s} }
func (s *Store) Feed() *FeedRepo              { return &FeedRepo{s: s} }
func (s *Store) Messages() *MessageRepo       { return &MessageRepo{s: s} }

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

// lock takes the store mutex unless ctx already runs inside one of this
// store's transactions. Use as `defer s.lock(ctx)()`.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (st *state) track(id uuid.UUID) {
	st.seq++
	st.order[id] = st.seq
}

// newestFirst sorts by timestamp, breaking ties by insertion order.
func newestFirst[T any](st *state, items []T, key func(T) (uuid.UUID, time.Time)) {
	sort.SliceStable(items, func(i, j int) bool {
		idI, tI := key(items[i])
		idJ, tJ := key(items[j])
		if !tI.Equal(tJ) {
			return tI.After(tJ)
		}
		return st.order[idI] > st.order[idJ]
	})
}

func (st *state) summary(id uuid.UUID) *domain.UserSummary {
	u, ok := st.users[id]
	if !ok {
		return &domain.UserSummary{ID: id}
	}
	s := u.Summary()
	return &s
}

// hasUsers reports whether every id names a stored user. Creates use it the
// way the Postgres schema uses its users(id) foreign keys.
func (st *state) hasUsers(ids ...uuid.UUID) bool {
	for _, id := range ids {
		if _, ok := st.users[id]; !ok {
			return false
		}
	}
	return true
}

func (st *state) clone() *state {
	c := &state{
		seq:         st.seq,
		order:       make(map[uuid.UUID]uint64, len(st.order)),
		users:       make(map[uuid.UUID]*domain.User, len(st.users)),
		connections: make(map[uuid.UUID]*domain.Connection, len(st.connections)),
		barters:     make(map[uuid.UUID]*domain.BarterRequest, len(st.barters)),
		posts:       make(map[uuid.UUID]*domain.Post, len(st.posts)),
		messages:    make(map[uuid.UUID]*domain.Message, len(st.messages)),
	}
	for k, v := range st.order {
		c.order[k] = v
	}
	for k, v := range st.users {
		c.users[k] = copyUser(v)
	}
	for k, v := range st.connections {
		cp := *v
		c.connections[k] = &cp
	}
	for k, v := range st.barters {
		cp := *v
		c.barters[k] = &cp
	}
	for k, v := range st.posts {
		c.posts[k] = copyPost(v)
	}
	for k, v := range st.messages {
		cp := *v
		c.messages[k] = &cp
	}
	return c
}

func copyUser(u *domain.User) *domain.User {
	cp := *u
	if u.ProfilePicture != nil {
		pic := *u.ProfilePicture
		cp.ProfilePicture = &pic
	}
	cp.SentConnectionRequests = cloneIDs(u.SentConnectionRequests)
	cp.ReceivedConnectionRequests = cloneIDs(u.ReceivedConnectionRequests)
	cp.Connections = cloneIDs(u.Connections)
	cp.SentBarterRequests = cloneIDs(u.SentBarterRequests)
	cp.ReceivedBarterRequests = cloneIDs(u.ReceivedBarterRequests)
	return &cp
}

func copyPost(p *domain.Post) *domain.Post {
	cp := *p
	cp.Likes = slices.Clone(p.Likes)
	if cp.Likes == nil {
		cp.Likes = []domain.UserSummary{}
	}
	cp.Comments = slices.Clone(p.Comments)
	if cp.Comments == nil {
		cp.Comments = []domain.Comment{}
	}
	return &cp
}

// cloneIDs copies ids, normalizing nil to an empty slice.
func cloneIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	return out
}
