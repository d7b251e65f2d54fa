package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/skillbarter/internal/domain"
	"github.com/vedran77/skillbarter/internal/repository"
	"github.com/vedran77/skillbarter/internal/repository/memory"
)

type testEnv struct {
	store    *memory.Store
	auth     *AuthService
	users    *UserService
	conns    *ConnectionService
	barters  *BarterService
	feed     *FeedService
	messages *MessageService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	return &testEnv{
		store:    store,
		auth:     NewAuthService(store.Users(), "test-secret", time.Hour),
		users:    NewUserService(store, store.Users(), store.Connections(), store.Barters(), store.Feed(), store.Messages()),
		conns:    NewConnectionService(store, store.Connections(), store.Users()),
		barters:  NewBarterService(store, store.Barters(), store.Users()),
		feed:     NewFeedService(store, store.Feed(), store.Users()),
		messages: NewMessageService(store, store.Messages(), store.Users()),
	}
}

func (e *testEnv) createUser(t *testing.T, name string) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:        uuid.New(),
		FirstName: name,
		LastName:  "Test",
		Email:     name + "-" + uuid.NewString()[:8] + "@example.com",
		CreatedAt: time.Now(),
	}
	if err := e.store.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("creating user %s: %v", name, err)
	}
	return u
}

func (e *testEnv) user(t *testing.T, id uuid.UUID) *domain.User {
	t.Helper()
	u, err := e.store.Users().GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("loading user: %v", err)
	}
	if u == nil {
		t.Fatalf("user %s not found", id)
	}
	return u
}

// connect makes a and b accepted connections.
func (e *testEnv) connect(t *testing.T, a, b *domain.User) *domain.Connection {
	t.Helper()
	ctx := context.Background()
	conn, err := e.conns.Request(ctx, a.ID, b.ID)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := e.conns.Accept(ctx, conn.ID, b.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	return conn
}

func assertIDs(t *testing.T, label string, got []uuid.UUID, want ...uuid.UUID) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: expected %v, got %v", label, want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%s: expected %v, got %v", label, want, got)
		}
	}
}

var errInjected = errors.New("injected fault")

// faultyUsers fails PushMirror for one mirror so callers can observe rollback.
type faultyUsers struct {
	repository.UserRepository
	failOn domain.Mirror
}

func (f *faultyUsers) PushMirror(ctx context.Context, userID uuid.UUID, mirror domain.Mirror, ref uuid.UUID) error {
	if mirror == f.failOn {
		return errInjected
	}
	return f.UserRepository.PushMirror(ctx, userID, mirror, ref)
}

// recordingUsers logs the order of user lookups and row locks.
type recordingUsers struct {
	repository.UserRepository
	calls  []string
	locked [][]uuid.UUID
}

func (r *recordingUsers) LockUsers(ctx context.Context, ids ...uuid.UUID) error {
	r.calls = append(r.calls, "lock")
	r.locked = append(r.locked, ids)
	return r.UserRepository.LockUsers(ctx, ids...)
}

func (r *recordingUsers) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.calls = append(r.calls, "get")
	return r.UserRepository.GetByID(ctx, id)
}
