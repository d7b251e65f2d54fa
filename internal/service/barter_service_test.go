package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/vedran77/skillbarter/internal/domain"
)

func TestBarterCreate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice, bob := env.createUser(t, "alice"), env.createUser(t, "bob")

	req, err := env.barters.Create(ctx, alice.ID, CreateBarterInput{ResponderID: bob.ID, RequestedSkill: " Go ", OfferedSkill: "Guitar"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if req.Status != domain.StatusPending || req.RequestedSkill != "Go" {
		t.Fatalf("unexpected request: %+v", req)
	}
	assertIDs(t, "alice sent", env.user(t, alice.ID).SentBarterRequests, req.ID)
	assertIDs(t, "bob received", env.user(t, bob.ID).ReceivedBarterRequests, req.ID)

	// Duplicates between the same pair are allowed.
	second, err := env.barters.Create(ctx, alice.ID, CreateBarterInput{ResponderID: bob.ID, RequestedSkill: "Go", OfferedSkill: "Guitar"})
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	assertIDs(t, "alice sent", env.user(t, alice.ID).SentBarterRequests, req.ID, second.ID)
}

func TestBarterCreateErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice, bob := env.createUser(t, "alice"), env.createUser(t, "bob")

	tests := []struct {
		name  string
		input CreateBarterInput
		want  error
	}{
		{"self", CreateBarterInput{ResponderID: alice.ID, RequestedSkill: "a", OfferedSkill: "b"}, ErrCannotBarterSelf},
		{"missing responder", CreateBarterInput{ResponderID: uuid.New(), RequestedSkill: "a", OfferedSkill: "b"}, ErrResponderNotFound},
		{"blank skill", CreateBarterInput{ResponderID: bob.ID, RequestedSkill: " ", OfferedSkill: "b"}, ErrSkillRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.barters.Create(ctx, alice.ID, tt.input); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
	assertIDs(t, "alice sent", env.user(t, alice.ID).SentBarterRequests)
}

func TestBarterAcceptRejectLeaveMirrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice, bob := env.createUser(t, "alice"), env.createUser(t, "bob")
	req, _ := env.barters.Create(ctx, alice.ID, CreateBarterInput{ResponderID: bob.ID, RequestedSkill: "Go", OfferedSkill: "Guitar"})

	if _, err := env.barters.Accept(ctx, req.ID, alice.ID); !errors.Is(err, ErrNotBarterResponder) {
		t.Fatalf("expected ErrNotBarterResponder, got %v", err)
	}

	rejected, err := env.barters.Reject(ctx, req.ID, bob.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != domain.StatusRejected {
		t.Fatalf("expected rejected, got %s", rejected.Status)
	}
	assertIDs(t, "alice sent", env.user(t, alice.ID).SentBarterRequests, req.ID)
	assertIDs(t, "bob received", env.user(t, bob.ID).ReceivedBarterRequests, req.ID)

	// A terminal status can still be changed by the responder.
	accepted, err := env.barters.Accept(ctx, req.ID, bob.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != domain.StatusAccepted {
		t.Fatalf("expected accepted, got %s", accepted.Status)
	}
}

func TestBarterUpdateByRequester(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice, bob := env.createUser(t, "alice"), env.createUser(t, "bob")
	req, _ := env.barters.Create(ctx, alice.ID, CreateBarterInput{ResponderID: bob.ID, RequestedSkill: "Go", OfferedSkill: "Guitar"})

	skill := "Rust"
	status := domain.StatusAccepted
	updated, err := env.barters.Update(ctx, req.ID, alice.ID, UpdateBarterInput{RequestedSkill: &skill, Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.RequestedSkill != "Rust" || updated.OfferedSkill != "Guitar" || updated.Status != domain.StatusAccepted {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if _, err := env.barters.Update(ctx, req.ID, bob.ID, UpdateBarterInput{RequestedSkill: &skill}); !errors.Is(err, ErrNotBarterRequester) {
		t.Fatalf("expected ErrNotBarterRequester, got %v", err)
	}

	bad := domain.RequestStatus("done")
	if _, err := env.barters.Update(ctx, req.ID, alice.ID, UpdateBarterInput{Status: &bad}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := env.barters.Update(ctx, uuid.New(), alice.ID, UpdateBarterInput{}); !errors.Is(err, ErrBarterNotFound) {
		t.Fatalf("expected ErrBarterNotFound, got %v", err)
	}
}

func TestBarterDelete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice, bob, carol := env.createUser(t, "alice"), env.createUser(t, "bob"), env.createUser(t, "carol")
	req, _ := env.barters.Create(ctx, alice.ID, CreateBarterInput{ResponderID: bob.ID, RequestedSkill: "Go", OfferedSkill: "Guitar"})

	if err := env.barters.Delete(ctx, req.ID, carol.ID); !errors.Is(err, ErrNotBarterParty) {
		t.Fatalf("expected ErrNotBarterParty, got %v", err)
	}
	if err := env.barters.Delete(ctx, req.ID, bob.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	assertIDs(t, "alice sent", env.user(t, alice.ID).SentBarterRequests)
	assertIDs(t, "bob received", env.user(t, bob.ID).ReceivedBarterRequests)

	list, _ := env.barters.List(ctx, alice.ID)
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}
}

func TestBarterCreateRollsBackOnMirrorFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice, bob := env.createUser(t, "alice"), env.createUser(t, "bob")

	faulty := &faultyUsers{UserRepository: env.store.Users(), failOn: domain.MirrorReceivedBarterRequests}
	svc := NewBarterService(env.store, env.store.Barters(), faulty)

	if _, err := svc.Create(ctx, alice.ID, CreateBarterInput{ResponderID: bob.ID, RequestedSkill: "Go", OfferedSkill: "Guitar"}); !errors.Is(err, errInjected) {
		t.Fatalf("expected injected fault, got %v", err)
	}
	list, _ := env.barters.List(ctx, alice.ID)
	if len(list) != 0 {
		t.Fatalf("expected no request after rollback, got %d", len(list))
	}
	assertIDs(t, "alice sent", env.user(t, alice.ID).SentBarterRequests)
}
