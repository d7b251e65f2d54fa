package service

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	resp, err := env.auth.Register(ctx, RegisterInput{FirstName: "Ada", LastName: "Lovelace", Email: " Ada@Example.com ", Password: "Secret123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.Token == "" || resp.User.Email != "ada@example.com" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.User.Connections == nil {
		t.Fatal("expected mirrors to be initialized")
	}

	token, err := jwt.Parse(resp.Token, func(*jwt.Token) (any, error) { return []byte("test-secret"), nil })
	if err != nil || !token.Valid {
		t.Fatalf("expected a valid token, got %v", err)
	}
	sub, _ := token.Claims.GetSubject()
	if sub != resp.User.ID.String() {
		t.Fatalf("expected sub %s, got %s", resp.User.ID, sub)
	}

	if _, err := env.auth.Register(ctx, RegisterInput{FirstName: "A", LastName: "L", Email: "ada@example.com", Password: "Secret123"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	if _, err := env.auth.Login(ctx, LoginInput{Email: "ADA@example.com", Password: "Secret123"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	for _, in := range []LoginInput{
		{Email: "ada@example.com", Password: "wrong"},
		{Email: "nobody@example.com", Password: "Secret123"},
	} {
		if _, err := env.auth.Login(ctx, in); !errors.Is(err, ErrInvalidCreds) {
			t.Fatalf("expected ErrInvalidCreds for %s, got %v", in.Email, err)
		}
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := hashPassword("Secret123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !verifyPassword("Secret123", hash) {
		t.Fatal("expected password to verify")
	}
	if verifyPassword("Secret124", hash) || verifyPassword("Secret123", "garbage") {
		t.Fatal("expected mismatch")
	}
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	resp, _ := env.auth.Register(ctx, RegisterInput{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "Secret123"})

	city, empty, pw := "London", "", "NewSecret9"
	pic := "https://example.com/ada.png"
	user, err := env.users.UpdateProfile(ctx, resp.User.ID, UpdateProfileInput{City: &city, FirstName: &empty, Password: &pw, ProfilePicture: &pic})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if user.City != "London" || user.FirstName != "Ada" || user.ProfilePicture == nil || *user.ProfilePicture != pic {
		t.Fatalf("unexpected profile: %+v", user)
	}

	if _, err := env.auth.Login(ctx, LoginInput{Email: "ada@example.com", Password: "NewSecret9"}); err != nil {
		t.Fatalf("expected new password to work, got %v", err)
	}
	if _, err := env.users.UpdateProfile(ctx, uuid.New(), UpdateProfileInput{City: &city}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestPublicProfileHidesPendingMirrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice, bob := env.createUser(t, "alice"), env.createUser(t, "bob")
	if _, err := env.conns.Request(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("request: %v", err)
	}

	profile, err := env.users.GetPublicProfile(ctx, alice.ID)
	if err != nil {
		t.Fatalf("public profile: %v", err)
	}
	if profile.ID != alice.ID || profile.Connections == nil {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if _, err := env.users.GetPublicProfile(ctx, uuid.New()); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDeleteProfileLeavesNoDanglingReferences(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice, bob, carol := env.createUser(t, "alice"), env.createUser(t, "bob"), env.createUser(t, "carol")

	env.connect(t, alice, bob)
	if _, err := env.conns.Request(ctx, carol.ID, alice.ID); err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := env.barters.Create(ctx, bob.ID, CreateBarterInput{ResponderID: alice.ID, RequestedSkill: "Go", OfferedSkill: "Guitar"}); err != nil {
		t.Fatalf("barter: %v", err)
	}
	bobPost, _ := env.feed.Create(ctx, bob.ID, "bob's post")
	if _, err := env.feed.Like(ctx, bobPost.ID, alice.ID); err != nil {
		t.Fatalf("like: %v", err)
	}
	if _, err := env.feed.AddComment(ctx, bobPost.ID, alice.ID, "hi"); err != nil {
		t.Fatalf("comment: %v", err)
	}
	if _, err := env.feed.Create(ctx, alice.ID, "alice's post"); err != nil {
		t.Fatalf("post: %v", err)
	}
	if _, err := env.messages.Send(ctx, bob.ID, alice.ID, "hey"); err != nil {
		t.Fatalf("message: %v", err)
	}

	if err := env.users.DeleteProfile(ctx, alice.ID); err != nil {
		t.Fatalf("delete profile: %v", err)
	}

	if _, err := env.users.GetProfile(ctx, alice.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	b, c := env.user(t, bob.ID), env.user(t, carol.ID)
	assertIDs(t, "bob connections", b.Connections)
	assertIDs(t, "bob sent barters", b.SentBarterRequests)
	assertIDs(t, "carol sent", c.SentConnectionRequests)

	if conns, _ := env.conns.List(ctx, bob.ID); len(conns) != 0 {
		t.Fatalf("expected no connections for bob, got %d", len(conns))
	}
	if barters, _ := env.barters.List(ctx, bob.ID); len(barters) != 0 {
		t.Fatalf("expected no barters for bob, got %d", len(barters))
	}
	if msgs, _ := env.messages.List(ctx, bob.ID); len(msgs) != 0 {
		t.Fatalf("expected no messages for bob, got %d", len(msgs))
	}

	post, _ := env.store.Feed().GetByID(ctx, bobPost.ID)
	if len(post.Likes) != 0 || len(post.Comments) != 0 {
		t.Fatalf("expected alice's like and comment gone, got %+v", post)
	}
	page, _ := env.feed.List(ctx, bob.ID, 1, 10)
	if len(page.Posts) != 1 {
		t.Fatalf("expected only bob's post, got %d", len(page.Posts))
	}

	if err := env.users.DeleteProfile(ctx, alice.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on second delete, got %v", err)
	}
}

func TestDeletedAccountCannotWrite(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice, bob := env.createUser(t, "alice"), env.createUser(t, "bob")
	env.connect(t, alice, bob)
	bobPost, _ := env.feed.Create(ctx, bob.ID, "bob's post")

	if err := env.users.DeleteProfile(ctx, alice.ID); err != nil {
		t.Fatalf("delete profile: %v", err)
	}

	tests := []struct {
		name string
		run  func() error
	}{
		{"connection request", func() error {
			_, err := env.conns.Request(ctx, alice.ID, bob.ID)
			return err
		}},
		{"barter create", func() error {
			_, err := env.barters.Create(ctx, alice.ID, CreateBarterInput{ResponderID: bob.ID, RequestedSkill: "Go", OfferedSkill: "Guitar"})
			return err
		}},
		{"post create", func() error {
			_, err := env.feed.Create(ctx, alice.ID, "ghost post")
			return err
		}},
		{"like", func() error {
			_, err := env.feed.Like(ctx, bobPost.ID, alice.ID)
			return err
		}},
		{"comment", func() error {
			_, err := env.feed.AddComment(ctx, bobPost.ID, alice.ID, "boo")
			return err
		}},
		{"message send", func() error {
			_, err := env.messages.Send(ctx, alice.ID, bob.ID, "hi")
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, ErrUserNotFound) {
				t.Fatalf("expected ErrUserNotFound, got %v", err)
			}
		})
	}

	if conns, _ := env.conns.List(ctx, bob.ID); len(conns) != 0 {
		t.Fatalf("expected no connection records for bob, got %d", len(conns))
	}
	post, _ := env.store.Feed().GetByID(ctx, bobPost.ID)
	if len(post.Likes) != 0 || len(post.Comments) != 0 {
		t.Fatalf("expected no writes on bob's post, got %+v", post)
	}
}
