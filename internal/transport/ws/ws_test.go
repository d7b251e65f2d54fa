package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/skillbarter/internal/domain"
	"github.com/vedran77/skillbarter/internal/repository/memory"
	"github.com/vedran77/skillbarter/internal/service"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const testSecret = "test-secret"

type testServer struct {
	url      string
	auth     *service.AuthService
	conns    *service.ConnectionService
	messages *service.MessageService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(logger)
	go hub.Run(ctx)

	store := memory.NewStore()
	messages := service.NewMessageService(store, store.Messages(), store.Users())
	messages.SetNotifier(NewHubNotifier(hub, logger))

	srv := httptest.NewServer(ServeWS(ctx, hub, messages, testSecret, []string{"*"}, logger))
	t.Cleanup(srv.Close)

	return &testServer{
		url:      "ws" + strings.TrimPrefix(srv.URL, "http"),
		auth:     service.NewAuthService(store.Users(), testSecret, time.Hour),
		conns:    service.NewConnectionService(store, store.Connections(), store.Users()),
		messages: messages,
	}
}

func (s *testServer) register(t *testing.T, name string) *service.AuthResponse {
	t.Helper()
	resp, err := s.auth.Register(context.Background(), service.RegisterInput{
		FirstName: name,
		LastName:  "Test",
		Email:     strings.ToLower(name) + "@example.com",
		Password:  "Password123",
	})
	if err != nil {
		t.Fatalf("registering %s: %v", name, err)
	}
	return resp
}

func (s *testServer) connect(t *testing.T, a, b *domain.User) {
	t.Helper()
	ctx := context.Background()
	conn, err := s.conns.Request(ctx, a.ID, b.ID)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := s.conns.Accept(ctx, conn.ID, b.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
}

func (s *testServer) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, s.url+"?token="+token, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, eventType string, payload any) {
	t.Helper()
	evt, err := NewEvent(eventType, payload)
	if err != nil {
		t.Fatalf("building event: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wsjson.Write(ctx, conn, evt); err != nil {
		t.Fatalf("writing %s: %v", eventType, err)
	}
}

func read(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var evt Event
	if err := wsjson.Read(ctx, conn, &evt); err != nil {
		t.Fatalf("reading event: %v", err)
	}
	return evt
}

func expectType(t *testing.T, evt Event, want string) {
	t.Helper()
	if evt.Type != want {
		t.Fatalf("expected %s event, got %s (%s)", want, evt.Type, evt.Payload)
	}
}

func join(t *testing.T, conn *websocket.Conn, userID uuid.UUID) {
	t.Helper()
	send(t, conn, EventTypeJoinRoom, JoinRoomPayload{UserID: userID.String()})
	expectType(t, read(t, conn), EventTypeJoined)
}

func TestServeWSRejectsMissingOrBadToken(t *testing.T) {
	s := newTestServer(t)

	for _, query := range []string{"", "?token=garbage"} {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		conn, resp, err := websocket.Dial(ctx, s.url+query, nil)
		cancel()
		if err == nil {
			conn.Close(websocket.StatusNormalClosure, "")
			t.Fatalf("expected dial with %q to fail", query)
		}
		if resp == nil || resp.StatusCode != 401 {
			t.Fatalf("expected 401 for %q, got %v", query, resp)
		}
	}
}

func TestPingPong(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "Alice")

	conn := s.dial(t, alice.Token)
	send(t, conn, EventTypePing, nil)
	expectType(t, read(t, conn), EventTypePong)
}

func TestJoinRoomOnlyOwnRoom(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "Alice")
	bob := s.register(t, "Bob")

	conn := s.dial(t, alice.Token)
	send(t, conn, EventTypeJoinRoom, JoinRoomPayload{UserID: bob.User.ID.String()})

	evt := read(t, conn)
	expectType(t, evt, EventTypeError)
	var p ErrorPayload
	if err := json.Unmarshal(evt.Payload, &p); err != nil {
		t.Fatalf("decoding error payload: %v", err)
	}
	if p.Code != "FORBIDDEN" {
		t.Fatalf("expected FORBIDDEN, got %s", p.Code)
	}

	// Empty id joins the socket's own room.
	send(t, conn, EventTypeJoinRoom, JoinRoomPayload{})
	evt = read(t, conn)
	expectType(t, evt, EventTypeJoined)
	var joined JoinedPayload
	if err := json.Unmarshal(evt.Payload, &joined); err != nil {
		t.Fatalf("decoding joined payload: %v", err)
	}
	if joined.UserID != alice.User.ID {
		t.Fatalf("expected joined room %s, got %s", alice.User.ID, joined.UserID)
	}
}

func TestSendMessageDeliversToBothRooms(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "Alice")
	bob := s.register(t, "Bob")
	s.connect(t, alice.User, bob.User)

	aliceConn := s.dial(t, alice.Token)
	bobConn := s.dial(t, bob.Token)
	join(t, aliceConn, alice.User.ID)
	join(t, bobConn, bob.User.ID)

	send(t, aliceConn, EventTypeSendMessage, SendMessagePayload{
		SenderID:   alice.User.ID.String(),
		ReceiverID: bob.User.ID.String(),
		Content:    "hello",
	})

	for name, conn := range map[string]*websocket.Conn{"alice": aliceConn, "bob": bobConn} {
		evt := read(t, conn)
		expectType(t, evt, EventTypeMessage)
		var msg domain.Message
		if err := json.Unmarshal(evt.Payload, &msg); err != nil {
			t.Fatalf("%s: decoding message: %v", name, err)
		}
		if msg.Content != "hello" || msg.SenderID != alice.User.ID || msg.ReceiverID != bob.User.ID {
			t.Fatalf("%s: unexpected message %+v", name, msg)
		}
	}

	stored, err := s.messages.List(context.Background(), bob.User.ID)
	if err != nil {
		t.Fatalf("listing messages: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored message, got %d", len(stored))
	}
}

func TestSendMessageRejected(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "Alice")
	bob := s.register(t, "Bob")
	carol := s.register(t, "Carol")
	s.connect(t, alice.User, bob.User)

	tests := []struct {
		name     string
		payload  SendMessagePayload
		wantCode string
	}{
		{
			name:     "spoofed sender",
			payload:  SendMessagePayload{SenderID: bob.User.ID.String(), ReceiverID: alice.User.ID.String(), Content: "hi"},
			wantCode: "FORBIDDEN",
		},
		{
			name:     "not connected",
			payload:  SendMessagePayload{ReceiverID: carol.User.ID.String(), Content: "hi"},
			wantCode: "FORBIDDEN",
		},
		{
			name:     "unknown recipient",
			payload:  SendMessagePayload{ReceiverID: uuid.NewString(), Content: "hi"},
			wantCode: "NOT_FOUND",
		},
		{
			name:     "bad receiver id",
			payload:  SendMessagePayload{ReceiverID: "nope", Content: "hi"},
			wantCode: "INVALID_PAYLOAD",
		},
	}

	conn := s.dial(t, alice.Token)
	join(t, conn, alice.User.ID)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send(t, conn, EventTypeSendMessage, tt.payload)
			evt := read(t, conn)
			expectType(t, evt, EventTypeError)
			var p ErrorPayload
			if err := json.Unmarshal(evt.Payload, &p); err != nil {
				t.Fatalf("decoding error payload: %v", err)
			}
			if p.Code != tt.wantCode {
				t.Fatalf("expected %s, got %s", tt.wantCode, p.Code)
			}
		})
	}

	stored, err := s.messages.List(context.Background(), alice.User.ID)
	if err != nil {
		t.Fatalf("listing messages: %v", err)
	}
	if len(stored) != 0 {
		t.Fatalf("expected no stored messages, got %d", len(stored))
	}
}

func TestUnjoinedSocketReceivesNothing(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "Alice")
	bob := s.register(t, "Bob")
	s.connect(t, alice.User, bob.User)

	bobConn := s.dial(t, bob.Token)

	if _, err := s.messages.Send(context.Background(), alice.User.ID, bob.User.ID, "first"); err != nil {
		t.Fatalf("send: %v", err)
	}

	// The first event bob sees after pinging must be the pong.
	send(t, bobConn, EventTypePing, nil)
	expectType(t, read(t, bobConn), EventTypePong)
}

func TestEditAndDeleteNotifications(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "Alice")
	bob := s.register(t, "Bob")
	s.connect(t, alice.User, bob.User)

	bobConn := s.dial(t, bob.Token)
	join(t, bobConn, bob.User.ID)

	ctx := context.Background()
	msg, err := s.messages.Send(ctx, alice.User.ID, bob.User.ID, "draft")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	expectType(t, read(t, bobConn), EventTypeMessage)

	if _, err := s.messages.Update(ctx, msg.ID, alice.User.ID, "final"); err != nil {
		t.Fatalf("update: %v", err)
	}
	expectType(t, read(t, bobConn), EventTypeMessageEdited)

	if err := s.messages.Delete(ctx, msg.ID, bob.User.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	evt := read(t, bobConn)
	expectType(t, evt, EventTypeMessageDeleted)
	var p MessageDeletedPayload
	if err := json.Unmarshal(evt.Payload, &p); err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	if p.ID != msg.ID {
		t.Fatalf("expected deleted id %s, got %s", msg.ID, p.ID)
	}
}
