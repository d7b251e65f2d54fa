package ws

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	"github.com/vedran77/skillbarter/internal/transport/http/middleware"
	"nhooyr.io/websocket"
)

// ServeWS returns an HTTP handler that upgrades to WebSocket.
// Auth is done via ?token=xxx query param (WebSocket can't send headers).
// The socket lives until the client leaves or serverCtx is cancelled.
func ServeWS(serverCtx context.Context, hub *Hub, messages MessageSender, jwtSecret string, allowedOrigins []string, logger *slog.Logger) http.HandlerFunc {
	opts := &websocket.AcceptOptions{}
	if slices.Contains(allowedOrigins, "*") {
		opts.InsecureSkipVerify = true
	} else {
		opts.OriginPatterns = allowedOrigins
	}

	return func(w http.ResponseWriter, r *http.Request) {
		tokenStr := r.URL.Query().Get("token")
		if tokenStr == "" {
			http.Error(w, `{"msg":"No token, authorization denied"}`, http.StatusUnauthorized)
			return
		}

		userID, err := middleware.ParseToken(tokenStr, jwtSecret)
		if err != nil {
			http.Error(w, `{"msg":"Token is not valid"}`, http.StatusUnauthorized)
			return
		}

		conn, err := websocket.Accept(w, r, opts)
		if err != nil {
			logger.Warn("ws: accept failed", "error", err)
			return
		}

		client := NewClient(hub, conn, userID, messages, logger)
		if !hub.Register(client) {
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		}

		go client.WritePump(serverCtx)
		go client.ReadPump(serverCtx)
	}
}
