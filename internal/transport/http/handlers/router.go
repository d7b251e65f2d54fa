package handlers

import (
	"log/slog"
	"net/http"

	"github.com/vedran77/skillbarter/internal/transport/http/middleware"
)

// Handlers groups the REST handlers mounted by NewRouter.
type Handlers struct {
	Auth       *AuthHandler
	User       *UserHandler
	Connection *ConnectionHandler
	Barter     *BarterHandler
	Feed       *FeedHandler
	Message    *MessageHandler
}

// NewRouter mounts every route. ws may be nil, in which case /ws is not served.
func NewRouter(h Handlers, jwtSecret string, allowedOrigins []string, ws http.Handler, logger *slog.Logger) http.Handler {
	auth := middleware.Auth(jwtSecret)
	protected := func(fn http.HandlerFunc) http.Handler {
		return auth(fn)
	}

	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if ws != nil {
		mux.Handle("GET /ws", ws)
	}
	mux.HandleFunc("POST /api/user/register", h.Auth.Register)
	mux.HandleFunc("POST /api/user/login", h.Auth.Login)

	// Protected - Profile
	mux.Handle("GET /api/user/profile", protected(h.User.GetProfile))
	mux.Handle("PUT /api/user/profile", protected(h.User.UpdateProfile))
	mux.Handle("DELETE /api/user/profile", protected(h.User.DeleteProfile))
	mux.Handle("GET /api/user/profile/{userId}", protected(h.User.GetProfileByID))

	// Protected - Connections
	mux.Handle("POST /api/connections/request", protected(h.Connection.SendRequest))
	mux.Handle("GET /api/connections/{$}", protected(h.Connection.ListRequests))
	mux.Handle("PUT /api/connections/accept/{connectionId}", protected(h.Connection.Accept))
	mux.Handle("PUT /api/connections/reject/{connectionId}", protected(h.Connection.Reject))
	mux.Handle("DELETE /api/connections/delete/{connectionId}", protected(h.Connection.Delete))
	mux.Handle("GET /api/connections/{userId}/connections", protected(h.Connection.UserConnections))

	// Protected - Barter
	mux.Handle("POST /api/barter/create", protected(h.Barter.Create))
	mux.Handle("GET /api/barter/{$}", protected(h.Barter.List))
	mux.Handle("PUT /api/barter/{id}", protected(h.Barter.Update))
	mux.Handle("PUT /api/barter/accept/{id}", protected(h.Barter.Accept))
	mux.Handle("PUT /api/barter/reject/{id}", protected(h.Barter.Reject))
	mux.Handle("DELETE /api/barter/{id}", protected(h.Barter.Delete))

	// Protected - Feed
	mux.Handle("POST /api/feed/create", protected(h.Feed.Create))
	mux.Handle("GET /api/feed/{$}", protected(h.Feed.List))
	mux.Handle("PUT /api/feed/{id}", protected(h.Feed.Update))
	mux.Handle("DELETE /api/feed/{id}", protected(h.Feed.Delete))
	mux.Handle("POST /api/feed/{id}/like", protected(h.Feed.Like))
	mux.Handle("DELETE /api/feed/{id}/unlike", protected(h.Feed.Unlike))
	mux.Handle("POST /api/feed/{id}/comment", protected(h.Feed.AddComment))
	mux.Handle("DELETE /api/feed/{id}/comment/{commentId}", protected(h.Feed.DeleteComment))

	// Protected - Messages
	mux.Handle("POST /api/messages/send", protected(h.Message.Send))
	mux.Handle("GET /api/messages/{$}", protected(h.Message.List))
	mux.Handle("PUT /api/messages/{id}", protected(h.Message.Update))
	mux.Handle("DELETE /api/messages/{id}", protected(h.Message.Delete))

	return middleware.Logging(logger)(middleware.CORS(allowedOrigins)(mux))
}
