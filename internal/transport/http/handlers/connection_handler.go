package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/vedran77/skillbarter/internal/domain"
	"github.com/vedran77/skillbarter/internal/service"
	"github.com/vedran77/skillbarter/internal/transport/http/middleware"
	"github.com/vedran77/skillbarter/pkg/validator"
)

type ConnectionHandler struct {
	connService *service.ConnectionService
	logger      *slog.Logger
}

func NewConnectionHandler(connService *service.ConnectionService, logger *slog.Logger) *ConnectionHandler {
	return &ConnectionHandler{connService: connService, logger: logger}
}

func (h *ConnectionHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input struct {
		RecipientID string `json:"recipient_id"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	if errs := validator.ValidateConnectionRequest(input.RecipientID); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}
	recipientID := uuid.MustParse(input.RecipientID)

	conn, err := h.connService.Request(r.Context(), userID, recipientID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCannotConnectSelf):
			writeMsg(w, http.StatusBadRequest, "You cannot send a connection request to yourself")
		case errors.Is(err, service.ErrConnectionExists):
			writeMsg(w, http.StatusBadRequest, "A connection request already exists between these users")
		case errors.Is(err, service.ErrUserNotFound):
			writeMsg(w, http.StatusNotFound, "User not found")
		default:
			writeServerError(w, h.logger, "send connection request", err)
		}
		return
	}

	h.logger.Info("connection requested", "connection_id", conn.ID, "requester", userID, "recipient", recipientID)
	writeJSON(w, http.StatusOK, map[string]any{
		"msg":        "Connection request sent successfully",
		"connection": conn,
	})
}

func (h *ConnectionHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	conns, err := h.connService.List(r.Context(), userID)
	if err != nil {
		writeServerError(w, h.logger, "list connections", err)
		return
	}

	writeJSON(w, http.StatusOK, conns)
}

func (h *ConnectionHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.connService.Accept, "Connection accepted", "You can only accept connection requests sent to you")
}

func (h *ConnectionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.connService.Reject, "Connection rejected", "You can only reject connection requests sent to you")
}

func (h *ConnectionHandler) respond(
	w http.ResponseWriter,
	r *http.Request,
	answer func(ctx context.Context, connectionID, userID uuid.UUID) (*domain.Connection, error),
	okMsg, forbiddenMsg string,
) {
	userID := middleware.GetUserID(r.Context())
	connID, ok := pathID(w, r, "connectionId")
	if !ok {
		return
	}

	conn, err := answer(r.Context(), connID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConnectionNotFound):
			writeMsg(w, http.StatusNotFound, "Connection not found")
		case errors.Is(err, service.ErrNotConnectionRecipient):
			writeMsg(w, http.StatusForbidden, forbiddenMsg)
		case errors.Is(err, service.ErrConnectionNotPending):
			writeMsg(w, http.StatusBadRequest, "Connection request has already been answered")
		default:
			writeServerError(w, h.logger, "answer connection request", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"msg":        okMsg,
		"connection": conn,
	})
}

func (h *ConnectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	connID, ok := pathID(w, r, "connectionId")
	if !ok {
		return
	}

	if err := h.connService.Delete(r.Context(), connID, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrConnectionNotFound):
			writeMsg(w, http.StatusNotFound, "Connection request not found")
		case errors.Is(err, service.ErrConnectionForbidden):
			writeMsg(w, http.StatusForbidden, "Not allowed to delete this connection")
		default:
			writeServerError(w, h.logger, "delete connection", err)
		}
		return
	}

	writeMsg(w, http.StatusOK, "Connection request deleted successfully")
}

func (h *ConnectionHandler) UserConnections(w http.ResponseWriter, r *http.Request) {
	targetID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	summaries, err := h.connService.UserConnections(r.Context(), targetID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeMsg(w, http.StatusNotFound, "User not found")
		} else {
			writeServerError(w, h.logger, "list user connections", err)
		}
		return
	}

	if len(summaries) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"msg":         "This user has no connections",
			"connections": summaries,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"connections": summaries})
}
