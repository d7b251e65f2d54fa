package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/vedran77/skillbarter/internal/service"
	"github.com/vedran77/skillbarter/internal/transport/http/middleware"
	"github.com/vedran77/skillbarter/pkg/validator"
)

type MessageHandler struct {
	messageService *service.MessageService
	logger         *slog.Logger
}

func NewMessageHandler(messageService *service.MessageService, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{messageService: messageService, logger: logger}
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input struct {
		RecipientID string `json:"recipient_id"`
		Content     string `json:"content"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	errs := validator.ValidateContent("content", "Content", input.Content)
	recipientID, err := uuid.Parse(input.RecipientID)
	if err != nil {
		errs.Add("recipient_id", "Recipient must be a valid id")
	}
	if errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	msg, err := h.messageService.Send(r.Context(), userID, recipientID, input.Content)
	if err != nil {
		h.writeMessageError(w, "send message", err)
		return
	}

	writeJSON(w, http.StatusOK, msg)
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	msgs, err := h.messageService.List(r.Context(), userID)
	if err != nil {
		writeServerError(w, h.logger, "list messages", err)
		return
	}

	writeJSON(w, http.StatusOK, msgs)
}

func (h *MessageHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var input contentInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if errs := validator.ValidateContent("content", "Content", input.Content); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	msg, err := h.messageService.Update(r.Context(), id, userID, input.Content)
	if err != nil {
		h.writeMessageError(w, "update message", err)
		return
	}

	writeJSON(w, http.StatusOK, msg)
}

func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.messageService.Delete(r.Context(), id, userID); err != nil {
		h.writeMessageError(w, "delete message", err)
		return
	}

	writeMsg(w, http.StatusOK, "Message deleted")
}

func (h *MessageHandler) writeMessageError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrRecipientNotFound):
		writeMsg(w, http.StatusNotFound, "Recipient not found")
	case errors.Is(err, service.ErrNotConnected):
		writeMsg(w, http.StatusForbidden, "You are not connected with this user")
	case errors.Is(err, service.ErrMessageNotFound):
		writeMsg(w, http.StatusNotFound, "Message not found")
	case errors.Is(err, service.ErrNotMessageSender):
		writeMsg(w, http.StatusUnauthorized, "Not authorized to edit this message")
	case errors.Is(err, service.ErrNotMessageParty):
		writeMsg(w, http.StatusUnauthorized, "Not authorized to delete this message")
	case errors.Is(err, service.ErrEmptyContent):
		writeMsg(w, http.StatusBadRequest, "Content is required")
	case errors.Is(err, service.ErrUserNotFound):
		writeMsg(w, http.StatusUnauthorized, "User not authenticated")
	default:
		writeServerError(w, h.logger, op, err)
	}
}
