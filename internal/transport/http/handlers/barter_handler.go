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

type BarterHandler struct {
	barterService *service.BarterService
	logger        *slog.Logger
}

func NewBarterHandler(barterService *service.BarterService, logger *slog.Logger) *BarterHandler {
	return &BarterHandler{barterService: barterService, logger: logger}
}

func (h *BarterHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input struct {
		ResponderID    string `json:"responder_id"`
		RequestedSkill string `json:"requested_skill"`
		OfferedSkill   string `json:"offered_skill"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	if errs := validator.ValidateBarter(input.ResponderID, input.RequestedSkill, input.OfferedSkill); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	req, err := h.barterService.Create(r.Context(), userID, service.CreateBarterInput{
		ResponderID:    uuid.MustParse(input.ResponderID),
		RequestedSkill: input.RequestedSkill,
		OfferedSkill:   input.OfferedSkill,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrResponderNotFound):
			writeMsg(w, http.StatusBadRequest, "Invalid user ID")
		case errors.Is(err, service.ErrCannotBarterSelf):
			writeMsg(w, http.StatusBadRequest, "You cannot send a barter request to yourself")
		case errors.Is(err, service.ErrSkillRequired):
			writeMsg(w, http.StatusBadRequest, "Requested and offered skills are required")
		case errors.Is(err, service.ErrUserNotFound):
			writeMsg(w, http.StatusUnauthorized, "User not authenticated")
		default:
			writeServerError(w, h.logger, "create barter request", err)
		}
		return
	}

	h.logger.Info("barter requested", "barter_id", req.ID, "requester", userID, "responder", req.ResponderID)
	writeJSON(w, http.StatusOK, req)
}

func (h *BarterHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	reqs, err := h.barterService.List(r.Context(), userID)
	if err != nil {
		writeServerError(w, h.logger, "list barter requests", err)
		return
	}

	writeJSON(w, http.StatusOK, reqs)
}

func (h *BarterHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var input struct {
		RequestedSkill *string `json:"requested_skill"`
		OfferedSkill   *string `json:"offered_skill"`
		Status         *string `json:"status"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	if errs := validator.ValidateBarterUpdate(input.RequestedSkill, input.OfferedSkill, input.Status); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	update := service.UpdateBarterInput{
		RequestedSkill: input.RequestedSkill,
		OfferedSkill:   input.OfferedSkill,
	}
	if input.Status != nil {
		status := domain.RequestStatus(*input.Status)
		update.Status = &status
	}

	req, err := h.barterService.Update(r.Context(), id, userID, update)
	if err != nil {
		h.writeBarterError(w, "update barter request", err)
		return
	}

	writeJSON(w, http.StatusOK, req)
}

func (h *BarterHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.barterService.Accept)
}

func (h *BarterHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.barterService.Reject)
}

func (h *BarterHandler) respond(w http.ResponseWriter, r *http.Request, answer func(ctx context.Context, id, userID uuid.UUID) (*domain.BarterRequest, error)) {
	userID := middleware.GetUserID(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	req, err := answer(r.Context(), id, userID)
	if err != nil {
		h.writeBarterError(w, "answer barter request", err)
		return
	}

	writeJSON(w, http.StatusOK, req)
}

func (h *BarterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.barterService.Delete(r.Context(), id, userID); err != nil {
		h.writeBarterError(w, "delete barter request", err)
		return
	}

	writeMsg(w, http.StatusOK, "Request removed")
}

func (h *BarterHandler) writeBarterError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrBarterNotFound):
		writeMsg(w, http.StatusNotFound, "Request not found")
	case errors.Is(err, service.ErrNotBarterRequester),
		errors.Is(err, service.ErrNotBarterResponder),
		errors.Is(err, service.ErrNotBarterParty):
		writeMsg(w, http.StatusUnauthorized, "Not authorized")
	case errors.Is(err, service.ErrInvalidStatus):
		writeMsg(w, http.StatusBadRequest, "Status must be pending, accepted, or rejected")
	default:
		writeServerError(w, h.logger, op, err)
	}
}
