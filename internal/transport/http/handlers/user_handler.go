package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/vedran77/skillbarter/internal/service"
	"github.com/vedran77/skillbarter/internal/transport/http/middleware"
	"github.com/vedran77/skillbarter/pkg/validator"
)

type UserHandler struct {
	userService *service.UserService
	logger      *slog.Logger
}

func NewUserHandler(userService *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		h.writeUserError(w, "get profile", err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) GetProfileByID(w http.ResponseWriter, r *http.Request) {
	targetID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	profile, err := h.userService.GetPublicProfile(r.Context(), targetID)
	if err != nil {
		h.writeUserError(w, "get profile by id", err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input service.UpdateProfileInput
	if !decodeJSON(w, r, &input) {
		return
	}

	if errs := validator.ValidateProfileUpdate(input.FirstName, input.LastName, input.Password, input.ProfilePicture); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, input)
	if err != nil {
		h.writeUserError(w, "update profile", err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := h.userService.DeleteProfile(r.Context(), userID); err != nil {
		h.writeUserError(w, "delete profile", err)
		return
	}

	h.logger.Info("user deleted", "user_id", userID)
	writeMsg(w, http.StatusOK, "User deleted successfully")
}

func (h *UserHandler) writeUserError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, service.ErrUserNotFound) {
		writeMsg(w, http.StatusNotFound, "User not found")
		return
	}
	writeServerError(w, h.logger, op, err)
}
