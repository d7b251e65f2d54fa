package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/vedran77/skillbarter/internal/service"
	"github.com/vedran77/skillbarter/pkg/validator"
)

type AuthHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if !decodeJSON(w, r, &input) {
		return
	}

	if errs := validator.ValidateRegister(input.FirstName, input.LastName, input.Email, input.Password); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	resp, err := h.authService.Register(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			writeMsg(w, http.StatusBadRequest, "User already exists")
		default:
			writeServerError(w, h.logger, "register", err)
		}
		return
	}

	h.logger.Info("user registered", "user_id", resp.User.ID)
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if !decodeJSON(w, r, &input) {
		return
	}

	if errs := validator.ValidateLogin(input.Email, input.Password); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	resp, err := h.authService.Login(r.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCreds) {
			writeMsg(w, http.StatusBadRequest, "Invalid credentials")
		} else {
			writeServerError(w, h.logger, "login", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
