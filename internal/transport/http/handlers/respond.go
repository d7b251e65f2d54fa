package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/vedran77/skillbarter/pkg/validator"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"msg": msg})
}

func writeValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"msg":    "Validation failed",
		"errors": errs,
	})
}

// writeServerError logs err and hides it from the client.
func writeServerError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	logger.Error(op, "error", err)
	writeMsg(w, http.StatusInternalServerError, "Server error")
}

// decodeJSON reads a single JSON object into dst and rejects unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			writeMsg(w, http.StatusBadRequest, "Request body is required")
		} else {
			writeMsg(w, http.StatusBadRequest, "Invalid request body")
		}
		return false
	}
	return true
}

// pathID parses the named path value as a UUID.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeMsg(w, http.StatusBadRequest, "Invalid ID")
		return uuid.Nil, false
	}
	return id, true
}
