package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dukerupert/notepad/internal/service"
)

const maxBodyBytes = 1 << 20

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

// decodeJSON reads a JSON body capped at maxBodyBytes. Unknown fields are
// ignored.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &service.ValidationError{Field: "body", Message: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)}
		}
		return &service.ValidationError{Field: "body", Message: "invalid JSON"}
	}
	return nil
}

// writeError maps service errors onto status codes. Anything unrecognized is
// logged and reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		writeMessage(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, service.ErrDuplicateEmail):
		writeMessage(w, http.StatusBadRequest, "User already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeMessage(w, http.StatusBadRequest, "Invalid credentials")
	case errors.Is(err, service.ErrForbidden):
		// Reported as 401 so non-owners see the same status as unauthenticated callers.
		writeMessage(w, http.StatusUnauthorized, "Not authorized")
	case errors.Is(err, service.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Note not found")
	default:
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusInternalServerError, "Server error")
	}
}
