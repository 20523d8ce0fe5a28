// Package httpapi exposes the service layer over HTTP. Handlers are thin:
// decode, call a service, encode. All error mapping to status codes lives
// here so the services stay transport-free.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fnpsdn/netinv/internal/common"
)

type envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Success: false,
		Error:   &apiError{Code: code, Message: message},
	})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
	case errors.Is(err, common.ErrCodeExpired):
		writeError(w, http.StatusUnauthorized, "code_expired", "code expired")
	case errors.Is(err, common.ErrCodeMismatch):
		writeError(w, http.StatusUnauthorized, "code_mismatch", "code mismatch")
	case errors.Is(err, common.ErrTokenExpired):
		writeError(w, http.StatusUnauthorized, "token_expired", "token expired")
	case errors.Is(err, common.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
	case errors.Is(err, common.ErrTooManyAttempts):
		writeError(w, http.StatusTooManyRequests, "too_many_attempts", "too many attempts")
	case errors.Is(err, common.ErrAccountNotFound), errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, common.ErrorAlreadyExists):
		writeError(w, http.StatusConflict, "already_exists", "already exists")
	case errors.Is(err, common.ErrorValidation):
		writeError(w, http.StatusBadRequest, "validation", "validation error")
	case errors.Is(err, common.ErrDeliveryFailure):
		writeError(w, http.StatusAccepted, "delivery_failure", "code issued but delivery failed")
	case errors.Is(err, common.ErrorUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
	default:
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "malformed request body")
		return false
	}
	return true
}
