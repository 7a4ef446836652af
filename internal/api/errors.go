package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/osahene/YOS-rentals/internal/database"
)

const (
	codeValidation        = "validation_error"
	codeConflict          = "conflict"
	codeInvalidTransition = "invalid_transition"
	codeNotFound          = "not_found"
	codeUnauthorized      = "unauthorized"
	codeForbidden         = "forbidden"
	codeRateLimited       = "rate_limited"
	codeInternal          = "internal_error"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

// writeServiceError maps domain sentinels onto the HTTP error taxonomy.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, "resource not found")
	case errors.Is(err, database.ErrNotAvailable):
		writeError(w, http.StatusConflict, codeConflict, err.Error())
	case errors.Is(err, database.ErrConcurrentModification):
		writeError(w, http.StatusConflict, codeConflict, err.Error())
	case errors.Is(err, database.ErrDuplicateReference):
		writeError(w, http.StatusConflict, codeConflict, err.Error())
	case errors.Is(err, database.ErrInvalidTransition):
		writeError(w, http.StatusBadRequest, codeInvalidTransition, err.Error())
	case errors.Is(err, database.ErrValidation),
		errors.Is(err, database.ErrPastDate),
		errors.Is(err, database.ErrDateTooFar):
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternal, "internal server error")
	}
}
