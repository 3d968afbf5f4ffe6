package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"obrasoft/ms_gestion_core/internal/core/errs"
)

// ErrorResponse represents a standardized error response format.
type ErrorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

// WriteError writes a standardized JSON error response to the HTTP response writer.
// It sets the appropriate Content-Type header, status code, and encodes the error response.
func WriteError(w http.ResponseWriter, statusCode int, message string, errors []string, log *slog.Logger) {
	response := ErrorResponse{
		Message: message,
		Errors:  errors,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		// The status code is already on the wire, nothing else to do.
		if log != nil {
			log.Error("failed to encode error response", "error", err)
		}
	}
}

// WriteDomainError maps core error kinds to HTTP statuses and writes the
// standard envelope. Unknown errors become a generic 500; their detail stays
// in the log, never in the response.
func WriteDomainError(w http.ResponseWriter, err error, log *slog.Logger) {
	switch {
	case errs.IsValidation(err):
		WriteError(w, http.StatusBadRequest, "Error de Validación", []string{err.Error()}, log)
	case errs.IsConflict(err):
		WriteError(w, http.StatusConflict, "Conflicto", []string{err.Error()}, log)
	case errors.Is(err, errs.ErrNotFound):
		WriteError(w, http.StatusNotFound, "No Encontrado", []string{"El recurso solicitado no existe"}, log)
	default:
		if log != nil {
			log.Error("unhandled domain error", "error", err)
		}
		WriteError(w, http.StatusInternalServerError, "Error Interno del Servidor", []string{"Ha ocurrido un error interno"}, log)
	}
}

// WriteJSON encodes v as the response body with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, v any, log *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		if log != nil {
			log.Error("failed to encode response", "error", err)
		}
	}
}
