package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error response in JSON format
func WriteError(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	WriteJSON(w, status, ErrorResponse{Error: message}, logger)
}

// ErrorResponse is the body of every failed request. Fields lists
// per-field validation messages.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// WriteValidation writes a 400 response listing the invalid fields.
func WriteValidation(w http.ResponseWriter, fields map[string]string, logger *slog.Logger) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Fields: fields}, logger)
}
