package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/Lixing-Zhang/vintage-drops/internal/repository"
	"github.com/Lixing-Zhang/vintage-drops/internal/service"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(err, "decode body")
	}
	return nil
}

// writeServiceError maps storage and admin validation errors to statuses.
// Anything unrecognized is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, err error, logger *slog.Logger, msg string, args ...any) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		WriteError(w, http.StatusNotFound, "Not found", logger)
	case errors.Is(err, repository.ErrConflict):
		WriteError(w, http.StatusConflict, "Already exists", logger)
	case errors.Is(err, service.ErrInvalidProduct),
		errors.Is(err, service.ErrUnknownCategory),
		errors.Is(err, service.ErrUnknownDrop),
		errors.Is(err, service.ErrInvalidCategory),
		errors.Is(err, service.ErrCategoryCycle),
		errors.Is(err, service.ErrInvalidDrop),
		errors.Is(err, service.ErrInvalidCouponData),
		errors.Is(err, service.ErrInvalidStatus):
		logger.Warn(msg, append(args, "error", err)...)
		WriteError(w, http.StatusBadRequest, err.Error(), logger)
	case errors.Is(err, service.ErrStatusTransition):
		WriteError(w, http.StatusConflict, err.Error(), logger)
	default:
		logger.Error(msg, append(args, "error", err)...)
		WriteError(w, http.StatusInternalServerError, "Internal server error", logger)
	}
}
