package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Lixing-Zhang/vintage-drops/internal/drop"
	"github.com/Lixing-Zhang/vintage-drops/internal/models"
	"github.com/Lixing-Zhang/vintage-drops/internal/service"
)

// DropHandler serves the drop calendar.
type DropHandler struct {
	schedule *drop.Service
	admin    *service.DropAdminService
	logger   *slog.Logger
}

func NewDropHandler(schedule *drop.Service, admin *service.DropAdminService, logger *slog.Logger) *DropHandler {
	return &DropHandler{schedule: schedule, admin: admin, logger: logger}
}

// Current handles GET /api/drops/current
func (h *DropHandler) Current(w http.ResponseWriter, r *http.Request) {
	status, err := h.schedule.Status(r.Context())
	if err != nil {
		h.logger.Error("failed to load drop schedule", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, status, h.logger)
}

func (h *DropHandler) List(w http.ResponseWriter, r *http.Request) {
	drops, err := h.admin.List(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger, "failed to list drops")
		return
	}
	WriteJSON(w, http.StatusOK, drops, h.logger)
}

func (h *DropHandler) Create(w http.ResponseWriter, r *http.Request) {
	var d models.Drop
	if err := decodeJSON(w, r, &d); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}
	if err := h.admin.Create(r.Context(), &d); err != nil {
		writeServiceError(w, err, h.logger, "failed to create drop")
		return
	}
	WriteJSON(w, http.StatusCreated, d, h.logger)
}

func (h *DropHandler) Update(w http.ResponseWriter, r *http.Request) {
	var d models.Drop
	if err := decodeJSON(w, r, &d); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}
	d.ID = chi.URLParam(r, "dropId")
	if err := h.admin.Update(r.Context(), &d); err != nil {
		writeServiceError(w, err, h.logger, "failed to update drop", "dropId", d.ID)
		return
	}
	WriteJSON(w, http.StatusOK, d, h.logger)
}

func (h *DropHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "dropId")
	if err := h.admin.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, h.logger, "failed to delete drop", "dropId", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
