package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Lixing-Zhang/vintage-drops/internal/models"
	"github.com/Lixing-Zhang/vintage-drops/internal/service"
)

// CategoryHandler serves the category tree and its administration.
type CategoryHandler struct {
	service *service.CategoryService
	logger  *slog.Logger
}

func NewCategoryHandler(service *service.CategoryService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{service: service, logger: logger}
}

// Tree handles GET /api/categories?gender=
func (h *CategoryHandler) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.service.Tree(r.Context(), r.URL.Query().Get("gender"))
	if err != nil {
		h.logger.Error("failed to build category tree", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, tree, h.logger)
}

// List handles GET /api/admin/categories with the flat list.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger, "failed to list categories")
		return
	}
	WriteJSON(w, http.StatusOK, categories, h.logger)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var c models.Category
	if err := decodeJSON(w, r, &c); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}
	if err := h.service.Create(r.Context(), &c); err != nil {
		writeServiceError(w, err, h.logger, "failed to create category")
		return
	}
	WriteJSON(w, http.StatusCreated, c, h.logger)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var c models.Category
	if err := decodeJSON(w, r, &c); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}
	c.ID = chi.URLParam(r, "categoryId")
	if err := h.service.Update(r.Context(), &c); err != nil {
		writeServiceError(w, err, h.logger, "failed to update category", "categoryId", c.ID)
		return
	}
	WriteJSON(w, http.StatusOK, c, h.logger)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "categoryId")
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, h.logger, "failed to delete category", "categoryId", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
