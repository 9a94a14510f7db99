package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/Lixing-Zhang/vintage-drops/internal/auth"
	"github.com/Lixing-Zhang/vintage-drops/internal/middleware"
)

// AuthHandler handles registration, login and account administration.
type AuthHandler struct {
	service *auth.Service
	logger  *slog.Logger
}

func NewAuthHandler(service *auth.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	session, err := h.service.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidEmail):
			WriteValidation(w, map[string]string{"email": err.Error()}, h.logger)
		case errors.Is(err, auth.ErrWeakPassword):
			WriteValidation(w, map[string]string{"password": err.Error()}, h.logger)
		case errors.Is(err, auth.ErrEmailTaken):
			WriteError(w, http.StatusConflict, err.Error(), h.logger)
		default:
			h.logger.Error("failed to register", "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		}
		return
	}

	h.logger.Info("account registered", "user_id", session.Profile.ID, "admin", session.Profile.IsAdmin)
	WriteJSON(w, http.StatusCreated, session, h.logger)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	session, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			WriteError(w, http.StatusUnauthorized, err.Error(), h.logger)
			return
		}
		h.logger.Error("failed to log in", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, session, h.logger)
}

// Me handles GET /api/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())

	profile, err := h.service.Profile(r.Context(), id.UserID)
	if err != nil {
		writeServiceError(w, err, h.logger, "failed to load profile", "user_id", id.UserID)
		return
	}
	WriteJSON(w, http.StatusOK, profile, h.logger)
}

// ListUsers handles GET /api/admin/users
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.ListProfiles(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger, "failed to list profiles")
		return
	}
	WriteJSON(w, http.StatusOK, profiles, h.logger)
}

// AdminRequest grants or revokes admin access.
type AdminRequest struct {
	IsAdmin bool `json:"is_admin"`
}

// SetAdmin handles PUT /api/admin/users/{userId}/admin
func (h *AuthHandler) SetAdmin(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var req AdminRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	caller, _ := middleware.IdentityFrom(r.Context())
	if caller.UserID == userID && !req.IsAdmin {
		WriteError(w, http.StatusBadRequest, "Admins cannot revoke their own access", h.logger)
		return
	}

	if err := h.service.SetAdmin(r.Context(), userID, req.IsAdmin); err != nil {
		writeServiceError(w, err, h.logger, "failed to update admin flag", "user_id", userID)
		return
	}

	h.logger.Info("admin flag changed", "user_id", userID, "is_admin", req.IsAdmin, "by", caller.UserID)
	profile, err := h.service.Profile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, h.logger, "failed to load profile", "user_id", userID)
		return
	}
	WriteJSON(w, http.StatusOK, profile, h.logger)
}
