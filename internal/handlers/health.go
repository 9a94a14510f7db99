package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler provides health check endpoint
type HealthHandler struct {
	db      Pinger
	storage string
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler. db may be nil for the
// in-memory storage driver.
func NewHealthHandler(db Pinger, storage string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		db:      db,
		storage: storage,
		logger:  logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Storage   string    `json:"storage"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// ServeHTTP handles health check requests
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Storage:   h.storage,
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
	}

	status := http.StatusOK
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Error("storage ping failed", "error", err)
			response.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		}
	}

	WriteJSON(w, status, response, h.logger)
}
