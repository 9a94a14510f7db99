package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/vintage-drops/internal/service"
)

// AnalyticsHandler serves the admin dashboard summary.
type AnalyticsHandler struct {
	service *service.AnalyticsService
	logger  *slog.Logger
}

func NewAnalyticsHandler(service *service.AnalyticsService, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{service: service, logger: logger}
}

// Summary handles GET /api/admin/analytics
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.service.Summary(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger, "failed to compute analytics")
		return
	}
	WriteJSON(w, http.StatusOK, sum, h.logger)
}
