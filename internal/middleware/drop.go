package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/vintage-drops/internal/drop"
)

// DropStatus reports whether a drop is open.
type DropStatus interface {
	Status(ctx context.Context) (drop.Status, error)
}

// RequireOpenDrop answers 423 Locked with the schedule while no drop is open.
func RequireOpenDrop(drops DropStatus, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			status, err := drops.Status(r.Context())
			if err != nil {
				logger.Error("failed to load drop schedule", "error", err)
				writeError(w, http.StatusInternalServerError, "Failed to load drop schedule")
				return
			}
			if !status.Open {
				writeJSON(w, http.StatusLocked, map[string]any{
					"error": "the store is closed until the next drop",
					"drop":  status,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
