package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"

	"github.com/Lixing-Zhang/vintage-drops/internal/middleware"
	"github.com/Lixing-Zhang/vintage-drops/internal/spin"
)

// SpinHandler serves the prize wheel.
type SpinHandler struct {
	service *spin.Service
	logger  *slog.Logger
}

func NewSpinHandler(service *spin.Service, logger *slog.Logger) *SpinHandler {
	return &SpinHandler{service: service, logger: logger}
}

// WheelResponse is what the storefront needs to draw the wheel.
type WheelResponse struct {
	Segments []spin.Segment `json:"segments"`
	spin.Eligibility
}

func subjectOf(r *http.Request) spin.Subject {
	s := spin.Subject{SessionID: middleware.SessionFrom(r.Context())}
	if id, ok := middleware.IdentityFrom(r.Context()); ok {
		s.UserID = id.UserID
	}
	return s
}

// Wheel handles GET /api/spin
func (h *SpinHandler) Wheel(w http.ResponseWriter, r *http.Request) {
	segments, err := h.service.Wheel(r.Context())
	if err != nil {
		h.logger.Error("failed to load wheel", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	status, err := h.service.Status(r.Context(), subjectOf(r))
	if err != nil {
		h.writeSpinError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, WheelResponse{Segments: segments, Eligibility: status}, h.logger)
}

// Spin handles POST /api/spin
func (h *SpinHandler) Spin(w http.ResponseWriter, r *http.Request) {
	subject := subjectOf(r)

	res, err := h.service.Spin(r.Context(), subject)
	if err != nil {
		h.writeSpinError(w, err)
		return
	}

	h.logger.Info("wheel spun", "subject", subject.Key(), "coupon_id", res.Segment.CouponID)
	WriteJSON(w, http.StatusOK, res, h.logger)
}

// MyCoupons handles GET /api/me/coupons
func (h *SpinHandler) MyCoupons(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())

	coupons, err := h.service.UserCoupons(r.Context(), id.UserID)
	if err != nil {
		writeServiceError(w, err, h.logger, "failed to list won coupons", "user_id", id.UserID)
		return
	}
	WriteJSON(w, http.StatusOK, coupons, h.logger)
}

func (h *SpinHandler) writeSpinError(w http.ResponseWriter, err error) {
	var tooSoon *spin.TooSoonError
	switch {
	case errors.As(err, &tooSoon):
		w.Header().Set("Retry-After", retryAfter(tooSoon.NextSpinAt))
		WriteJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"error":        err.Error(),
			"next_spin_at": tooSoon.NextSpinAt,
		}, h.logger)
	case errors.Is(err, spin.ErrNoPrizes):
		WriteError(w, http.StatusServiceUnavailable, "The wheel has no prizes right now", h.logger)
	case errors.Is(err, spin.ErrNoSubject):
		WriteError(w, http.StatusBadRequest, "A session is required to spin", h.logger)
	default:
		h.logger.Error("spin failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
	}
}

func retryAfter(next time.Time) string {
	secs := int(time.Until(next).Seconds()) + 1
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
