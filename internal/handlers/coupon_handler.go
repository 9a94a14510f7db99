package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/Lixing-Zhang/vintage-drops/internal/coupon"
	"github.com/Lixing-Zhang/vintage-drops/internal/models"
	"github.com/Lixing-Zhang/vintage-drops/internal/service"
)

// couponEvaluator is the interface for coupon validation
type couponEvaluator interface {
	Apply(ctx context.Context, code string) (*coupon.Application, error)
	GetStats(ctx context.Context) (coupon.Stats, error)
}

// CouponHandler handles HTTP requests for coupons
type CouponHandler struct {
	evaluator couponEvaluator
	admin     *service.CouponAdminService
	logger    *slog.Logger
}

// NewCouponHandler creates a new CouponHandler
func NewCouponHandler(evaluator couponEvaluator, admin *service.CouponAdminService, logger *slog.Logger) *CouponHandler {
	return &CouponHandler{
		evaluator: evaluator,
		admin:     admin,
		logger:    logger,
	}
}

// ApplyRequest carries a code typed by the shopper.
type ApplyRequest struct {
	Code string `json:"code"`
}

// ApplyCoupon handles POST /api/coupons/apply
// Checks the code against the currently valid coupons without reserving it.
func (h *CouponHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req ApplyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	app, err := h.evaluator.Apply(r.Context(), req.Code)
	if err != nil {
		if errors.Is(err, coupon.ErrInvalidOrExpired) {
			WriteJSON(w, http.StatusNotFound, map[string]interface{}{
				"success": false,
				"code":    coupon.NormalizeCode(req.Code),
				"error":   err.Error(),
			}, h.logger)
			return
		}
		h.logger.Error("failed to apply coupon", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, app, h.logger)
}

// GetStats handles GET /api/admin/coupons/stats
func (h *CouponHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.evaluator.GetStats(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger, "failed to load coupon stats")
		return
	}
	WriteJSON(w, http.StatusOK, stats, h.logger)
}

func (h *CouponHandler) List(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.admin.List(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger, "failed to list coupons")
		return
	}
	WriteJSON(w, http.StatusOK, coupons, h.logger)
}

func (h *CouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	var c models.Coupon
	if err := decodeJSON(w, r, &c); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}
	if err := h.admin.Create(r.Context(), &c); err != nil {
		writeServiceError(w, err, h.logger, "failed to create coupon")
		return
	}
	WriteJSON(w, http.StatusCreated, c, h.logger)
}

func (h *CouponHandler) Update(w http.ResponseWriter, r *http.Request) {
	var c models.Coupon
	if err := decodeJSON(w, r, &c); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}
	c.ID = chi.URLParam(r, "couponId")
	if err := h.admin.Update(r.Context(), &c); err != nil {
		writeServiceError(w, err, h.logger, "failed to update coupon", "couponId", c.ID)
		return
	}
	WriteJSON(w, http.StatusOK, c, h.logger)
}

func (h *CouponHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "couponId")
	if err := h.admin.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, h.logger, "failed to delete coupon", "couponId", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
