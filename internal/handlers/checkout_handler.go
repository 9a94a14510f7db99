package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/Lixing-Zhang/vintage-drops/internal/cart"
	"github.com/Lixing-Zhang/vintage-drops/internal/checkout"
	"github.com/Lixing-Zhang/vintage-drops/internal/coupon"
	"github.com/Lixing-Zhang/vintage-drops/internal/middleware"
	"github.com/Lixing-Zhang/vintage-drops/internal/repository"
)

// CheckoutHandler drives the checkout flow of the caller's session.
type CheckoutHandler struct {
	flows    *checkout.Manager
	sessions *cart.Sessions
	logger   *slog.Logger
}

func NewCheckoutHandler(flows *checkout.Manager, sessions *cart.Sessions, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{flows: flows, sessions: sessions, logger: logger}
}

func (h *CheckoutHandler) flow(w http.ResponseWriter, r *http.Request) (*checkout.Flow, bool) {
	sessionID := middleware.SessionFrom(r.Context())
	store, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to open cart", "session", sessionID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return nil, false
	}

	return h.flows.Flow(sessionID, userOf(r), store), true
}

func userOf(r *http.Request) string {
	if id, ok := middleware.IdentityFrom(r.Context()); ok {
		return id.UserID
	}
	return ""
}

// GetCheckout handles GET /api/checkout. Reading does not start a checkout.
func (h *CheckoutHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.SessionFrom(r.Context())
	store, err := h.sessions.View(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to read cart", "session", sessionID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, h.flows.View(sessionID, userOf(r), store), h.logger)
}

// SubmitShipping handles POST /api/checkout/shipping
func (h *CheckoutHandler) SubmitShipping(w http.ResponseWriter, r *http.Request) {
	var info checkout.ShippingInfo
	if err := decodeJSON(w, r, &info); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	f, ok := h.flow(w, r)
	if !ok {
		return
	}
	if err := f.SubmitShipping(info); err != nil {
		h.writeCheckoutError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, f.View(), h.logger)
}

// Back handles POST /api/checkout/back
func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, (*checkout.Flow).Back)
}

// Retry handles POST /api/checkout/retry
func (h *CheckoutHandler) Retry(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, (*checkout.Flow).Retry)
}

// RemoveCoupon handles DELETE /api/checkout/coupon
func (h *CheckoutHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, (*checkout.Flow).RemoveCoupon)
}

func (h *CheckoutHandler) step(w http.ResponseWriter, r *http.Request, op func(*checkout.Flow) error) {
	f, ok := h.flow(w, r)
	if !ok {
		return
	}
	if err := op(f); err != nil {
		h.writeCheckoutError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, f.View(), h.logger)
}

// ApplyCoupon handles POST /api/checkout/coupon
func (h *CheckoutHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req ApplyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	f, ok := h.flow(w, r)
	if !ok {
		return
	}
	if _, err := f.ApplyCoupon(r.Context(), req.Code); err != nil {
		h.writeCheckoutError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, f.View(), h.logger)
}

// Submit handles POST /api/checkout/submit
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	f, ok := h.flow(w, r)
	if !ok {
		return
	}

	order, err := f.Submit(r.Context())
	if err != nil {
		h.writeCheckoutError(w, err)
		return
	}

	h.logger.Info("order placed", "order_id", order.ID, "total", order.TotalAmount.String())
	WriteJSON(w, http.StatusCreated, f.View(), h.logger)
}

func (h *CheckoutHandler) writeCheckoutError(w http.ResponseWriter, err error) {
	var fields checkout.ValidationErrors
	switch {
	case errors.As(err, &fields):
		WriteValidation(w, fields, h.logger)
	case errors.Is(err, checkout.ErrInvalidTransition):
		WriteError(w, http.StatusConflict, err.Error(), h.logger)
	case errors.Is(err, checkout.ErrEmptyCart):
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
	case errors.Is(err, coupon.ErrInvalidOrExpired):
		WriteError(w, http.StatusNotFound, err.Error(), h.logger)
	case errors.Is(err, coupon.ErrCouponExhausted), errors.Is(err, repository.ErrProductUnavailable):
		WriteError(w, http.StatusConflict, err.Error(), h.logger)
	default:
		h.logger.Error("checkout failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "Order could not be placed, please try again", h.logger)
	}
}
