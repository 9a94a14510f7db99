package handlers

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Lixing-Zhang/vintage-drops/internal/middleware"
	"github.com/Lixing-Zhang/vintage-drops/internal/models"
	"github.com/Lixing-Zhang/vintage-drops/internal/service"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	orderService *service.OrderService
	log          *slog.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService, log *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		log:          log,
	}
}

// StatusRequest changes the status of an order.
type StatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

// ListOrders handles GET /api/admin/orders?status=
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	status := models.OrderStatus(r.URL.Query().Get("status"))

	orders, err := h.orderService.ListOrders(r.Context(), status)
	if err != nil {
		writeServiceError(w, err, h.log, "failed to list orders")
		return
	}
	WriteJSON(w, http.StatusOK, orders, h.log)
}

// GetOrder handles GET /api/admin/orders/{orderId}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	order, err := h.orderService.GetOrder(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, err, h.log, "failed to get order", "order_id", orderID)
		return
	}
	WriteJSON(w, http.StatusOK, order, h.log)
}

// UpdateStatus handles PATCH /api/admin/orders/{orderId}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	var req StatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log.Warn("failed to decode status request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		writeServiceError(w, err, h.log, "failed to update order status", "order_id", orderID)
		return
	}

	h.log.Info("order status updated", "order_id", order.ID, "status", order.Status)
	WriteJSON(w, http.StatusOK, order, h.log)
}

// ExportOrders handles GET /api/admin/orders/export?status=
func (h *OrderHandler) ExportOrders(w http.ResponseWriter, r *http.Request) {
	status := models.OrderStatus(r.URL.Query().Get("status"))

	var buf bytes.Buffer
	if err := h.orderService.Export(r.Context(), &buf, status); err != nil {
		writeServiceError(w, err, h.log, "failed to export orders")
		return
	}
	writeWorkbook(w, "orders", buf.Bytes())
}

// MyOrders handles GET /api/me/orders
func (h *OrderHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())

	orders, err := h.orderService.MyOrders(r.Context(), id.UserID)
	if err != nil {
		writeServiceError(w, err, h.log, "failed to list own orders", "user_id", id.UserID)
		return
	}
	WriteJSON(w, http.StatusOK, orders, h.log)
}
