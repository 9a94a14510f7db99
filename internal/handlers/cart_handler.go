package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/vintage-drops/internal/cart"
	"github.com/Lixing-Zhang/vintage-drops/internal/middleware"
	"github.com/Lixing-Zhang/vintage-drops/internal/repository"
	"github.com/Lixing-Zhang/vintage-drops/internal/service"
)

// CartHandler exposes the session cart.
type CartHandler struct {
	sessions *cart.Sessions
	products *service.ProductService
	logger   *slog.Logger
}

func NewCartHandler(sessions *cart.Sessions, products *service.ProductService, logger *slog.Logger) *CartHandler {
	return &CartHandler{sessions: sessions, products: products, logger: logger}
}

// CartResponse is the cart as returned to the storefront.
type CartResponse struct {
	Items []cart.Item     `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// AddItemRequest adds a catalog product to the cart. Name and price are
// taken from the catalog.
type AddItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) store(w http.ResponseWriter, r *http.Request) (*cart.Store, bool) {
	sessionID := middleware.SessionFrom(r.Context())
	s, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to open cart", "session", sessionID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return nil, false
	}
	return s, true
}

func (h *CartHandler) respond(w http.ResponseWriter, status int, s *cart.Store) {
	items := s.Items()
	WriteJSON(w, status, CartResponse{Items: items, Total: cart.Total(items), Count: s.Count()}, h.logger)
}

// GetCart handles GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.SessionFrom(r.Context())
	s, err := h.sessions.View(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to read cart", "session", sessionID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}
	h.respond(w, http.StatusOK, s)
}

// AddItem handles POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := decodeJSON(w, r, &req); err != nil || req.ProductID == "" {
		WriteError(w, http.StatusBadRequest, "product_id is required", h.logger)
		return
	}
	if req.Quantity < 0 {
		WriteError(w, http.StatusBadRequest, cart.ErrInvalidQuantity.Error(), h.logger)
		return
	}

	product, err := h.products.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Product not found", h.logger)
			return
		}
		h.logger.Error("failed to get product", "productId", req.ProductID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}
	if product.IsSold {
		WriteError(w, http.StatusConflict, "Product is sold", h.logger)
		return
	}

	s, ok := h.store(w, r)
	if !ok {
		return
	}

	item := cart.Item{ID: product.ID, Name: product.Name, Price: product.Price, Quantity: req.Quantity}
	if len(product.Images) > 0 {
		item.Image = product.Images[0]
	}
	if err := s.AddToCart(r.Context(), item); err != nil {
		h.writeCartError(w, err)
		return
	}
	h.respond(w, http.StatusOK, s)
}

// IncreaseItem handles POST /api/cart/items/{itemId}/increase
func (h *CartHandler) IncreaseItem(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, (*cart.Store).IncreaseQuantity)
}

// DecreaseItem handles POST /api/cart/items/{itemId}/decrease
func (h *CartHandler) DecreaseItem(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, (*cart.Store).DecreaseQuantity)
}

// RemoveItem handles DELETE /api/cart/items/{itemId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, (*cart.Store).RemoveFromCart)
}

// ClearCart handles DELETE /api/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	if err := s.ClearCart(r.Context()); err != nil {
		h.writeCartError(w, err)
		return
	}
	h.respond(w, http.StatusOK, s)
}

func (h *CartHandler) mutate(w http.ResponseWriter, r *http.Request, op func(*cart.Store, context.Context, string) error) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	if err := op(s, r.Context(), chi.URLParam(r, "itemId")); err != nil {
		h.writeCartError(w, err)
		return
	}
	h.respond(w, http.StatusOK, s)
}

func (h *CartHandler) writeCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrItemNotFound):
		WriteError(w, http.StatusNotFound, err.Error(), h.logger)
	case errors.Is(err, cart.ErrInvalidItem), errors.Is(err, cart.ErrInvalidQuantity):
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
	default:
		h.logger.Error("failed to save cart", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
	}
}
