package handlers

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/Lixing-Zhang/vintage-drops/internal/export"
	"github.com/Lixing-Zhang/vintage-drops/internal/models"
	"github.com/Lixing-Zhang/vintage-drops/internal/repository"
	"github.com/Lixing-Zhang/vintage-drops/internal/service"
)

const maxImportBytes = 10 << 20

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// ListProducts handles GET /api/products
// Query: category, gender, drop, include_sold.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := service.ProductQuery{
		CategoryID: q.Get("category"),
		Gender:     q.Get("gender"),
		DropID:     q.Get("drop"),
	}
	if v := q.Get("include_sold"); v != "" {
		includeSold, err := strconv.ParseBool(v)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "include_sold must be a boolean", h.logger)
			return
		}
		query.IncludeSold = includeSold
	}

	products, err := h.service.ListProducts(r.Context(), query)
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, products, h.logger)
}

// GetProduct handles GET /api/products/{productId}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	if productID == "" {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.logger)
		return
	}

	product, err := h.service.GetProduct(r.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.logger.Info("product not found", "productId", productID)
			WriteError(w, http.StatusNotFound, "Product not found", h.logger)
			return
		}

		h.logger.Error("failed to get product", "productId", productID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, product, h.logger)
}

// ListAll handles GET /api/admin/products, sold items included.
func (h *ProductHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context(), service.ProductQuery{IncludeSold: true})
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, products, h.logger)
}

// CreateProduct handles POST /api/admin/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var p models.Product
	if err := decodeJSON(w, r, &p); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	if err := h.service.CreateProduct(r.Context(), &p); err != nil {
		writeServiceError(w, err, h.logger, "failed to create product")
		return
	}

	WriteJSON(w, http.StatusCreated, p, h.logger)
}

// UpdateProduct handles PUT /api/admin/products/{productId}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var p models.Product
	if err := decodeJSON(w, r, &p); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}
	p.ID = chi.URLParam(r, "productId")

	if err := h.service.UpdateProduct(r.Context(), &p); err != nil {
		writeServiceError(w, err, h.logger, "failed to update product", "productId", p.ID)
		return
	}

	WriteJSON(w, http.StatusOK, p, h.logger)
}

// DeleteProduct handles DELETE /api/admin/products/{productId}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	if err := h.service.DeleteProduct(r.Context(), productID); err != nil {
		writeServiceError(w, err, h.logger, "failed to delete product", "productId", productID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportProducts handles GET /api/admin/products/export
func (h *ProductHandler) ExportProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context(), service.ProductQuery{IncludeSold: true})
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteProducts(&buf, products); err != nil {
		h.logger.Error("failed to write products workbook", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}
	writeWorkbook(w, "products", buf.Bytes())
}

// ImportProducts handles POST /api/admin/products/import with a workbook
// as the raw request body.
func (h *ProductHandler) ImportProducts(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil || len(data) == 0 {
		WriteError(w, http.StatusBadRequest, "A workbook body is required", h.logger)
		return
	}

	res, err := h.service.ImportProducts(r.Context(), data)
	if err != nil {
		h.logger.Warn("failed to import products", "error", err)
		WriteError(w, http.StatusBadRequest, "Could not read workbook", h.logger)
		return
	}

	h.logger.Info("products imported", "created", res.Created, "updated", res.Updated, "skipped", len(res.Skipped))
	WriteJSON(w, http.StatusOK, res, h.logger)
}

// writeWorkbook sends an .xlsx attachment named after name and today's date.
func writeWorkbook(w http.ResponseWriter, name string, data []byte) {
	filename := name + "-" + time.Now().UTC().Format("2006-01-02") + ".xlsx"
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
