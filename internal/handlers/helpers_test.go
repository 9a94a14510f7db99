package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-faster/errors"

	"github.com/Lixing-Zhang/vintage-drops/internal/repository"
	"github.com/Lixing-Zhang/vintage-drops/internal/service"
	"github.com/Lixing-Zhang/vintage-drops/pkg/logger"
)

func TestWriteServiceError(t *testing.T) {
	log := logger.New("error")

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "not found", err: errors.Wrap(repository.ErrNotFound, "get order"), expectedStatus: http.StatusNotFound},
		{name: "conflict", err: repository.ErrConflict, expectedStatus: http.StatusConflict},
		{name: "invalid coupon", err: service.ErrInvalidCouponData, expectedStatus: http.StatusBadRequest},
		{name: "category cycle", err: service.ErrCategoryCycle, expectedStatus: http.StatusBadRequest},
		{name: "status transition", err: errors.Wrap(service.ErrStatusTransition, "pending to shipped"), expectedStatus: http.StatusConflict},
		{name: "unexpected", err: errors.New("connection reset"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeServiceError(w, tt.err, log, "operation failed")

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}

			var body ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if body.Error == "" {
				t.Error("expected an error message")
			}
			if tt.expectedStatus == http.StatusInternalServerError && body.Error != "Internal server error" {
				t.Errorf("internal error leaked: %s", body.Error)
			}
		})
	}
}

func TestWriteValidation(t *testing.T) {
	w := httptest.NewRecorder()
	WriteValidation(w, map[string]string{"email": "is required"}, logger.New("error"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	var body ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Fields["email"] != "is required" {
		t.Errorf("fields = %v", body.Fields)
	}
}

type failingPinger struct{ err error }

func (p failingPinger) PingContext(ctx context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name           string
		db             Pinger
		expectedStatus int
		expectedHealth string
	}{
		{name: "memory", expectedStatus: http.StatusOK, expectedHealth: "healthy"},
		{name: "database up", db: failingPinger{}, expectedStatus: http.StatusOK, expectedHealth: "healthy"},
		{name: "database down", db: failingPinger{err: errors.New("refused")}, expectedStatus: http.StatusServiceUnavailable, expectedHealth: "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.db, "postgres", logger.New("error"))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}
			var resp HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Status != tt.expectedHealth {
				t.Errorf("health = %s, want %s", resp.Status, tt.expectedHealth)
			}
		})
	}
}
