package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Lixing-Zhang/vintage-drops/internal/drop"
	"github.com/Lixing-Zhang/vintage-drops/internal/models"
	"github.com/Lixing-Zhang/vintage-drops/internal/repository"
)

var echoSession = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(SessionFrom(r.Context())))
})

func TestSession(t *testing.T) {
	handler := Session(true)(echoSession)

	t.Run("header wins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
		req.Header.Set(SessionHeader, "from-header")
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "from-cookie"})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Body.String() != "from-header" {
			t.Errorf("session = %s, want from-header", w.Body.String())
		}
		if len(w.Result().Cookies()) != 0 {
			t.Error("expected no new cookie")
		}
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "from-cookie"})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Body.String() != "from-cookie" {
			t.Errorf("session = %s, want from-cookie", w.Body.String())
		}
		if w.Header().Get(SessionHeader) != "from-cookie" {
			t.Errorf("echoed header = %s", w.Header().Get(SessionHeader))
		}
	})

	t.Run("issued", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cart", nil))

		cookies := w.Result().Cookies()
		if len(cookies) != 1 || cookies[0].Name != SessionCookie {
			t.Fatalf("cookies = %v, want one session cookie", cookies)
		}
		if !cookies[0].Secure || !cookies[0].HttpOnly {
			t.Error("expected a secure http-only cookie")
		}
		if w.Body.String() != cookies[0].Value {
			t.Errorf("session = %s, cookie = %s", w.Body.String(), cookies[0].Value)
		}
	})

	t.Run("too long", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
		req.Header.Set(SessionHeader, strings.Repeat("x", maxSessionIDLength+1))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestRequireOpenDrop(t *testing.T) {
	now := time.Now()
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name           string
		drop           models.Drop
		expectedStatus int
	}{
		{
			name:           "open",
			drop:           models.Drop{ID: "d1", Name: "Open", StartsAt: now.Add(-time.Hour), EndsAt: now.Add(time.Hour), IsActive: true},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "upcoming",
			drop:           models.Drop{ID: "d1", Name: "Soon", StartsAt: now.Add(time.Hour), EndsAt: now.Add(2 * time.Hour), IsActive: true},
			expectedStatus: http.StatusLocked,
		},
		{
			name:           "inactive",
			drop:           models.Drop{ID: "d1", Name: "Paused", StartsAt: now.Add(-time.Hour), EndsAt: now.Add(time.Hour)},
			expectedStatus: http.StatusLocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos := repository.NewInMemory(false, now)
			d := tt.drop
			if err := repos.Drops.Create(t.Context(), &d); err != nil {
				t.Fatalf("Create() unexpected error: %v", err)
			}

			handler := RequireOpenDrop(drop.NewService(repos.Drops), discardLogger)(ok)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/cart/items", nil))

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}
		})
	}
}
