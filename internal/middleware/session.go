package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const (
	SessionHeader = "X-Session-ID"
	SessionCookie = "session_id"

	maxSessionIDLength = 128
	sessionMaxAge      = 60 * 60 * 24 * 30
)

// SessionFrom returns the storefront session id set by Session.
func SessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey).(string)
	return id
}

// WithSession returns a copy of ctx carrying the session id.
func WithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey, id)
}

// Session identifies the anonymous storefront visitor. The id comes from the
// X-Session-ID header or the session_id cookie; a new one is issued as a
// cookie when neither is present. The id is echoed in X-Session-ID.
func Session(secure bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(SessionHeader)
			if id == "" {
				if c, err := r.Cookie(SessionCookie); err == nil {
					id = c.Value
				}
			}
			if len(id) > maxSessionIDLength {
				writeError(w, http.StatusBadRequest, "session id too long")
				return
			}

			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   sessionMaxAge,
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set(SessionHeader, id)

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), id)))
		})
	}
}
