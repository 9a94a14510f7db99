package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Lixing-Zhang/vintage-drops/internal/auth"
	"github.com/Lixing-Zhang/vintage-drops/internal/models"
)

type ctxKey int

const (
	identityKey ctxKey = iota
	sessionKey
)

// Identity is the authenticated caller.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

// TokenParser verifies bearer tokens.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// ProfileLookup loads the stored profile for the admin check.
type ProfileLookup interface {
	Profile(ctx context.Context, userID string) (*models.Profile, error)
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the caller set by Authenticate.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// Authenticate resolves an optional "Authorization: Bearer" token. Requests
// without one pass through anonymously; a malformed or expired token is
// rejected with 401.
func Authenticate(tokens TokenParser) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				writeError(w, http.StatusUnauthorized, "Unauthorized: bearer token required")
				return
			}

			claims, err := tokens.Parse(strings.TrimSpace(token))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized: "+err.Error())
				return
			}

			ctx := WithIdentity(r.Context(), Identity{UserID: claims.UserID, Email: claims.Email, Role: claims.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WebSocketToken authenticates WebSocket upgrades that carry the token in
// the Sec-WebSocket-Protocol list as "<protocol>, <token>", which is the
// only way a browser can attach credentials to a WebSocket. Requests that
// are already authenticated or are not upgrades pass through.
func WebSocketToken(tokens TokenParser, protocol string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := IdentityFrom(r.Context()); ok || !websocket.IsWebSocketUpgrade(r) {
				next.ServeHTTP(w, r)
				return
			}

			offered := websocket.Subprotocols(r)
			if len(offered) < 2 || offered[0] != protocol {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.Parse(offered[1])
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized: "+err.Error())
				return
			}

			ctx := WithIdentity(r.Context(), Identity{UserID: claims.UserID, Email: claims.Email, Role: claims.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects anonymous requests with 401.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFrom(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized: sign in required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin admits callers whose stored profile is an admin. The profile
// fetch races a fixed timeout; a timeout or lookup error denies access.
func RequireAdmin(profiles ProfileLookup, timeout time.Duration, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "Unauthorized: sign in required")
				return
			}

			profile, err := lookupProfile(r.Context(), profiles, id.UserID, timeout)
			if err != nil {
				logger.Warn("admin check failed", "user_id", id.UserID, "error", err)
				writeError(w, http.StatusForbidden, "Forbidden: admin access required")
				return
			}
			if profile == nil || !profile.IsAdmin {
				writeError(w, http.StatusForbidden, "Forbidden: admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type profileResult struct {
	profile *models.Profile
	err     error
}

// lookupProfile returns ctx's error once timeout elapses, even when the
// lookup itself does not watch ctx.
func lookupProfile(ctx context.Context, profiles ProfileLookup, userID string, timeout time.Duration) (*models.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan profileResult, 1)
	go func() {
		p, err := profiles.Profile(ctx, userID)
		done <- profileResult{profile: p, err: err}
	}()

	select {
	case res := <-done:
		return res.profile, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
