package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionCookie carries the browser session id.
const SessionCookie = "tryon_session"

type contextKey struct{}

// SessionMiddleware makes sure every request carries a session id, issuing a
// new cookie when it is missing or malformed and renewing its MaxAge when ttl
// is set. Static assets are passed through untouched.
func SessionMiddleware(ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/static/") || r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			var sessionID string
			if cookie, err := r.Cookie(SessionCookie); err == nil {
				if id, err := uuid.Parse(cookie.Value); err == nil {
					sessionID = id.String()
				}
			}

			// With a ttl the cookie is re-issued on every request so the lifetime is idle time.
			if sessionID == "" || ttl > 0 {
				if sessionID == "" {
					sessionID = uuid.NewString()
				}
				cookie := &http.Cookie{
					Name:     SessionCookie,
					Value:    sessionID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				}
				if ttl > 0 {
					cookie.MaxAge = int(ttl.Seconds())
				}
				http.SetCookie(w, cookie)
			}

			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), sessionID)))
		})
	}
}

// WithSessionID returns a copy of ctx carrying sessionID.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, contextKey{}, sessionID)
}

// SessionID returns the id stored by SessionMiddleware, or "" outside of it.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
