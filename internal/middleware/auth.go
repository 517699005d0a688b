package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/google/uuid"
)

// AdminCookie carries the token issued by AdminAuth.Login.
const AdminCookie = "tryon_admin"

// AdminAuth guards the operator endpoints (log files, wiping the gallery).
// The token lives only in memory, so a restart logs every operator out.
type AdminAuth struct {
	password string
	token    string
}

// NewAdminAuth creates a guard for password. An empty password locks the guarded routes.
func NewAdminAuth(password string) *AdminAuth {
	return &AdminAuth{password: password, token: uuid.NewString()}
}

// Enabled reports whether an admin password is configured.
func (a *AdminAuth) Enabled() bool {
	return a.password != ""
}

// Login checks password and returns the cookie to hand to the operator.
func (a *AdminAuth) Login(password string) (*http.Cookie, bool) {
	if !a.Enabled() || !a.checkPassword(password) {
		return nil, false
	}
	return &http.Cookie{
		Name:     AdminCookie,
		Value:    a.token,
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}, true
}

// Authorized accepts the login cookie or HTTP basic auth carrying the password.
func (a *AdminAuth) Authorized(r *http.Request) bool {
	if !a.Enabled() {
		return false
	}
	if cookie, err := r.Cookie(AdminCookie); err == nil &&
		subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(a.token)) == 1 {
		return true
	}
	if _, password, ok := r.BasicAuth(); ok && a.checkPassword(password) {
		return true
	}
	return false
}

// Middleware rejects requests that are not Authorized.
// Without a configured password every request gets 403.
func (a *AdminAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			http.Error(w, "Admin access disabled", http.StatusForbidden)
			return
		}
		if !a.Authorized(r) {
			w.Header().Set("WWW-Authenticate", `Basic realm="tryon admin"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *AdminAuth) checkPassword(password string) bool {
	return subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
}
