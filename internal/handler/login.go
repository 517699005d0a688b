package handler

import (
	"net/http"
	"tryon/internal/logger"
	"tryon/internal/middleware"
)

// LoginHandler handles POST /auth/login by validating the admin password and issuing the admin cookie.
func LoginHandler(auth *middleware.AdminAuth, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !auth.Enabled() {
			writeError(w, logger, http.StatusForbidden, "admin access is disabled")
			return
		}

		cookie, ok := auth.Login(r.FormValue("password"))
		if !ok {
			logger.Warning("Rejected admin login from %s", r.RemoteAddr)
			writeError(w, logger, http.StatusUnauthorized, "invalid password")
			return
		}

		http.SetCookie(w, cookie)
		logger.Info("Admin login from %s", r.RemoteAddr)
		w.WriteHeader(http.StatusNoContent)
	}
}
