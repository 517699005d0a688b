package middleware

import (
	"net/http"
	"time"
	"tryon/internal/logger"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// LoggingMiddleware logs requests that end with a 4xx or 5xx status.
// The websocket endpoint bypasses it because the recorder cannot be hijacked.
func LoggingMiddleware(logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/view" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status >= http.StatusInternalServerError {
				logger.Error("%s %s -> %d (%s)", r.Method, r.URL.Path, rec.status, time.Since(start))
			} else if rec.status >= http.StatusBadRequest {
				logger.Warning("%s %s -> %d (%s)", r.Method, r.URL.Path, rec.status, time.Since(start))
			}
		})
	}
}
