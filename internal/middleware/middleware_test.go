package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"tryon/internal/config"
	"tryon/internal/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func echoSession() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(SessionID(r.Context())))
	})
}

func TestSessionMiddleware_IssuesCookie(t *testing.T) {
	h := SessionMiddleware(30 * time.Minute)(echoSession())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/try-on", nil))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, SessionCookie, cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)
	require.Equal(t, 1800, cookies[0].MaxAge)

	_, err := uuid.Parse(cookies[0].Value)
	require.NoError(t, err)
	require.Equal(t, cookies[0].Value, rec.Body.String())
}

func TestSessionMiddleware_ReusesValidCookie(t *testing.T) {
	h := SessionMiddleware(0)(echoSession())
	id := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/api/tryon/state", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: id})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Empty(t, rec.Result().Cookies())
	require.Equal(t, id, rec.Body.String())
}

func TestSessionMiddleware_RenewsValidCookie(t *testing.T) {
	h := SessionMiddleware(30 * time.Minute)(echoSession())
	id := uuid.NewString()

	req := httptest.NewRequest(http.MethodPost, "/api/tryon/settings/toggle", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: id})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, id, cookies[0].Value)
	require.Equal(t, 1800, cookies[0].MaxAge)
	require.Equal(t, id, rec.Body.String())
}

func TestSessionMiddleware_ReplacesMalformedCookie(t *testing.T) {
	h := SessionMiddleware(0)(echoSession())

	req := httptest.NewRequest(http.MethodGet, "/try-on", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "not-a-uuid"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.NotEqual(t, "not-a-uuid", cookies[0].Value)
	require.Equal(t, cookies[0].Value, rec.Body.String())
}

func TestSessionMiddleware_SkipsStatic(t *testing.T) {
	h := SessionMiddleware(0)(echoSession())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/css/tryon.css", nil))

	require.Empty(t, rec.Result().Cookies())
	require.Empty(t, rec.Body.String())
}

func TestLoggingMiddleware_PassesStatus(t *testing.T) {
	log, err := logger.NewLogger(&config.Config{LogDirectory: t.TempDir()})
	require.NoError(t, err)
	defer log.Close()

	h := LoggingMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tryon/state", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAdminAuth_Disabled(t *testing.T) {
	auth := NewAdminAuth("")
	require.False(t, auth.Enabled())

	_, ok := auth.Login("")
	require.False(t, ok)

	req := httptest.NewRequest(http.MethodPost, "/logs/info/clear", nil)
	req.SetBasicAuth("admin", "")
	rec := httptest.NewRecorder()
	auth.Middleware(okHandler()).ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminAuth_RejectsAnonymous(t *testing.T) {
	auth := NewAdminAuth("s3cret")

	rec := httptest.NewRecorder()
	auth.Middleware(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/captures", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")

	req := httptest.NewRequest(http.MethodDelete, "/api/captures", nil)
	req.AddCookie(&http.Cookie{Name: AdminCookie, Value: "true"})
	rec = httptest.NewRecorder()
	auth.Middleware(okHandler()).ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/captures", nil)
	req.SetBasicAuth("admin", "wrong")
	rec = httptest.NewRecorder()
	auth.Middleware(okHandler()).ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminAuth_AcceptsLoginCookieAndBasicAuth(t *testing.T) {
	auth := NewAdminAuth("s3cret")

	_, ok := auth.Login("wrong")
	require.False(t, ok)

	cookie, ok := auth.Login("s3cret")
	require.True(t, ok)
	require.Equal(t, AdminCookie, cookie.Name)
	require.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/logs/info", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	auth.Middleware(okHandler()).ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/logs/info", nil)
	req.SetBasicAuth("admin", "s3cret")
	rec = httptest.NewRecorder()
	auth.Middleware(okHandler()).ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// tokens do not carry over to another guard instance
	other := NewAdminAuth("s3cret")
	req = httptest.NewRequest(http.MethodGet, "/logs/info", nil)
	req.AddCookie(cookie)
	require.False(t, other.Authorized(req))
}
