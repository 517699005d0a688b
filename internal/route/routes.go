package route

import (
	"html/template"
	"net/http"
	"tryon/internal/config"
	"tryon/internal/handler"
	"tryon/internal/logger"
	"tryon/internal/middleware"
	"tryon/internal/service/storage"
	"tryon/internal/service/stream"
	"tryon/internal/service/tryon"
	"tryon/internal/service/websocket"
	"tryon/web"

	"github.com/gorilla/mux"
)

// Dependencies are the services the HTTP layer dispatches to.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	Sessions *tryon.SessionStore
	Syncer   handler.StateSyncer
	Captures *storage.CaptureService
	Hub      *websocket.HubService
	Monitor  *stream.Monitor
	Page     *template.Template
}

// SetupRoutes registers the page, the try-on API, the capture gallery, the
// websocket endpoint, the admin-only log and wipe endpoints and static assets,
// wrapped in the session and logging middleware.
func SetupRoutes(deps Dependencies) http.Handler {
	r := mux.NewRouter()
	log := deps.Logger

	// Static files
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(web.Static()))))

	// Page
	r.Handle("/", http.RedirectHandler("/try-on", http.StatusFound)).Methods(http.MethodGet)
	page := handler.TryOnPageHandler(deps.Sessions, deps.Syncer, deps.Page, log)
	r.HandleFunc("/try-on", page).Methods(http.MethodGet)
	r.HandleFunc("/try-on/{id}", page).Methods(http.MethodGet)

	// Try-on API, registered on the root router so a wrong method gets 405
	r.HandleFunc("/api/tryon/state", handler.StateHandler(deps.Sessions, log)).Methods(http.MethodGet)
	r.HandleFunc("/api/tryon/settings/toggle", handler.ToggleSettingsHandler(deps.Sessions, log)).Methods(http.MethodPost)
	r.HandleFunc("/api/tryon/settings", handler.UpdateSettingsHandler(deps.Sessions, log)).Methods(http.MethodPut)
	r.HandleFunc("/api/tryon/camera/flip", handler.FlipCameraHandler(deps.Sessions, log)).Methods(http.MethodPost)
	r.HandleFunc("/api/tryon/capture", handler.CaptureHandler(deps.Sessions, log)).Methods(http.MethodPost)
	r.HandleFunc("/api/tryon/share", handler.ShareHandler(deps.Sessions, log)).Methods(http.MethodPost)
	r.HandleFunc("/api/tryon/buy", handler.BuyNowHandler(deps.Sessions, log)).Methods(http.MethodPost)
	r.HandleFunc("/api/tryon/stream/error", handler.StreamErrorHandler(deps.Sessions, log)).Methods(http.MethodPost)
	r.HandleFunc("/api/tryon/stream/retry", handler.StreamRetryHandler(deps.Sessions, log)).Methods(http.MethodPost)

	// Capture gallery, scoped to the requesting session
	r.HandleFunc("/api/captures", handler.GetCapturesHandler(deps.Captures, log)).Methods(http.MethodGet)
	r.HandleFunc("/api/captures/view", handler.ViewCaptureHandler(deps.Captures, log)).Methods(http.MethodGet)
	r.HandleFunc("/api/captures/{id:[0-9]+}", handler.DeleteCaptureHandler(deps.Captures, log)).Methods(http.MethodDelete)

	// Realtime events
	r.HandleFunc("/api/view", handler.ViewWebsocketHandler(deps.Hub, log))

	// Admin
	auth := middleware.NewAdminAuth(deps.Config.AdminPassword)
	r.HandleFunc("/auth/login", handler.LoginHandler(auth, log)).Methods(http.MethodPost)
	r.Handle("/api/captures", auth.Middleware(handler.ClearCapturesHandler(deps.Captures, log))).Methods(http.MethodDelete)
	r.Handle("/logs/{level}", auth.Middleware(handler.ShowLogsHandler(log))).Methods(http.MethodGet)
	r.Handle("/logs/{level}/clear", auth.Middleware(handler.ClearLogsHandler(log))).Methods(http.MethodPost)

	r.HandleFunc("/health", handler.HealthHandler(deps.Sessions, deps.Hub, deps.Monitor, log)).Methods(http.MethodGet)

	r.Use(middleware.LoggingMiddleware(log))
	r.Use(middleware.SessionMiddleware(deps.Config.SessionTTL))
	return r
}
