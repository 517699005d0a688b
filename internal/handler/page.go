package handler

import (
	"bytes"
	"html/template"
	"net/http"
	"tryon/internal/logger"
	"tryon/internal/middleware"
	"tryon/internal/service/tryon"
	"tryon/web"

	"github.com/gorilla/mux"
)

// StateSyncer copies server-side observations into a freshly mounted controller.
type StateSyncer interface {
	Sync(c *tryon.Controller)
}

type pageView struct {
	State           tryon.PageState
	DetectionLabel  string
	MinSize         int
	MaxSize         int
	MinTransparency int
	MaxTransparency int
}

// ParsePageTemplate loads the embedded try-on page.
func ParsePageTemplate() (*template.Template, error) {
	return template.ParseFS(web.Templates, "templates/tryon.html")
}

// TryOnPageHandler mounts the session's controller for the route id and renders the page.
// Every render is a fresh mount, so a reload resets the sliders and the settings panel.
func TryOnPageHandler(sessions *tryon.SessionStore, syncer StateSyncer, tmpl *template.Template, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionID(r.Context())

		c, _ := sessions.Mount(sessionID, mux.Vars(r)["id"])
		if syncer != nil {
			syncer.Sync(c)
		}
		state := c.Snapshot()

		view := pageView{
			State:           state,
			DetectionLabel:  detectionLabel(state.UI),
			MinSize:         tryon.MinSize,
			MaxSize:         tryon.MaxSize,
			MinTransparency: tryon.MinTransparency,
			MaxTransparency: tryon.MaxTransparency,
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, view); err != nil {
			logger.Error("Error rendering try-on page: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		buf.WriteTo(w)
	}
}

func detectionLabel(ui tryon.SessionUIState) string {
	if ui.DetectionSource == tryon.DetectionDetector {
		if ui.DetectionIndicator {
			return "Face Detected"
		}
		return "No Face Detected"
	}
	if ui.DetectionIndicator {
		return "Face Detected (Remote)"
	}
	return "Stream Active"
}
