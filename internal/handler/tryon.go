package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"tryon/internal/dto"
	"tryon/internal/logger"
	"tryon/internal/middleware"
	"tryon/internal/service/tryon"
)

// maxBodySize bounds JSON bodies accepted by the try-on API.
const maxBodySize = 4 << 10

func sessionController(sessions *tryon.SessionStore, r *http.Request) *tryon.Controller {
	return sessions.Controller(middleware.SessionID(r.Context()))
}

// decodeBody decodes an optional JSON body into v. An empty body is not an error.
func decodeBody(r *http.Request, v interface{}) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// StateHandler returns the session's page state.
func StateHandler(sessions *tryon.SessionStore, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, http.StatusOK, sessionController(sessions, r).Snapshot())
	}
}

// ToggleSettingsHandler flips the settings panel.
func ToggleSettingsHandler(sessions *tryon.SessionStore, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		open := sessionController(sessions, r).ToggleSettingsPanel()
		writeJSON(w, logger, http.StatusOK, map[string]bool{"settingsPanelOpen": open})
	}
}

// UpdateSettingsHandler applies slider values. Out-of-range values are clamped,
// and the response carries what was actually stored.
func UpdateSettingsHandler(sessions *tryon.SessionStore, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var update dto.SettingsUpdate
		if err := decodeBody(r, &update); err != nil {
			writeError(w, logger, http.StatusBadRequest, "invalid settings body: "+err.Error())
			return
		}
		if update.Size == nil && update.Transparency == nil {
			writeError(w, logger, http.StatusBadRequest, "size or transparency is required")
			return
		}

		c := sessionController(sessions, r)
		if update.Size != nil {
			c.SetSize(*update.Size)
		}
		if update.Transparency != nil {
			c.SetTransparency(*update.Transparency)
		}
		writeJSON(w, logger, http.StatusOK, c.Snapshot().Display)
	}
}

// FlipCameraHandler asks the image server to switch camera.
func FlipCameraHandler(sessions *tryon.SessionStore, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, http.StatusOK, sessionController(sessions, r).FlipCamera(r.Context()))
	}
}

// CaptureHandler takes a screenshot through the frame capture endpoint.
func CaptureHandler(sessions *tryon.SessionStore, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, http.StatusOK, sessionController(sessions, r).CaptureScreenshot(r.Context()))
	}
}

func ShareHandler(sessions *tryon.SessionStore, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, http.StatusOK, sessionController(sessions, r).Share())
	}
}

func BuyNowHandler(sessions *tryon.SessionStore, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, http.StatusOK, sessionController(sessions, r).BuyNow())
	}
}

// StreamErrorHandler records that the page failed to load the stream.
func StreamErrorHandler(sessions *tryon.SessionStore, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var report dto.StreamErrorReport
		if err := decodeBody(r, &report); err != nil {
			writeError(w, logger, http.StatusBadRequest, "invalid stream error body: "+err.Error())
			return
		}
		writeJSON(w, logger, http.StatusOK, sessionController(sessions, r).ReportStreamError(report.Reason))
	}
}

// StreamRetryHandler clears the unavailable state and hands back a fresh stream locator.
func StreamRetryHandler(sessions *tryon.SessionStore, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locator := sessionController(sessions, r).RetryStream()
		writeJSON(w, logger, http.StatusOK, map[string]string{"streamUrl": locator})
	}
}
