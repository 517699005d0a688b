package handler

import (
	"net/http"
	"time"
	"tryon/internal/logger"
	"tryon/internal/service/stream"
	"tryon/internal/service/tryon"
	"tryon/internal/service/websocket"
)

type healthResponse struct {
	Status   string        `json:"status"`
	Sessions int           `json:"sessions"`
	Viewers  int           `json:"viewers"`
	Stream   *streamHealth `json:"stream,omitempty"`
}

type streamHealth struct {
	Available bool      `json:"available"`
	Reason    string    `json:"reason,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
}

// HealthHandler reports liveness plus the last stream poll, if the monitor has run.
func HealthHandler(sessions *tryon.SessionStore, hub *websocket.HubService, monitor *stream.Monitor, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{
			Status:   "ok",
			Sessions: sessions.Len(),
			Viewers:  hub.GetClientCount(),
		}
		if st, ok := monitor.Last(); ok {
			resp.Stream = &streamHealth{Available: st.Available, Reason: st.Reason, CheckedAt: st.CheckedAt}
		}
		writeJSON(w, logger, http.StatusOK, resp)
	}
}
