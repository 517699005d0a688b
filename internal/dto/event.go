package dto

import "time"

// Event types pushed to page viewers over the websocket hub.
const (
	EventStreamStatus = "stream_status"
	EventDetection    = "detection"
)

// Event is a realtime message broadcast to every open try-on page.
type Event struct {
	Type      string    `json:"type"`
	Available *bool     `json:"available,omitempty"`
	Detected  *bool     `json:"detected,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
