package model

import "time"

// Capture represents a still frame saved from the try-on session.
type Capture struct {
	ID          int64     `json:"id"`
	Filename    string    `json:"filename"`
	ProductID   int       `json:"product_id"`
	SessionID   string    `json:"session_id"`
	Timestamp   time.Time `json:"timestamp"`
	FilePath    string    `json:"filepath"`
	FileSize    int64     `json:"filesize"`
	ContentType string    `json:"content_type"`
}
