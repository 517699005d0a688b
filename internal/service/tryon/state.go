package tryon

import (
	"time"

	"tryon/internal/model"
)

// Slider bounds. Values outside them are clamped before being stored.
const (
	MinSize     = 80
	MaxSize     = 120
	DefaultSize = 100

	MinTransparency     = 50
	MaxTransparency     = 100
	DefaultTransparency = 100
)

// DetectionSource tells the page whether the indicator reflects a real detector.
type DetectionSource string

const (
	// DetectionAssumed is the placeholder: the stream is running, so a face is assumed.
	DetectionAssumed DetectionSource = "assumed"
	// DetectionDetector means the value came from the face detector.
	DetectionDetector DetectionSource = "detector"
)

// DisplaySettings are the size/transparency slider values.
type DisplaySettings struct {
	SizePercent         int `json:"sizePercent"`
	TransparencyPercent int `json:"transparencyPercent"`
}

// SessionUIState holds the two independent page toggles.
type SessionUIState struct {
	DetectionIndicator bool            `json:"detectionIndicator"`
	DetectionSource    DetectionSource `json:"detectionSource"`
	SettingsPanelOpen  bool            `json:"settingsPanelOpen"`
}

// StreamState tracks whether the media viewport is currently usable.
type StreamState struct {
	Available bool      `json:"available"`
	LastError string    `json:"lastError,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
}

// PageState is everything the try-on page renders.
type PageState struct {
	TargetID   string          `json:"targetId"`
	BackTarget string          `json:"backTarget"`
	Product    model.Product   `json:"product"`
	StreamURL  string          `json:"streamUrl"`
	UI         SessionUIState  `json:"ui"`
	Display    DisplaySettings `json:"display"`
	Stream     StreamState     `json:"stream"`
	MountedAt  time.Time       `json:"mountedAt"`
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
