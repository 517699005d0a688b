package dto

// SettingsUpdate is the body of PUT /api/tryon/settings. Nil fields are left untouched.
type SettingsUpdate struct {
	Size         *int `json:"size,omitempty"`
	Transparency *int `json:"transparency,omitempty"`
}

// StreamErrorReport is sent by the page when the stream <img> fails to load.
type StreamErrorReport struct {
	Reason string `json:"reason"`
}
