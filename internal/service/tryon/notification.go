package tryon

import "tryon/internal/model"

// NotificationKind selects how the page styles a notification.
type NotificationKind string

const (
	KindInfo    NotificationKind = "info"
	KindWarning NotificationKind = "warning"
	KindError   NotificationKind = "error"
)

// Notification codes understood by the page script.
const (
	CodeActionUnavailable = "action_unavailable"
	CodeActionFailed      = "action_failed"
	CodeStreamUnavailable = "stream_unavailable"
	CodeCaptureSaved      = "capture_saved"
)

// Notification is a user-visible outcome of an action. Blocking ones are shown as a modal alert.
type Notification struct {
	Kind     NotificationKind `json:"kind"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Blocking bool             `json:"blocking"`
}

// ActionResult is returned by every overlay or purchase action.
type ActionResult struct {
	Notification *Notification  `json:"notification,omitempty"`
	Capture      *model.Capture `json:"capture,omitempty"`
	Location     string         `json:"location,omitempty"`
}
