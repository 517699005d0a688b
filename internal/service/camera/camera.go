// Package camera holds the capabilities the try-on page needs from the
// external image-processing server: switching its capture source and
// grabbing a single still frame.
//
// Each capability has a placeholder used while the server lacks the
// endpoint, and an HTTP implementation used once it is configured.
package camera

import (
	"context"
	"errors"
)

var (
	// ErrActionUnavailable is returned by placeholders.
	ErrActionUnavailable = errors.New("action not available on the image server")
	// ErrActionFailed wraps every failure of a configured remote call.
	ErrActionFailed = errors.New("image server action failed")
)

// Direction selects the next capture source.
type Direction string

// DirectionNext cycles to the following source, the only switch the page offers.
const DirectionNext Direction = "next"

// Frame is a single still image returned by the image server.
type Frame struct {
	Data        []byte
	ContentType string
}

// CameraController switches the capture source of the image server.
// The stream locator stays the same, the new source simply shows up in it.
type CameraController interface {
	SwitchSource(ctx context.Context, dir Direction) error
}

// FrameCapturer fetches one still frame through an endpoint that is
// separate from the continuous stream.
type FrameCapturer interface {
	CaptureFrame(ctx context.Context) (*Frame, error)
}
