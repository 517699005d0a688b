package camera

import (
	"context"
	"fmt"
)

// PlaceholderController is used until the image server exposes a camera switch endpoint.
type PlaceholderController struct{}

func (PlaceholderController) SwitchSource(ctx context.Context, dir Direction) error {
	return fmt.Errorf("switch camera (%s) requires a dedicated endpoint: %w", dir, ErrActionUnavailable)
}

// PlaceholderCapturer is used until the image server exposes a still frame endpoint.
type PlaceholderCapturer struct{}

func (PlaceholderCapturer) CaptureFrame(ctx context.Context) (*Frame, error) {
	return nil, fmt.Errorf("screenshot requires an additional endpoint that returns a static image: %w", ErrActionUnavailable)
}

var (
	_ CameraController = PlaceholderController{}
	_ FrameCapturer    = PlaceholderCapturer{}
)
