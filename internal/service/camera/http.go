package camera

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
)

// MaxFrameSize bounds the body accepted from the still frame endpoint.
const MaxFrameSize = 10 * 1024 * 1024

// HTTPController calls the camera switch endpoint of the image server.
type HTTPController struct {
	url    string
	client *http.Client
}

// NewHTTPController creates a controller that POSTs to url.
func NewHTTPController(url string, timeout time.Duration) *HTTPController {
	return &HTTPController{url: url, client: &http.Client{Timeout: timeout}}
}

type switchRequest struct {
	Direction Direction `json:"direction"`
}

// SwitchSource asks the server to move to the next capture index.
func (c *HTTPController) SwitchSource(ctx context.Context, dir Direction) error {
	body, err := json.Marshal(switchRequest{Direction: dir})
	if err != nil {
		return fmt.Errorf("encode switch request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build switch request: %v: %w", err, ErrActionFailed)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("switch camera: %v: %w", err, ErrActionFailed)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("switch camera: server returned %s: %w", resp.Status, ErrActionFailed)
	}
	return nil
}

// HTTPCapturer fetches a single frame from the still frame endpoint.
type HTTPCapturer struct {
	url    string
	client *http.Client
}

// NewHTTPCapturer creates a capturer that GETs url.
func NewHTTPCapturer(url string, timeout time.Duration) *HTTPCapturer {
	return &HTTPCapturer{url: url, client: &http.Client{Timeout: timeout}}
}

// CaptureFrame returns the image body. Anything other than a 2xx image/* reply is a failure.
func (c *HTTPCapturer) CaptureFrame(ctx context.Context) (*Frame, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build capture request: %v: %w", err, ErrActionFailed)
	}
	req.Header.Set("Accept", "image/jpeg, image/png;q=0.9, image/*;q=0.8")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("capture frame: %v: %w", err, ErrActionFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("capture frame: server returned %s: %w", resp.Status, ErrActionFailed)
	}

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return nil, fmt.Errorf("capture frame: unexpected content type %q: %w", resp.Header.Get("Content-Type"), ErrActionFailed)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxFrameSize+1))
	if err != nil {
		return nil, fmt.Errorf("capture frame: read body: %v: %w", err, ErrActionFailed)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("capture frame: empty image: %w", ErrActionFailed)
	}
	if len(data) > MaxFrameSize {
		return nil, fmt.Errorf("capture frame: image larger than %d bytes: %w", MaxFrameSize, ErrActionFailed)
	}

	return &Frame{Data: data, ContentType: mediaType}, nil
}

var (
	_ CameraController = (*HTTPController)(nil)
	_ FrameCapturer    = (*HTTPCapturer)(nil)
)
