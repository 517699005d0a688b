// Package stream observes the continuous media endpoint the try-on page embeds.
//
// The page's <img> owns its own connection to the stream; the monitor only
// opens short-lived poll connections, reads the first frame and hangs up.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"
)

// MaxFrameSize bounds a single sampled frame.
const MaxFrameSize = 10 * 1024 * 1024

// ErrStreamUnavailable wraps every poll failure.
var ErrStreamUnavailable = errors.New("stream unavailable")

// Logger is the subset of the leveled logger used by the monitor.
type Logger interface {
	Info(format string, v ...interface{})
	Warning(format string, v ...interface{})
}

// Status is the outcome of a poll.
type Status struct {
	Available bool
	Reason    string
	CheckedAt time.Time
}

// Monitor periodically polls the stream locator.
type Monitor struct {
	url      string
	client   *http.Client
	interval time.Duration
	timeout  time.Duration
	maxFrame int64
	logger   Logger

	mu       sync.Mutex
	last     Status
	hasLast  bool
	onChange func(Status)
	onFrame  func([]byte)
}

// NewMonitor creates a monitor for url. An interval of zero makes Run return immediately.
func NewMonitor(url string, interval, timeout time.Duration, logger Logger) *Monitor {
	return &Monitor{
		url:      url,
		client:   &http.Client{},
		interval: interval,
		timeout:  timeout,
		maxFrame: MaxFrameSize,
		logger:   logger,
	}
}

// OnChange registers fn to be called whenever availability flips (and on the first poll).
func (m *Monitor) OnChange(fn func(Status)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// OnFrame registers fn to receive the first frame of every successful poll.
func (m *Monitor) OnFrame(fn func([]byte)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onFrame = fn
}

// Last returns the most recent status, if any poll ran.
func (m *Monitor) Last() (Status, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.hasLast
}

// Sample fetches the first frame of the stream.
// Both multipart/x-mixed-replace streams and single image/* resources are accepted.
func (m *Monitor) Sample(ctx context.Context) ([]byte, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStreamUnavailable, err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: server returned %s", ErrStreamUnavailable, resp.Status)
	}

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("%w: bad content type: %v", ErrStreamUnavailable, err)
	}

	var body io.Reader
	switch {
	case strings.HasPrefix(mediaType, "multipart/"):
		boundary := strings.TrimPrefix(params["boundary"], "--")
		if boundary == "" {
			return nil, fmt.Errorf("%w: multipart stream without boundary", ErrStreamUnavailable)
		}
		part, err := multipart.NewReader(resp.Body, boundary).NextPart()
		if err != nil {
			return nil, fmt.Errorf("%w: read first part: %v", ErrStreamUnavailable, err)
		}
		defer part.Close()
		body = part
	case strings.HasPrefix(mediaType, "image/"):
		body = resp.Body
	default:
		return nil, fmt.Errorf("%w: unexpected content type %q", ErrStreamUnavailable, mediaType)
	}

	frame, err := io.ReadAll(io.LimitReader(body, m.maxFrame+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read frame: %v", ErrStreamUnavailable, err)
	}
	if int64(len(frame)) > m.maxFrame {
		return nil, fmt.Errorf("%w: frame exceeds %d bytes", ErrStreamUnavailable, m.maxFrame)
	}
	if len(frame) == 0 {
		return nil, fmt.Errorf("%w: empty frame", ErrStreamUnavailable)
	}
	return frame, nil
}

// Check runs one poll and dispatches callbacks.
func (m *Monitor) Check(ctx context.Context) Status {
	frame, err := m.Sample(ctx)

	status := Status{Available: err == nil, CheckedAt: time.Now()}
	if err != nil {
		status.Reason = err.Error()
	}

	m.mu.Lock()
	changed := !m.hasLast || m.last.Available != status.Available
	m.last, m.hasLast = status, true
	onChange, onFrame := m.onChange, m.onFrame
	m.mu.Unlock()

	if changed {
		if status.Available {
			m.logger.Info("Stream %s is available", m.url)
		} else {
			m.logger.Warning("Stream %s is unavailable: %s", m.url, status.Reason)
		}
		if onChange != nil {
			onChange(status)
		}
	}
	if frame != nil && onFrame != nil {
		onFrame(frame)
	}
	return status
}

// Run polls every interval until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	if m.interval <= 0 {
		return
	}

	m.Check(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}
