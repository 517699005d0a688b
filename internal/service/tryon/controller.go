package tryon

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"tryon/internal/model"
	"tryon/internal/repository"
	"tryon/internal/service/camera"
)

// Logger is the subset of the leveled logger the controller writes diagnostics to.
type Logger interface {
	Info(format string, v ...interface{})
	Warning(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// CaptureSaver persists a captured frame.
type CaptureSaver interface {
	Save(ctx context.Context, frame *camera.Frame, productID int, sessionID string) (*model.Capture, error)
}

// Options carries the process-wide configuration and collaborators shared by all controllers.
type Options struct {
	StreamURL         string
	FallbackProductID int
	DefaultProduct    model.Product
	CheckoutURL       string // fmt template, %d is the product id
	CaptureURL        func(c *model.Capture) string

	Products repository.ProductRepository
	Camera   camera.CameraController
	Capturer camera.FrameCapturer
	Captures CaptureSaver
	Logger   Logger

	Now func() time.Time
}

func (o *Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Controller owns the UI state of one try-on page. Every method applies its
// update atomically; remote calls run without holding the lock.
type Controller struct {
	mu        sync.Mutex
	sessionID string
	opts      *Options
	state     PageState
	lastSeen  time.Time
}

// NewController creates a controller for a session, mounted at the fallback id.
func NewController(sessionID string, opts *Options) *Controller {
	c := &Controller{sessionID: sessionID, opts: opts}
	c.Mount("")
	return c
}

// Mount resets the page state for routeID, falling back to the configured id when it is empty.
func (c *Controller) Mount(routeID string) PageState {
	targetID := strings.TrimSpace(routeID)
	if targetID == "" {
		targetID = strconv.Itoa(c.opts.FallbackProductID)
	}

	now := c.opts.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = PageState{
		TargetID:   targetID,
		BackTarget: "/product/" + url.PathEscape(targetID),
		Product:    c.lookupProduct(targetID),
		StreamURL:  c.opts.StreamURL,
		UI: SessionUIState{
			DetectionIndicator: true,
			DetectionSource:    DetectionAssumed,
			SettingsPanelOpen:  false,
		},
		Display: DisplaySettings{
			SizePercent:         DefaultSize,
			TransparencyPercent: DefaultTransparency,
		},
		Stream:    StreamState{Available: true, CheckedAt: now},
		MountedAt: now,
	}
	c.lastSeen = now
	return c.state
}

// lookupProduct resolves the summary; unknown or non-numeric ids show the default product.
func (c *Controller) lookupProduct(targetID string) model.Product {
	if c.opts.Products == nil {
		return c.opts.DefaultProduct
	}
	id, err := strconv.Atoi(targetID)
	if err != nil {
		return c.opts.DefaultProduct
	}
	p, err := c.opts.Products.GetByID(id)
	if err != nil {
		return c.opts.DefaultProduct
	}
	return *p
}

// Snapshot returns a copy of the current page state.
func (c *Controller) Snapshot() PageState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSeen = c.opts.now()
	return c.state
}

// LastSeen reports when the session last touched its controller.
func (c *Controller) LastSeen() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}

// ToggleSettingsPanel flips panel visibility and returns the new value.
func (c *Controller) ToggleSettingsPanel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSeen = c.opts.now()
	c.state.UI.SettingsPanelOpen = !c.state.UI.SettingsPanelOpen
	return c.state.UI.SettingsPanelOpen
}

// SetSize stores value clamped to [MinSize, MaxSize] and returns what was stored.
func (c *Controller) SetSize(value int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSeen = c.opts.now()
	c.state.Display.SizePercent = clamp(value, MinSize, MaxSize)
	return c.state.Display.SizePercent
}

// SetTransparency stores value clamped to [MinTransparency, MaxTransparency].
func (c *Controller) SetTransparency(value int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSeen = c.opts.now()
	c.state.Display.TransparencyPercent = clamp(value, MinTransparency, MaxTransparency)
	return c.state.Display.TransparencyPercent
}

// FlipCamera asks the image server to switch its capture source. Local state
// never changes: the new source shows up through the same stream locator.
func (c *Controller) FlipCamera(ctx context.Context) ActionResult {
	c.touch()

	err := c.opts.Camera.SwitchSource(ctx, camera.DirectionNext)
	switch {
	case err == nil:
		c.opts.Logger.Info("Session %s: camera source switched", c.sessionID)
		return ActionResult{}
	case errors.Is(err, camera.ErrActionUnavailable):
		c.opts.Logger.Warning("Session %s: flipping camera: %v", c.sessionID, err)
		return ActionResult{Notification: &Notification{
			Kind:    KindInfo,
			Code:    CodeActionUnavailable,
			Message: "Flipping camera requires a dedicated image server endpoint.",
		}}
	default:
		c.opts.Logger.Error("Session %s: flipping camera failed: %v", c.sessionID, err)
		return ActionResult{Notification: &Notification{
			Kind:    KindError,
			Code:    CodeActionFailed,
			Message: "Could not switch camera. Please try again.",
		}}
	}
}

// CaptureScreenshot fetches a still frame and persists it for download.
func (c *Controller) CaptureScreenshot(ctx context.Context) ActionResult {
	productID := c.touch().Product.ID

	frame, err := c.opts.Capturer.CaptureFrame(ctx)
	if errors.Is(err, camera.ErrActionUnavailable) {
		c.opts.Logger.Warning("Session %s: capture: %v", c.sessionID, err)
		return ActionResult{Notification: &Notification{
			Kind:     KindWarning,
			Code:     CodeActionUnavailable,
			Message:  "Screenshot requires an additional endpoint on the image server to return a static image.",
			Blocking: true,
		}}
	}
	if err != nil {
		c.opts.Logger.Error("Session %s: capture failed: %v", c.sessionID, err)
		return ActionResult{Notification: &Notification{
			Kind:    KindError,
			Code:    CodeActionFailed,
			Message: "Could not capture a screenshot. Please try again.",
		}}
	}

	saved, err := c.opts.Captures.Save(ctx, frame, productID, c.sessionID)
	if err != nil {
		c.opts.Logger.Error("Session %s: saving capture failed: %v", c.sessionID, err)
		return ActionResult{Notification: &Notification{
			Kind:    KindError,
			Code:    CodeActionFailed,
			Message: "The screenshot was taken but could not be saved.",
		}}
	}

	c.opts.Logger.Info("Session %s: captured %s (%d bytes)", c.sessionID, saved.Filename, saved.FileSize)
	result := ActionResult{
		Capture: saved,
		Notification: &Notification{
			Kind:    KindInfo,
			Code:    CodeCaptureSaved,
			Message: "Screenshot saved.",
		},
	}
	if c.opts.CaptureURL != nil {
		result.Location = c.opts.CaptureURL(saved)
	}
	return result
}

// Share returns the product link for the page to copy or hand to the share sheet.
func (c *Controller) Share() ActionResult {
	st := c.touch()
	return ActionResult{Location: fmt.Sprintf("/product/%d", st.Product.ID)}
}

// BuyNow returns the external checkout location for the product.
func (c *Controller) BuyNow() ActionResult {
	st := c.touch()
	c.opts.Logger.Info("Session %s: buy now for product %d", c.sessionID, st.Product.ID)
	return ActionResult{Location: fmt.Sprintf(c.opts.CheckoutURL, st.Product.ID)}
}

// ReportStreamError marks the viewport as unavailable. There is no automatic retry.
func (c *Controller) ReportStreamError(reason string) Notification {
	if reason == "" {
		reason = "stream failed to load"
	}

	c.mu.Lock()
	c.lastSeen = c.opts.now()
	wasAvailable := c.state.Stream.Available
	c.state.Stream = StreamState{Available: false, LastError: reason, CheckedAt: c.lastSeen}
	c.mu.Unlock()

	if wasAvailable {
		c.opts.Logger.Warning("Session %s: stream unavailable: %s", c.sessionID, reason)
	}
	return Notification{
		Kind:    KindWarning,
		Code:    CodeStreamUnavailable,
		Message: "The live try-on stream is unavailable.",
	}
}

// RetryStream clears the unavailable flag and returns a cache-busted locator
// for the page to assign to the viewport again.
func (c *Controller) RetryStream() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastSeen = c.opts.now()
	c.state.Stream = StreamState{Available: true, CheckedAt: c.lastSeen}
	return cacheBust(c.state.StreamURL, c.lastSeen)
}

// SetStreamAvailable applies a server-side observation of the stream.
func (c *Controller) SetStreamAvailable(available bool, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Stream = StreamState{Available: available, LastError: reason, CheckedAt: c.opts.now()}
}

// ReportDetection replaces the placeholder indicator with a detector result.
func (c *Controller) ReportDetection(detected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.UI.DetectionIndicator = detected
	c.state.UI.DetectionSource = DetectionDetector
}

func (c *Controller) touch() PageState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSeen = c.opts.now()
	return c.state
}

func cacheBust(locator string, at time.Time) string {
	u, err := url.Parse(locator)
	if err != nil {
		return locator
	}
	q := u.Query()
	q.Set("retry", strconv.FormatInt(at.UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String()
}
