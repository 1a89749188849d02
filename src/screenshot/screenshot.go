package screenshot

import (
	"errors"
	"fmt"
	"image"
	"log"

	"snip-pin/src/pixel"
)

// ErrCapture marks a failed or unavailable platform capture.
var ErrCapture = errors.New("capture failed")

// Frame is a captured display image tagged with the virtual-desktop coordinate
// of its top-left pixel.
type Frame struct {
	Buffer *pixel.Buffer
	Origin image.Point
}

// Bounds returns the frame's rectangle in virtual-desktop coordinates.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(f.Origin.X, f.Origin.Y, f.Origin.X+f.Buffer.Width, f.Origin.Y+f.Buffer.Height)
}

// Backend is the platform capture API. CaptureDisplayAt grabs the whole display
// containing p and reports that display's bounds.
type Backend interface {
	CaptureDisplayAt(p image.Point) (*image.RGBA, image.Rectangle, error)
}

const (
	BackendAuto   = "auto"
	BackendPortal = "portal"
)

type Options struct {
	// ForceBGRA swaps red and blue on every captured buffer.
	ForceBGRA bool
	// Backend selects the platform capture path: BackendAuto or BackendPortal.
	Backend string
}

// Engine captures displays. It keeps no pixels between calls.
type Engine struct {
	backend   Backend
	forceBGRA bool
}

func New(opts Options) *Engine {
	var b Backend
	switch opts.Backend {
	case BackendPortal:
		b = portalBackend{}
	default:
		b = displayBackend{}
	}
	log.Printf("Capture: backend=%s forceBGRA=%v", backendName(opts.Backend), opts.ForceBGRA)
	return NewWithBackend(b, opts.ForceBGRA)
}

func NewWithBackend(b Backend, forceBGRA bool) *Engine {
	return &Engine{backend: b, forceBGRA: forceBGRA}
}

func backendName(s string) string {
	if s == BackendPortal {
		return s
	}
	return BackendAuto
}

// CaptureFullscreen captures the display containing (0,0).
func (e *Engine) CaptureFullscreen() (*pixel.Buffer, error) {
	f, err := e.CaptureFullscreenWithOrigin()
	if err != nil {
		return nil, err
	}
	return f.Buffer, nil
}

// CaptureFullscreenWithOrigin captures the display containing (0,0) and its origin.
func (e *Engine) CaptureFullscreenWithOrigin() (Frame, error) {
	return e.captureAt(image.Point{})
}

// CaptureArea takes a fresh capture of the display containing (r.X, r.Y) and crops r,
// given in virtual-desktop coordinates, out of it. The crop is clamped to the display;
// a zero-area request or one lying entirely off the display yields an empty buffer.
func (e *Engine) CaptureArea(r pixel.Rect) (*pixel.Buffer, error) {
	if r.Empty() {
		return pixel.NewBuffer(0, 0, pixel.FormatRGBA), nil
	}
	f, err := e.captureAt(image.Pt(r.X, r.Y))
	if err != nil {
		return nil, err
	}
	local := pixel.Rect{
		X:      max(r.X-f.Origin.X, 0),
		Y:      max(r.Y-f.Origin.Y, 0),
		Width:  r.Width,
		Height: r.Height,
	}
	return pixel.Crop(f.Buffer, local), nil
}

func (e *Engine) captureAt(p image.Point) (Frame, error) {
	img, bounds, err := e.backend.CaptureDisplayAt(p)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrCapture, err)
	}
	if img == nil {
		return Frame{}, fmt.Errorf("%w: backend returned no image", ErrCapture)
	}
	buf := pixel.FromRGBA(img)
	if buf.Empty() {
		return Frame{}, fmt.Errorf("%w: empty image from display at %v", ErrCapture, bounds)
	}
	if e.forceBGRA {
		// The platform claims RGBA but actually delivered BGRA.
		buf.Format = pixel.FormatBGRA
		pixel.MaybeConvertBGRA(buf, true)
	}
	return Frame{Buffer: buf, Origin: bounds.Min}, nil
}
