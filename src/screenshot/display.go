package screenshot

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// displayBackend captures through the native per-display APIs.
type displayBackend struct{}

func (displayBackend) CaptureDisplayAt(p image.Point) (*image.RGBA, image.Rectangle, error) {
	bounds, err := displayBoundsAt(p)
	if err != nil {
		return nil, image.Rectangle{}, err
	}
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, bounds, fmt.Errorf("failed to capture display %v: %v", bounds, err)
	}
	return img, bounds, nil
}

// displayBoundsAt returns the bounds of the display containing p, falling back to
// the first display when p lies in a gap between monitors.
func displayBoundsAt(p image.Point) (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return image.Rectangle{}, fmt.Errorf("no active displays found")
	}
	for i := 0; i < n; i++ {
		if b := screenshot.GetDisplayBounds(i); p.In(b) {
			return b, nil
		}
	}
	return screenshot.GetDisplayBounds(0), nil
}

// Displays lists the bounds of every active display.
func Displays() []image.Rectangle {
	n := screenshot.NumActiveDisplays()
	out := make([]image.Rectangle, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, screenshot.GetDisplayBounds(i))
	}
	return out
}
