//go:build !windows

package winutil

import (
	"errors"
	"image"
)

var errUnsupported = errors.New("window placement not supported on this platform")

func Supported() bool { return false }

func EnableDPIAwareness() {}

// MakePopup is best-effort outside Windows: the window manager decides
// decoration and placement.
func MakePopup(title string, pos image.Point, width, height int) error {
	return errUnsupported
}

func Move(title string, pos image.Point) error {
	return errUnsupported
}
