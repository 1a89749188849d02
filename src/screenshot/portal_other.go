//go:build !linux

package screenshot

import (
	"errors"
	"image"
)

type portalBackend struct{}

func (portalBackend) CaptureDisplayAt(image.Point) (*image.RGBA, image.Rectangle, error) {
	return nil, image.Rectangle{}, errors.New("screenshot portal is only available on linux")
}
